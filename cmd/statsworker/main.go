// Command statsworker keeps the per-user stats cache current by recomputing
// a user's summary whenever one of their rounds changes.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golf-tracker/internal"
	"golf-tracker/internal/config"
	"golf-tracker/internal/events"
	"golf-tracker/internal/obs"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer("golf-statsworker", cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Fatalf("tracer: %v", err)
	}
	defer shutdownTracer(context.Background())

	db := internal.MustDB(cfg.DatabaseURL)
	defer db.Close()
	store := internal.NewPG(db, cfg.Backoff())

	var cons *events.Consumer
	for {
		cons, err = events.NewConsumer(cfg.RabbitURL, cfg.RoundExchange, cfg.StatsQueue,
			"golf-statsworker", []string{events.RKRoundAll}, cfg.Prefetch)
		if err == nil {
			break
		}
		log.Printf("[statsworker] connect failed: %v; retry in 2s", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
	defer cons.Close()

	log.Printf("[statsworker] started. queue=%s exchange=%s", cfg.StatsQueue, cfg.RoundExchange)
	if err := cons.Run(ctx, internal.StatsHandler(store, store, time.Now)); err != nil {
		log.Printf("[statsworker] run error: %v", err)
	}
}
