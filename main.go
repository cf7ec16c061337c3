package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"golf-tracker/internal"
	"golf-tracker/internal/config"
	"golf-tracker/internal/entry"
	"golf-tracker/internal/events"
	"golf-tracker/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer("golf-api", cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Fatalf("tracer: %v", err)
	}
	defer shutdownTracer(context.Background())

	db := internal.MustDB(cfg.DatabaseURL)
	defer db.Close()
	if err := internal.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var pub events.Publisher = events.Nop{}
	if cfg.RabbitURL != "" {
		p, err := events.NewPublisher(cfg.RabbitURL, cfg.RoundExchange)
		if err != nil {
			log.Printf("[events] publisher disabled: %v", err)
		} else {
			pub = p
		}
	}
	defer pub.Close()

	entries := entry.NewRegistry(cfg.EntryTTL)
	go entries.Run(ctx, time.Minute)

	store := internal.NewPG(db, cfg.Backoff())
	r := internal.NewRouter(&internal.Deps{
		Users:        store,
		Courses:      store,
		Rounds:       store,
		Stats:        store,
		Audit:        store,
		Events:       pub,
		Entries:      entries,
		Secret:       cfg.JWTSecret,
		CookieSecure: cfg.CookieSecure,
		Production:   cfg.Production(),
		StaticDir:    cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           internal.CORS(cfg.CORSOrigins)(r),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
