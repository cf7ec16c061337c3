package internal

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"golf-tracker/internal/events"
	"golf-tracker/internal/obs"
	"golf-tracker/internal/stats"
)

// RefreshStats recomputes a user's summary from all of their rounds and
// stores it. The summary never depends on what was stored before.
func RefreshStats(ctx context.Context, rounds RoundStore, store StatsStore, userID string, now time.Time) (s stats.Summary, err error) {
	ctx, span := obs.Start(ctx, "stats.refresh", attribute.String("user.id", userID))
	defer func() { obs.End(span, err) }()

	all, err := rounds.AllRounds(ctx, userID)
	if err != nil {
		return stats.Summary{}, err
	}
	s = stats.Aggregate(userID, all, now)
	span.SetAttributes(attribute.Int("rounds", s.TotalRounds))
	if err := store.SaveStats(ctx, s); err != nil {
		// the fresh summary is still correct; only the cache is stale
		log.Printf("[stats] save user=%s: %v", userID, err)
	}
	return s, nil
}

// StatsHandler refreshes the owner's stats for every round event.
func StatsHandler(rounds RoundStore, store StatsStore, now func() time.Time) events.Handler {
	return func(ctx context.Context, key string, body []byte) error {
		switch key {
		case events.RKRoundCreated, events.RKRoundUpdated, events.RKRoundDeleted:
		default:
			log.Printf("[stats] skip unknown key=%s", key)
			return nil
		}
		ev, err := events.Decode[events.RoundEvent](body)
		if err != nil {
			return err
		}
		s, err := RefreshStats(ctx, rounds, store, ev.UserID, now())
		if err != nil {
			return err
		}
		log.Printf("[stats] %s round=%s user=%s rounds=%d", key, ev.RoundID, ev.UserID, s.TotalRounds)
		return nil
	}
}
