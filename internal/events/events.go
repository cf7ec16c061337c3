// Package events carries round changes over RabbitMQ so that derived data
// (the per-user stats cache) can be refreshed outside the request path.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golf-tracker/internal/golf"
)

const (
	RKRoundCreated = "round.created"
	RKRoundUpdated = "round.updated"
	RKRoundDeleted = "round.deleted"

	// RKRoundAll binds a queue to every round event.
	RKRoundAll = "round.*"
)

type RoundEvent struct {
	RoundID    string    `json:"round_id"`
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id,omitempty"`
	PlayDate   string    `json:"play_date,omitempty"`
	TotalScore int       `json:"total_score,omitempty"`
	At         time.Time `json:"at"`
}

func NewRoundEvent(r *golf.Round, at time.Time) RoundEvent {
	return RoundEvent{
		RoundID:    r.ID,
		UserID:     r.UserID,
		CourseID:   r.CourseID,
		PlayDate:   r.PlayDate,
		TotalScore: r.TotalScore,
		At:         at,
	}
}

// Publisher sends a JSON event under a routing key.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishJSON(context.Context, string, any) error { return nil }
func (Nop) Close() error                                   { return nil }

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
