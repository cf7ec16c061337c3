package events

import (
	"encoding/json"
	"testing"
	"time"

	"golf-tracker/internal/golf"
)

func TestRoundEventRoundTripsThroughDecode(t *testing.T) {
	at := time.Date(2026, 5, 3, 12, 0, 0, 0, time.UTC)
	ev := NewRoundEvent(&golf.Round{ID: "r1", UserID: "u1", CourseID: "c1", PlayDate: "2026-05-03", TotalScore: 88}, at)

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode[RoundEvent](b)
	if err != nil {
		t.Fatal(err)
	}
	if got.RoundID != "r1" || got.UserID != "u1" || got.TotalScore != 88 || !got.At.Equal(at) {
		t.Fatalf("decoded = %+v", got)
	}

	if _, err := Decode[RoundEvent]([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
