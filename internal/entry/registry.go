package entry

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"golf-tracker/internal/apperr"
	"golf-tracker/internal/golf"
	"golf-tracker/internal/notice"
)

var (
	ErrSessionNotFound = errors.New("entry: session not found")
	ErrBusy            = errors.New("entry: a submit is already in progress")
)

// Session is one user's in-progress round entry.
type Session struct {
	ID     string
	UserID string

	mu       sync.Mutex
	wf       *Workflow
	board    *notice.Board
	busy     bool
	lastUsed time.Time
}

// View is the JSON snapshot of a session.
type View struct {
	ID           string             `json:"id"`
	Step         string             `json:"step"`
	StepIndex    int                `json:"stepIndex"`
	Basic        Basic              `json:"basic"`
	CourseName   string             `json:"courseName,omitempty"`
	Participants []golf.Participant `json:"participants"`
	Scores       []golf.HoleScore   `json:"scores"`
	Totals       golf.NineTotals    `json:"totals"`
	Errors       map[string]string  `json:"errors"`
	Notice       *notice.Notice     `json:"notice,omitempty"`
	Submitting   bool               `json:"submitting"`
	Round        *golf.Round        `json:"round,omitempty"`
}

func (s *Session) view() View {
	w := s.wf
	return View{
		ID:           s.ID,
		Step:         w.Step().String(),
		StepIndex:    int(w.Step()),
		Basic:        w.Basic(),
		CourseName:   w.CourseName(),
		Participants: w.Participants(),
		Scores:       w.Scores(),
		Totals:       w.Totals(),
		Errors:       w.Errors(),
		Notice:       s.board.Current(),
		Submitting:   s.busy,
		Round:        w.Submitted(),
	}
}

// View returns the current state of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// HideNotice dismisses the visible notice.
func (s *Session) HideNotice() { s.board.Hide() }

// Do runs fn against the workflow while holding the session. Validation
// failures are left to Errors(); other failures are posted as a notice.
func (s *Session) Do(fn func(w *Workflow) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return s.view(), ErrBusy
	}
	err := fn(s.wf)
	if err != nil && apperr.Classify(err) != apperr.KindValidation {
		s.board.ShowError(noticeText(err), false)
	}
	return s.view(), err
}

// Submit sends the round to sink. The session is released while sink runs,
// so a second Submit in the meantime fails with ErrBusy instead of waiting.
func (s *Session) Submit(ctx context.Context, sink RoundSink) (*golf.Round, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	r, err := s.wf.prepare(s.UserID)
	if err != nil {
		if apperr.Classify(err) != apperr.KindValidation {
			s.board.ShowError(noticeText(err), false)
		}
		s.mu.Unlock()
		return nil, err
	}
	s.busy = true
	s.mu.Unlock()

	createErr := sink.CreateRound(ctx, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.lastUsed = time.Now()
	out, err := s.wf.finish(r, createErr)
	if err != nil {
		log.Printf("[entry] submit session=%s round=%s: %v", s.ID, r.ID, err)
		s.board.ShowError(apperr.Message(err), apperr.Retryable(err))
		return nil, err
	}
	s.board.Show("round saved", notice.Success)
	return out, nil
}

func noticeText(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return apperr.Message(err)
	}
	return strings.TrimPrefix(err.Error(), "entry: ")
}

// Registry holds the open sessions. Sessions idle for longer than the TTL
// are dropped by Sweep.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *Registry) Open(userID string, w *Workflow) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		wf:       w,
		board:    notice.NewBoard(),
		lastUsed: r.now(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session if it exists and belongs to userID. Sessions of
// other users are reported as missing.
func (r *Registry) Get(id, userID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	s.mu.Lock()
	s.lastUsed = r.now()
	s.mu.Unlock()
	return s, nil
}

func (r *Registry) Discard(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes idle sessions and reports how many were dropped. A session
// with a submit in flight is never dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	n := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := !s.busy && s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				log.Printf("[entry] swept %d idle sessions", n)
			}
		}
	}
}
