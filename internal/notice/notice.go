// Package notice holds transient user notifications (toasts). A Board is owned
// by whoever renders it and passed explicitly; there is no global instance.
package notice

import (
	"encoding/json"
	"sync"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

const (
	DefaultHide   = 4 * time.Second
	RetryableHide = 6 * time.Second
)

type Notice struct {
	Message  string        `json:"message"`
	Severity Severity      `json:"severity"`
	AutoHide time.Duration `json:"-"`
	Retry    bool          `json:"retry,omitempty"`
	Shown    time.Time     `json:"shownAt"`
}

func (n Notice) MarshalJSON() ([]byte, error) {
	type plain Notice
	return json.Marshal(struct {
		plain
		AutoHideMs int64 `json:"autoHideMs"`
	}{plain(n), n.AutoHide.Milliseconds()})
}

type Board struct {
	mu      sync.Mutex
	current *Notice
	now     func() time.Time
}

func NewBoard() *Board {
	return &Board{now: time.Now}
}

// Show replaces whatever is displayed.
func (b *Board) Show(msg string, sev Severity) {
	b.show(Notice{Message: msg, Severity: sev, AutoHide: DefaultHide})
}

// ShowError displays a failure; retryable ones stay longer and offer a retry action.
func (b *Board) ShowError(msg string, retryable bool) {
	n := Notice{Message: msg, Severity: Error, AutoHide: DefaultHide}
	if retryable {
		n.AutoHide = RetryableHide
		n.Retry = true
	}
	b.show(n)
}

func (b *Board) show(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n.Shown = b.now()
	b.current = &n
}

func (b *Board) Hide() {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
}

// Current returns the visible notice, or nil once it has been hidden or has
// outlived its auto-hide duration.
func (b *Board) Current() *Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	if b.now().Sub(b.current.Shown) >= b.current.AutoHide {
		b.current = nil
		return nil
	}
	n := *b.current
	return &n
}
