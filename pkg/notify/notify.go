// Package notify keeps the outcome of the last user action. There is at most
// one notification at a time and it clears itself after a fixed duration.
package notify

import (
	"sync"
	"time"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"

	DefaultTTL = 4 * time.Second
)

const (
	MsgBooked    = "Room booked successfully!"
	MsgConflict  = "This room is already booked for the selected date and time."
	MsgCancelled = "Booking canceled."
	MsgFailed    = "Something went wrong. Please try again."
	MsgNotFound  = "That booking no longer exists."
)

type Notification struct {
	Message   string    `json:"message"`
	Kind      Kind      `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Notifier struct {
	mu      sync.Mutex
	current *Notification
	timer   *time.Timer
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl, now: time.Now}
}

// Set replaces whatever is showing and restarts the expiry timer.
func (n *Notifier) Set(kind Kind, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}

	note := &Notification{
		Message:   message,
		Kind:      kind,
		ExpiresAt: n.now().Add(n.ttl),
	}
	n.current = note
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(note) })
	return *note
}

func (n *Notifier) Success(message string) Notification { return n.Set(Success, message) }
func (n *Notifier) Error(message string) Notification   { return n.Set(Error, message) }

func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return Notification{}, false
	}
	if !n.now().Before(n.current.ExpiresAt) {
		n.current = nil
		return Notification{}, false
	}
	return *n.current, true
}

// expire only clears note if nothing newer replaced it meanwhile.
func (n *Notifier) expire(note *Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == note {
		n.current = nil
	}
}

func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
}
