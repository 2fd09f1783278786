package queue

import (
	"time"

	"github.com/google/uuid"
)

// UpdateType identifies the kind of state change an Update requests.
// Types are namespaced strings, e.g. "pet.feed" or "care.decay".
type UpdateType string

// Update is one queued request to change simulation state. An Update is never
// mutated after creation, except for RetryCount which the engine increments
// when a retryable update is re-enqueued after a failed handling pass.
type Update struct {
	ID         string
	Type       UpdateType
	Payload    any
	Source     string // producer name, stamped by the Writer at enqueue time
	Target     string // optional: deliver to this named system only
	Priority   int    // higher drains first; ties break by arrival order
	Retryable  bool
	RetryCount int
	EnqueuedAt time.Time

	seq uint64 // arrival sequence, assigned by the queue
}

// NewUpdate creates an update with a fresh ID. Source is stamped later by the
// Writer that enqueues it.
func NewUpdate(t UpdateType, payload any) *Update {
	return &Update{
		ID:      uuid.NewString(),
		Type:    t,
		Payload: payload,
	}
}

// WithPriority sets the drain priority. Higher values drain first.
func (u *Update) WithPriority(p int) *Update {
	u.Priority = p
	return u
}

// WithTarget restricts delivery to a single named system.
func (u *Update) WithTarget(system string) *Update {
	u.Target = system
	return u
}

// MarkRetryable flags the update for re-enqueue on handler failure.
func (u *Update) MarkRetryable() *Update {
	u.Retryable = true
	return u
}
