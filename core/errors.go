package core

import (
	"errors"
	"fmt"
)

// ErrOversize is returned when a write exceeds a tier's per-item ceiling.
// The write is aborted; content is never silently truncated or dropped.
var ErrOversize = errors.New("item exceeds tier size ceiling")

// ErrBudgetExceeded is returned when prompt assembly cannot satisfy the
// token budget even after trimming everything trimmable. No partial prompt
// is emitted.
var ErrBudgetExceeded = errors.New("token budget exceeded after maximal trimming")

// SubscriberError records one subscriber's failure during event
// notification. Subscriber failures are isolated from the write/read
// caller but must be reported, not swallowed.
type SubscriberError struct {
	Subscriber string
	Event      Event
	Err        error
}

func (e *SubscriberError) Error() string {
	return fmt.Sprintf("subscriber %s failed on %s: %v", e.Subscriber, e.Event.Type, e.Err)
}

func (e *SubscriberError) Unwrap() error {
	return e.Err
}
