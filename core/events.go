package core

import "time"

// EventType classifies tier lifecycle notifications.
type EventType string

const (
	// EventWrite fires after an item is accepted into a tier.
	EventWrite EventType = "write"

	// EventEvict fires when capacity pressure removes the oldest entry.
	EventEvict EventType = "evict"

	// EventExpire fires when a lazy TTL check removes an expired entry.
	EventExpire EventType = "expire"
)

// Event describes one tier lifecycle occurrence delivered to subscribers.
type Event struct {
	Type      EventType
	Tier      string
	Namespace string
	Key       string
	At        time.Time

	// Item is the affected item when available. Nil for evictions of raw
	// values.
	Item *MemoryItem
}

// Subscriber receives tier lifecycle events. Subscribers are passed into
// the pipeline at construction time — there is no global registry. A
// subscriber returning an error (or panicking) never aborts the caller's
// write or read; the failure is reported through the pipeline's error
// handler.
type Subscriber interface {
	// Name identifies the subscriber in failure reports.
	Name() string

	// OnEvent handles one event. Must not block on network or disk.
	OnEvent(Event) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc struct {
	ID string
	Fn func(Event) error
}

func (s SubscriberFunc) Name() string { return s.ID }

func (s SubscriberFunc) OnEvent(ev Event) error { return s.Fn(ev) }
