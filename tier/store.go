package tier

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/becomeliminal/strata-go-sdk/core"
)

// Tier names. Each tier is an independent Store instance with its own
// policy; they never share entries or locks.
const (
	Session    = "session"
	ShortTerm  = "short-term"
	LongVector = "long-vector"
	Cold       = "cold"
)

// Config holds one tier's policy.
type Config struct {
	// Name labels events and errors emitted by this tier.
	Name string `yaml:"name"`

	// Capacity is the maximum number of live entries. When a Put would
	// exceed it, the oldest surviving entry (by insertion order, not
	// access) is evicted first. Zero means unbounded.
	Capacity int `yaml:"capacity"`

	// DefaultTTL applies to entries whose item does not carry its own TTL.
	// Zero means entries never expire.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// MaxItemSize is the per-item content ceiling in bytes. A Put above
	// the ceiling is rejected with core.ErrOversize — never truncated.
	// Zero means no ceiling.
	MaxItemSize int `yaml:"max_item_size"`

	// Disabled turns the tier into a no-op: Put accepts and discards,
	// Get always misses.
	Disabled bool `yaml:"disabled"`
}

type entry struct {
	key        core.NamespacedKey
	item       core.MemoryItem
	seq        uint64
	insertedAt time.Time
	expiresAt  time.Time // zero = never
	elem       *list.Element
}

// Store is one capacity/TTL-bounded tier. All operations serialize under a
// single mutex covering the full critical section (lookup, expiry check,
// eviction, insert). Expiry is lazy: checked at Get, and at Put for the
// affected key. There is no background sweeper — capacity bounds total
// size regardless.
type Store struct {
	cfg     Config
	clock   core.Clock
	onEvent func(core.Event) // may be nil; called outside the lock

	mu      sync.Mutex
	entries map[core.NamespacedKey]*entry
	order   *list.List // *entry, front = oldest
	seq     uint64
}

// NewStore builds a tier from its config. onEvent, when non-nil, receives
// write/evict/expire events after the store's lock is released, so event
// handlers may safely call back into any tier.
func NewStore(cfg Config, clock core.Clock, onEvent func(core.Event)) *Store {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Store{
		cfg:     cfg,
		clock:   clock,
		onEvent: onEvent,
		entries: make(map[core.NamespacedKey]*entry),
		order:   list.New(),
	}
}

// Name returns the tier label.
func (s *Store) Name() string { return s.cfg.Name }

// Put stores an item under (namespace, key). An existing key is updated in
// place and keeps its insertion position; a new key may evict the oldest
// entries to stay within capacity. The item's TTL overrides the tier
// default when set.
func (s *Store) Put(namespace, key string, item core.MemoryItem) error {
	if s.cfg.Disabled {
		return nil
	}
	if s.cfg.MaxItemSize > 0 && len(item.Content) > s.cfg.MaxItemSize {
		return fmt.Errorf("tier %s: key %q: %d bytes: %w",
			s.cfg.Name, key, len(item.Content), core.ErrOversize)
	}

	nk := core.NewKey(namespace, key)
	now := s.clock.Now()
	var events []core.Event

	s.mu.Lock()

	if existing, ok := s.entries[nk]; ok {
		if s.expired(existing, now) {
			events = append(events, s.removeLocked(existing, core.EventExpire, now))
		} else {
			// Update in place: insertion order is by first insertion,
			// matching FIFO eviction semantics.
			existing.item = item
			existing.expiresAt = s.expiry(item, now)
			s.mu.Unlock()
			s.emit(events)
			return nil
		}
	}

	if s.cfg.Capacity > 0 {
		for s.order.Len() >= s.cfg.Capacity {
			oldest := s.order.Front().Value.(*entry)
			events = append(events, s.removeLocked(oldest, core.EventEvict, now))
		}
	}

	s.seq++
	e := &entry{
		key:        nk,
		item:       item,
		seq:        s.seq,
		insertedAt: now,
		expiresAt:  s.expiry(item, now),
	}
	e.elem = s.order.PushBack(e)
	s.entries[nk] = e

	events = append(events, core.Event{
		Type:      core.EventWrite,
		Tier:      s.cfg.Name,
		Namespace: nk.Namespace,
		Key:       nk.Key,
		At:        now,
		Item:      itemCopy(item),
	})

	s.mu.Unlock()
	s.emit(events)
	return nil
}

// Get returns the item stored under (namespace, key). A Get on an expired
// entry removes it and reports a miss; the entry does not resurrect.
func (s *Store) Get(namespace, key string) (core.MemoryItem, bool) {
	if s.cfg.Disabled {
		return core.MemoryItem{}, false
	}
	nk := core.NewKey(namespace, key)
	now := s.clock.Now()
	var events []core.Event

	s.mu.Lock()
	e, ok := s.entries[nk]
	if !ok {
		s.mu.Unlock()
		return core.MemoryItem{}, false
	}
	if s.expired(e, now) {
		events = append(events, s.removeLocked(e, core.EventExpire, now))
		s.mu.Unlock()
		s.emit(events)
		return core.MemoryItem{}, false
	}
	item := e.item
	s.mu.Unlock()
	return item, true
}

// Seq returns the insertion sequence number for a live entry. Higher means
// more recently inserted; used for deterministic recency tie-breaks.
func (s *Store) Seq(namespace, key string) (uint64, bool) {
	nk := core.NewKey(namespace, key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[nk]
	if !ok || s.expired(e, s.clock.Now()) {
		return 0, false
	}
	return e.seq, true
}

// Delete removes the entry under (namespace, key), if present.
func (s *Store) Delete(namespace, key string) {
	nk := core.NewKey(namespace, key)
	s.mu.Lock()
	if e, ok := s.entries[nk]; ok {
		delete(s.entries, nk)
		s.order.Remove(e.elem)
	}
	s.mu.Unlock()
}

// List returns the live items in namespace, oldest first. Expired entries
// encountered during the walk are removed as a side effect.
func (s *Store) List(namespace string) []core.MemoryItem {
	if s.cfg.Disabled {
		return nil
	}
	if namespace == "" {
		namespace = core.DefaultNamespace
	}
	now := s.clock.Now()
	var events []core.Event
	var items []core.MemoryItem

	s.mu.Lock()
	for elem := s.order.Front(); elem != nil; {
		e := elem.Value.(*entry)
		elem = elem.Next()
		if s.expired(e, now) {
			events = append(events, s.removeLocked(e, core.EventExpire, now))
			continue
		}
		if e.key.Namespace == namespace {
			items = append(items, e.item)
		}
	}
	s.mu.Unlock()
	s.emit(events)
	return items
}

// Len returns the number of entries currently held, including entries
// that have expired but were never touched again.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *Store) expiry(item core.MemoryItem, now time.Time) time.Time {
	ttl := item.TTL
	if ttl == 0 {
		ttl = s.cfg.DefaultTTL
	}
	if ttl == 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// removeLocked unlinks an entry and returns the event describing why.
// Caller holds the lock and is responsible for emitting the event after
// releasing it.
func (s *Store) removeLocked(e *entry, reason core.EventType, now time.Time) core.Event {
	delete(s.entries, e.key)
	s.order.Remove(e.elem)
	return core.Event{
		Type:      reason,
		Tier:      s.cfg.Name,
		Namespace: e.key.Namespace,
		Key:       e.key.Key,
		At:        now,
		Item:      itemCopy(e.item),
	}
}

func (s *Store) emit(events []core.Event) {
	if s.onEvent == nil {
		return
	}
	for _, ev := range events {
		s.onEvent(ev)
	}
}

func itemCopy(item core.MemoryItem) *core.MemoryItem {
	c := item
	return &c
}
