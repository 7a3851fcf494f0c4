package core

import (
	"time"

	"github.com/google/uuid"
)

// DefaultNamespace is the sentinel namespace used when a caller does not
// supply a session or scope. Callers that need isolation must pass an
// explicit namespace; everything written without one shares this bucket.
const DefaultNamespace = "global"

// Message roles. Untrusted content is never emitted under RoleSystem.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MemoryItem is the unit of storage across all tiers: one turn, one
// retrieved chunk, or one promoted fact.
//
// Invariant: Content always holds the text the caller wrote. Compression
// produces a record *about* the content (hash, lengths, method) — it never
// replaces Content unless the caller explicitly stores the compressed form
// as a separate item.
type MemoryItem struct {
	// ID is stable for the item's lifetime. Generated when empty.
	ID string

	// Namespace isolates sessions/users/scopes. Empty means DefaultNamespace.
	Namespace string

	// Role is the conversational role that produced this item
	// (user/assistant/system), or empty for non-turn data.
	Role string

	// Content is the original text payload.
	Content string

	// Embedding is the vector for similarity search. Items without an
	// embedding are excluded from vector queries but remain retrievable
	// by key.
	Embedding []float32

	// Metadata holds session id, scope, tags, and similar caller fields.
	Metadata map[string]string

	// TTL overrides the tier's default time-to-live. Zero means use the
	// tier default.
	TTL time.Duration

	// Compression references the dedup/compression decision made for this
	// content, if any. Nil means the content was stored as-is with no
	// compression pass.
	Compression *CompressionRecord

	// CreatedAt is set from the pipeline clock at write time.
	CreatedAt time.Time
}

// EnsureID assigns a fresh UUID when the caller did not provide one.
func (m *MemoryItem) EnsureID() {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
}

// Scope returns the effective namespace, substituting the sentinel for
// empty values.
func (m *MemoryItem) Scope() string {
	if m.Namespace == "" {
		return DefaultNamespace
	}
	return m.Namespace
}

// HasEmbedding reports whether this item is eligible for vector search.
func (m *MemoryItem) HasEmbedding() bool {
	return len(m.Embedding) > 0
}

// NamespacedKey is the fully-qualified lookup key for tier storage.
// Two callers using the same raw key under different namespaces never
// collide.
type NamespacedKey struct {
	Namespace string
	Key       string
}

// NewKey builds a NamespacedKey, mapping an empty namespace to the
// sentinel.
func NewKey(namespace, key string) NamespacedKey {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return NamespacedKey{Namespace: namespace, Key: key}
}
