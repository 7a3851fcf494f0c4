package tier

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/becomeliminal/strata-go-sdk/core"
)

// VectorStore is the long-term tier: a Store for lifecycle bookkeeping
// (FIFO capacity, lazy TTL, namespacing) plus an embedded chromem-go index
// for cosine similarity search. Each namespace gets its own chromem
// collection, so similarity queries never cross isolation boundaries.
//
// Items stored through Put (no embedding) participate in the tier's
// lifecycle and key lookup but are invisible to SimilaritySearch.
type VectorStore struct {
	store *Store
	db    *chromem.DB

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// Match is one similarity search result with its provenance.
type Match struct {
	Item       core.MemoryItem
	Similarity float64

	// Seq is the tier insertion sequence, used downstream for recency
	// tie-breaks.
	Seq uint64
}

// NewVectorStore builds the long-term vector tier. Lifecycle events from
// the underlying store (including evictions) are forwarded to onEvent;
// evicted and expired entries are also removed from the similarity index
// so stale vectors cannot be retrieved.
func NewVectorStore(cfg Config, clock core.Clock, onEvent func(core.Event)) *VectorStore {
	vs := &VectorStore{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
	vs.store = NewStore(cfg, clock, func(ev core.Event) {
		if ev.Type == core.EventEvict || ev.Type == core.EventExpire {
			vs.dropDocument(ev.Namespace, ev.Key)
		}
		if onEvent != nil {
			onEvent(ev)
		}
	})
	return vs
}

// Put stores an item without indexing it for similarity search. Use
// PutVector for embedded items.
func (vs *VectorStore) Put(namespace, key string, item core.MemoryItem) error {
	return vs.store.Put(namespace, key, item)
}

// PutVector stores an embedded item and indexes it for similarity search.
// Rejects items without an embedding.
func (vs *VectorStore) PutVector(ctx context.Context, namespace, key string, embedding []float32, item core.MemoryItem) error {
	if len(embedding) == 0 {
		return fmt.Errorf("vector tier: key %q: empty embedding", key)
	}
	item.Embedding = embedding

	if err := vs.store.Put(namespace, key, item); err != nil {
		return err
	}

	col, err := vs.collection(namespace)
	if err != nil {
		return err
	}
	doc := chromem.Document{
		ID:        core.NewKey(namespace, key).Key,
		Content:   item.Content,
		Embedding: embedding,
		Metadata: map[string]string{
			"item_id": item.ID,
			"role":    item.Role,
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	return nil
}

// Get returns an item by key, embedded or not.
func (vs *VectorStore) Get(namespace, key string) (core.MemoryItem, bool) {
	return vs.store.Get(namespace, key)
}

// Delete removes an item from both the tier and the similarity index.
func (vs *VectorStore) Delete(namespace, key string) {
	vs.store.Delete(namespace, key)
	vs.dropDocument(core.NewKey(namespace, key).Namespace, key)
}

// List returns the namespace's live items, oldest first.
func (vs *VectorStore) List(namespace string) []core.MemoryItem {
	return vs.store.List(namespace)
}

// Len returns the number of entries held by the underlying store.
func (vs *VectorStore) Len() int { return vs.store.Len() }

// SimilaritySearch returns up to topK embedded items in the namespace
// ranked by cosine similarity to the query vector. Entries that expired
// since indexing are filtered out (and lazily removed by the lookup).
func (vs *VectorStore) SimilaritySearch(ctx context.Context, namespace string, query []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	namespace = core.NewKey(namespace, "").Namespace

	vs.mu.RLock()
	col, ok := vs.collections[namespace]
	vs.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	// chromem requires nResults <= collection size; retry smaller until
	// it fits.
	var results []chromem.Result
	for limit := topK; limit >= 1; limit-- {
		var err error
		results, err = col.QueryEmbedding(ctx, query, limit, nil, nil)
		if err == nil {
			break
		}
		if isTooFewDocsError(err) {
			if limit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, result := range results {
		item, ok := vs.store.Get(namespace, result.ID)
		if !ok {
			// Expired or evicted between indexing and query; the Get
			// already removed it from the store, drop the vector too.
			vs.dropDocument(namespace, result.ID)
			continue
		}
		seq, _ := vs.store.Seq(namespace, result.ID)
		matches = append(matches, Match{
			Item:       item,
			Similarity: float64(result.Similarity),
			Seq:        seq,
		})
	}
	return matches, nil
}

// collection returns the namespace's chromem collection, creating it on
// first use.
func (vs *VectorStore) collection(namespace string) (*chromem.Collection, error) {
	namespace = core.NewKey(namespace, "").Namespace

	vs.mu.RLock()
	col, ok := vs.collections[namespace]
	vs.mu.RUnlock()
	if ok {
		return col, nil
	}

	vs.mu.Lock()
	defer vs.mu.Unlock()
	if col, ok := vs.collections[namespace]; ok {
		return col, nil
	}

	name := "ns_" + sanitizeCollectionName(namespace)
	col, err := vs.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	vs.collections[namespace] = col
	return col, nil
}

func (vs *VectorStore) dropDocument(namespace, key string) {
	vs.mu.RLock()
	col, ok := vs.collections[namespace]
	vs.mu.RUnlock()
	if !ok {
		return
	}
	if err := col.Delete(context.Background(), nil, nil, key); err != nil {
		log.Printf("[TIER] drop indexed vector %s/%s: %v", namespace, key, err)
	}
}

// sanitizeCollectionName maps arbitrary namespaces onto chromem's allowed
// collection name characters.
func sanitizeCollectionName(namespace string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, namespace)
}

func isTooFewDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}
