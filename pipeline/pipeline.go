// Package pipeline wires the tiers, compressor, retriever, and prompt
// assembler into one context-governance layer sitting between an
// application and its model provider. Turns flow in through WriteTurn and
// come back out, ranked and budgeted, through Build and Respond.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/dgraph-io/ristretto"

	"github.com/becomeliminal/strata-go-sdk/compress"
	"github.com/becomeliminal/strata-go-sdk/core"
	"github.com/becomeliminal/strata-go-sdk/prompt"
	"github.com/becomeliminal/strata-go-sdk/retrieve"
	"github.com/becomeliminal/strata-go-sdk/tier"
)

// MetadataScope is the item metadata key naming the session scope a turn
// belongs to. Absent or empty means the shared namespace.
const MetadataScope = "scope"

// Pipeline is the top-level object applications hold. Construct with New
// and share freely; all methods are safe for concurrent use.
type Pipeline struct {
	cfg Config

	clock      core.Clock
	tiers      *tier.Cache
	compressor *compress.Compressor
	vault      *retrieve.NegativeVault
	retriever  *retrieve.Retriever
	assembler  *prompt.Assembler

	embedder Embedder
	provider Provider

	embedCache *ristretto.Cache

	subscribers []core.Subscriber
	onSubError  func(*core.SubscriberError)
}

// Option customizes a Pipeline at construction.
type Option func(*Pipeline)

// WithEmbedder enables vector indexing and retrieval.
func WithEmbedder(e Embedder) Option {
	return func(p *Pipeline) { p.embedder = e }
}

// WithProvider enables Respond.
func WithProvider(pr Provider) Option {
	return func(p *Pipeline) { p.provider = pr }
}

// WithClock overrides the time source. Tests use this to drive TTLs.
func WithClock(c core.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithSubscribers registers observers for tier lifecycle events. A
// subscriber that panics or errors never affects the write path or the
// other subscribers.
func WithSubscribers(subs ...core.Subscriber) Option {
	return func(p *Pipeline) { p.subscribers = append(p.subscribers, subs...) }
}

// WithSubscriberErrorHandler overrides how subscriber failures are
// reported. The default logs them.
func WithSubscriberErrorHandler(fn func(*core.SubscriberError)) Option {
	return func(p *Pipeline) { p.onSubError = fn }
}

// New builds a pipeline from cfg. A nil cfg selects DefaultConfig.
func New(cfg *Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}
	p := &Pipeline{
		cfg:   *cfg,
		clock: core.SystemClock{},
		compressor: compress.New(&compress.Config{
			Debug: cfg.Debug,
		}),
		vault:     retrieve.NewNegativeVault(cfg.NegativeCapacity),
		assembler: prompt.NewAssembler(nil),
		onSubError: func(e *core.SubscriberError) {
			log.Printf("[PIPELINE] subscriber error: %v", e)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.tiers = tier.NewCache(cfg.Tiers, p.clock, p.dispatch)
	p.retriever = retrieve.NewRetriever(p.tiers.Vector, retrieve.NewScorer(cfg.Beta), cfg.DedupThreshold)

	if p.embedder != nil {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 10_000,
			MaxCost:     1 << 24,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding cache: %w", err)
		}
		p.embedCache = cache
	}
	return p, nil
}

// WriteTurn records one conversational turn. The original text goes into
// the session tier, the compressed form into the short-term tier, and,
// when an embedder is configured and the turn is not a duplicate, its
// vector into the long-vector tier. Returns the stored item carrying its
// traceability record.
func (p *Pipeline) WriteTurn(ctx context.Context, role, content string, metadata map[string]string) (*core.MemoryItem, error) {
	ns := core.DefaultNamespace
	if metadata != nil && metadata[MetadataScope] != "" {
		ns = metadata[MetadataScope]
	}

	compressed, rec := p.compressor.Compress(content, p.cfg.CompressionMethod)

	item := core.MemoryItem{
		Namespace:   ns,
		Role:        role,
		Content:     content,
		Metadata:    copyMetadata(metadata),
		Compression: &rec,
		CreatedAt:   p.clock.Now(),
	}
	item.EnsureID()

	if err := p.tiers.Session.Put(ns, item.ID, item); err != nil {
		return nil, fmt.Errorf("session write: %w", err)
	}

	mirror := item
	mirror.Content = compressed
	if err := p.tiers.ShortTerm.Put(ns, item.ID, mirror); err != nil {
		// The authoritative copy is already in the session tier.
		log.Printf("[PIPELINE] short-term mirror skipped for %s: %v", item.ID, err)
	}

	if p.embedder != nil && !rec.IsDedup() {
		embedding, err := p.embed(ctx, content, rec.OriginalHash)
		if err != nil {
			log.Printf("[PIPELINE] embedding skipped for %s: %v", item.ID, err)
		} else {
			vecItem := item
			if err := p.tiers.Vector.PutVector(ctx, ns, item.ID, embedding, vecItem); err != nil {
				log.Printf("[PIPELINE] vector index skipped for %s: %v", item.ID, err)
			}
		}
	}
	return &item, nil
}

// GetContextForScope returns the live turns for a scope, oldest first:
// session originals, then short-term mirrors whose originals already
// aged out. Duplicate turns appear as their short locator form instead
// of repeating the text.
func (p *Pipeline) GetContextForScope(scope string) []core.MemoryItem {
	if scope == "" {
		scope = core.DefaultNamespace
	}
	session := p.tiers.Session.List(scope)
	out := make([]core.MemoryItem, 0, len(session))
	seen := make(map[string]bool, len(session))
	for _, item := range session {
		seen[item.ID] = true
		if item.Compression != nil && item.Compression.IsDedup() {
			if mirror, ok := p.tiers.ShortTerm.Get(scope, item.ID); ok {
				out = append(out, mirror)
				continue
			}
		}
		out = append(out, item)
	}
	for _, mirror := range p.tiers.ShortTerm.List(scope) {
		if !seen[mirror.ID] {
			out = append(out, mirror)
		}
	}
	return out
}

// AddNegativeExample embeds text into the shared vault so retrieval can
// steer away from similar content. Works without an embedder too; the
// example then only appears in the NEGATIVE_EXAMPLES prompt section.
func (p *Pipeline) AddNegativeExample(ctx context.Context, text string) error {
	var embedding []float32
	if p.embedder != nil {
		var err error
		embedding, err = p.embed(ctx, text, compress.HashContent(text))
		if err != nil {
			return fmt.Errorf("embed negative example: %w", err)
		}
	}
	p.vault.Add(text, embedding)
	return nil
}

// BuildOptions tune one prompt assembly.
type BuildOptions struct {
	// Scope selects the session namespace. Empty means the shared
	// namespace.
	Scope string

	// System overrides the configured system prompt for this call.
	System string

	Tools []core.ToolSpec

	// NegativeExamples are rendered in addition to the vault contents.
	NegativeExamples []string

	// Budget overrides the configured token budget. Zero keeps it.
	Budget int

	// TopK overrides the configured retrieval depth. Zero keeps it.
	TopK int
}

// Build assembles the prompt for userQuery: session context plus
// retrieved long-term items, negative examples, and tool descriptors,
// held under the token budget.
func (p *Pipeline) Build(ctx context.Context, userQuery string, opts BuildOptions) (*prompt.Result, error) {
	scope := opts.Scope
	if scope == "" {
		scope = core.DefaultNamespace
	}

	items := p.GetContextForScope(scope)
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		seen[item.ID] = true
	}

	if p.embedder != nil {
		query, err := p.embed(ctx, userQuery, compress.HashContent(userQuery))
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		topK := opts.TopK
		if topK <= 0 {
			topK = p.cfg.TopK
		}
		results, err := p.retriever.Retrieve(ctx, scope, query, p.vault.Embeddings(), topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve: %w", err)
		}
		for _, res := range results {
			if seen[res.Item.ID] {
				continue
			}
			seen[res.Item.ID] = true
			items = append(items, res.Item)
		}
	}

	system := opts.System
	if system == "" {
		system = p.cfg.SystemPrompt
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = p.cfg.TokenBudget
	}
	negatives := append(p.vault.Texts(), opts.NegativeExamples...)

	return p.assembler.Build(prompt.Assembly{
		System:           system,
		Context:          items,
		NegativeExamples: negatives,
		Tools:            opts.Tools,
		UserQuery:        userQuery,
		Budget:           budget,
	})
}

// Respond writes the user turn, assembles the prompt, calls the provider,
// and writes the assistant turn back into memory.
func (p *Pipeline) Respond(ctx context.Context, userQuery string, opts BuildOptions) (string, error) {
	if p.provider == nil {
		return "", fmt.Errorf("no provider configured")
	}
	meta := map[string]string{MetadataScope: opts.Scope}
	if _, err := p.WriteTurn(ctx, core.RoleUser, userQuery, meta); err != nil {
		return "", err
	}
	res, err := p.Build(ctx, userQuery, opts)
	if err != nil {
		return "", err
	}
	reply, err := p.provider.Complete(ctx, res.Messages, CompleteOptions{})
	if err != nil {
		return "", fmt.Errorf("provider: %w", err)
	}
	if _, err := p.WriteTurn(ctx, core.RoleAssistant, reply, meta); err != nil {
		return "", err
	}
	return reply, nil
}

// Tiers exposes the underlying tier cache for direct inspection and
// promotion.
func (p *Pipeline) Tiers() *tier.Cache { return p.tiers }

// Vault exposes the shared negative-example vault.
func (p *Pipeline) Vault() *retrieve.NegativeVault { return p.vault }

// Compressor exposes the content-addressed compressor, e.g. to recover
// originals from traceability records.
func (p *Pipeline) Compressor() *compress.Compressor { return p.compressor }

// dispatch receives every tier lifecycle event. Short-term evictions
// demote into the cold tier before subscribers run.
func (p *Pipeline) dispatch(ev core.Event) {
	if ev.Type == core.EventEvict && ev.Tier == tier.ShortTerm && ev.Item != nil {
		if err := p.tiers.Cold.Put(ev.Namespace, ev.Key, *ev.Item); err != nil {
			log.Printf("[PIPELINE] cold demotion skipped for %s: %v", ev.Key, err)
		}
	}
	for _, sub := range p.subscribers {
		p.notify(sub, ev)
	}
}

func (p *Pipeline) notify(sub core.Subscriber, ev core.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.onSubError(&core.SubscriberError{
				Subscriber: sub.Name(),
				Event:      ev,
				Err:        fmt.Errorf("panic: %v", r),
			})
		}
	}()
	if err := sub.OnEvent(ev); err != nil {
		p.onSubError(&core.SubscriberError{Subscriber: sub.Name(), Event: ev, Err: err})
	}
}

func (p *Pipeline) embed(ctx context.Context, text, hash string) ([]float32, error) {
	if p.embedCache != nil {
		if v, ok := p.embedCache.Get(hash); ok {
			return v.([]float32), nil
		}
	}
	embedding, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if p.embedCache != nil {
		p.embedCache.Set(hash, embedding, int64(4*len(embedding)))
	}
	return embedding, nil
}

func copyMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
