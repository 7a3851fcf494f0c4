// Package compress implements content-addressed deduplication and
// compression for memory writes. Every pass produces a traceability
// record (hash, lengths, method); the original text is never destroyed —
// callers keep it in the session tier and store only the compressed form
// downstream.
package compress

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/becomeliminal/strata-go-sdk/core"
)

// Method identifies a dedup/compression strategy. The string values are
// what lands in CompressionRecord.Method.
type Method string

const (
	// MethodNone is pass-through: compressed == original. Also the
	// fallback whenever a method errors or fails to reduce size —
	// compression never fails a write.
	MethodNone Method = "none"

	// MethodDedup marks content whose digest matches recent history. The
	// compressed form is a short locator referencing the earlier hash.
	MethodDedup Method = "dedup"

	// MethodDiffPatch stores a patch against the previously compressed
	// content. Reversible given the base text.
	MethodDiffPatch Method = "diff-patch"

	// MethodHeadTrim keeps leading lines up to the trim budget. Lossy;
	// the untrimmed original stays in the session tier.
	MethodHeadTrim Method = "head-trim"

	// MethodTailTrim keeps trailing lines up to the trim budget. Lossy,
	// same retention rule as MethodHeadTrim.
	MethodTailTrim Method = "tail-trim"

	// MethodZstd and MethodLZ4 are byte compressors for large payloads,
	// carried as base64 text. Reversible.
	MethodZstd Method = "zstd"
	MethodLZ4  Method = "lz4"
)

// dedupLocatorPrefix marks a compressed form that is only a reference to
// earlier content.
const dedupLocatorPrefix = "ref:"

// Config tunes the compressor.
type Config struct {
	// HistorySize bounds the dedup hash history (FIFO). Default 1024.
	HistorySize int

	// TrimBudget is the character budget for head/tail trim methods.
	// Default 1024.
	TrimBudget int

	// Debug attaches bounded previews of original and compressed text to
	// each record.
	Debug bool

	// PreviewLength bounds debug previews. Default 120.
	PreviewLength int
}

// DefaultConfig is used when New receives a nil config.
var DefaultConfig = &Config{
	HistorySize:   1024,
	TrimBudget:    1024,
	PreviewLength: 120,
}

// Compressor computes digests, detects duplicates against a bounded
// recent history, and applies the requested compression method with
// pass-through fallback.
type Compressor struct {
	cfg Config

	mu      sync.Mutex
	seen    map[string]int // hash -> original length
	recent  []string       // FIFO of hashes for history eviction
	base    string         // diff base: previous unique content
	hasBase bool
}

// Ref points at earlier identical content.
type Ref struct {
	Hash   string
	Length int
}

// New builds a Compressor. A nil config selects DefaultConfig.
func New(cfg *Config) *Compressor {
	if cfg == nil {
		cfg = DefaultConfig
	}
	c := *cfg
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultConfig.HistorySize
	}
	if c.TrimBudget <= 0 {
		c.TrimBudget = DefaultConfig.TrimBudget
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = DefaultConfig.PreviewLength
	}
	return &Compressor{
		cfg:  c,
		seen: make(map[string]int),
	}
}

// DedupCheck reports whether identical content was seen recently, without
// recording the content.
func (c *Compressor) DedupCheck(content string) (Ref, bool) {
	hash := HashContent(content)
	c.mu.Lock()
	defer c.mu.Unlock()
	if length, ok := c.seen[hash]; ok {
		return Ref{Hash: hash, Length: length}, true
	}
	return Ref{}, false
}

// Compress runs the dedup check and then the requested method, returning
// the compressed form and its traceability record. It never returns an
// error: any method failure or non-reduction downgrades to MethodNone
// with the original passed through unchanged.
func (c *Compressor) Compress(content string, method Method) (string, core.CompressionRecord) {
	hash := HashContent(content)

	c.mu.Lock()
	if _, dup := c.seen[hash]; dup {
		c.mu.Unlock()
		locator := dedupLocatorPrefix + hash
		return locator, c.record(content, locator, MethodDedup, hash, hash)
	}
	c.remember(hash, len(content))
	base, hasBase := c.base, c.hasBase
	c.base, c.hasBase = content, true
	c.mu.Unlock()

	compressed, err := c.apply(content, method, base, hasBase)
	if err != nil || len(compressed) >= len(content) {
		if err != nil {
			log.Printf("[COMPRESS] %s failed, falling back to pass-through: %v", method, err)
		}
		return content, c.record(content, content, MethodNone, hash, "")
	}
	return compressed, c.record(content, compressed, method, hash, "")
}

func (c *Compressor) apply(content string, method Method, base string, hasBase bool) (string, error) {
	switch method {
	case MethodNone, "":
		return content, nil
	case MethodDiffPatch:
		if !hasBase {
			// First content has nothing to diff against.
			return content, nil
		}
		dmp := diffmatchpatch.New()
		return dmp.PatchToText(dmp.PatchMake(base, content)), nil
	case MethodHeadTrim:
		return trimLines(content, c.cfg.TrimBudget, true), nil
	case MethodTailTrim:
		return trimLines(content, c.cfg.TrimBudget, false), nil
	case MethodZstd:
		return base64.StdEncoding.EncodeToString(zstdCompress([]byte(content))), nil
	case MethodLZ4:
		compressed, err := lz4Compress([]byte(content))
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(compressed), nil
	default:
		return "", fmt.Errorf("unknown compression method %q", method)
	}
}

// Decompress recovers original text from a compressed form. base is the
// preceding content for MethodDiffPatch and the referenced original for
// MethodDedup; ignored otherwise. The recovered text is verified against
// the record's hash.
func (c *Compressor) Decompress(rec *core.CompressionRecord, compressed, base string) (string, error) {
	if rec == nil {
		return compressed, nil
	}
	var out string
	switch Method(rec.Method) {
	case MethodNone, "":
		out = compressed
	case MethodDedup:
		out = base
	case MethodDiffPatch:
		dmp := diffmatchpatch.New()
		patches, err := dmp.PatchFromText(compressed)
		if err != nil {
			return "", fmt.Errorf("parse patch: %w", err)
		}
		applied, oks := dmp.PatchApply(patches, base)
		for _, ok := range oks {
			if !ok {
				return "", fmt.Errorf("patch did not apply cleanly")
			}
		}
		out = applied
	case MethodZstd:
		raw, err := base64.StdEncoding.DecodeString(compressed)
		if err != nil {
			return "", fmt.Errorf("decode zstd payload: %w", err)
		}
		data, err := zstdDecompress(raw, rec.OriginalLength)
		if err != nil {
			return "", err
		}
		out = string(data)
	case MethodLZ4:
		raw, err := base64.StdEncoding.DecodeString(compressed)
		if err != nil {
			return "", fmt.Errorf("decode lz4 payload: %w", err)
		}
		data, err := lz4Decompress(raw, rec.OriginalLength)
		if err != nil {
			return "", err
		}
		out = string(data)
	case MethodHeadTrim, MethodTailTrim:
		return "", fmt.Errorf("%s is lossy: recover the original from the session tier", rec.Method)
	default:
		return "", fmt.Errorf("unknown compression method %q", rec.Method)
	}

	if got := HashContent(out); got != rec.OriginalHash {
		return "", fmt.Errorf("recovered content hash %s does not match record %s", got, rec.OriginalHash)
	}
	return out, nil
}

// remember adds a hash to the bounded history. Caller holds the lock.
func (c *Compressor) remember(hash string, length int) {
	if _, ok := c.seen[hash]; ok {
		return
	}
	c.seen[hash] = length
	c.recent = append(c.recent, hash)
	for len(c.recent) > c.cfg.HistorySize {
		oldest := c.recent[0]
		c.recent = c.recent[1:]
		delete(c.seen, oldest)
	}
}

func (c *Compressor) record(original, compressed string, method Method, hash, dedupOf string) core.CompressionRecord {
	rec := core.CompressionRecord{
		OriginalHash:     hash,
		OriginalLength:   len(original),
		CompressedLength: len(compressed),
		Method:           string(method),
		DedupOf:          dedupOf,
	}
	if c.cfg.Debug {
		rec.DebugPreview = &core.CompressionPreview{
			Original:   preview(original, c.cfg.PreviewLength),
			Compressed: preview(compressed, c.cfg.PreviewLength),
		}
	}
	return rec
}

// trimLines keeps whole lines from the head or tail of content until the
// character budget is spent.
func trimLines(content string, budget int, head bool) string {
	lines := strings.Split(content, "\n")
	if !head {
		reverse(lines)
	}
	used := 0
	kept := lines[:0]
	for _, line := range lines {
		cost := len(line) + 1
		if used+cost > budget && used > 0 {
			break
		}
		kept = append(kept, line)
		used += cost
	}
	if !head {
		reverse(kept)
	}
	return strings.Join(kept, "\n")
}

func reverse(lines []string) {
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
