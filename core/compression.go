package core

// CompressionRecord is the traceability metadata attached to an item that
// passed through the compressor. It proves what was done to the content
// without destroying the original: the hash identifies the content bytes,
// the lengths quantify the reduction, and the method names the strategy.
//
// Invariant: Method and both lengths are always present when a record
// exists. OriginalHash is a pure function of the content bytes — identical
// content always yields the identical hash, whenever it is computed.
type CompressionRecord struct {
	// OriginalHash is the hex-encoded BLAKE3 digest of the original content.
	OriginalHash string

	// OriginalLength is the byte length of the original content.
	OriginalLength int

	// CompressedLength is the byte length of the compressed form. Equal to
	// OriginalLength when Method is "none" (pass-through).
	CompressedLength int

	// Method identifies the strategy: "dedup", "diff-patch", "head-trim",
	// "tail-trim", "zstd", "lz4", or "none".
	Method string

	// DedupOf holds the hash of the earlier identical content when Method
	// is "dedup". Empty otherwise.
	DedupOf string

	// DebugPreview carries bounded excerpts of the original and compressed
	// text. Populated only when the compressor runs in debug mode.
	DebugPreview *CompressionPreview
}

// CompressionPreview is a bounded excerpt pair for debugging compression
// decisions. Never rendered into prompt data sections.
type CompressionPreview struct {
	Original   string
	Compressed string
}

// Ratio returns compressed/original size, or 1 for empty content.
func (r *CompressionRecord) Ratio() float64 {
	if r.OriginalLength == 0 {
		return 1
	}
	return float64(r.CompressedLength) / float64(r.OriginalLength)
}

// IsDedup reports whether this record marks the content as a duplicate of
// earlier content.
func (r *CompressionRecord) IsDedup() bool {
	return r.Method == "dedup"
}
