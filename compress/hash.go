package compress

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// HashContent returns the hex-encoded BLAKE3 digest of the content bytes.
// The digest is a pure function of the bytes: identical content hashes
// identically whenever and wherever it is computed. This is the hash
// carried in CompressionRecord.OriginalHash and used for deduplication.
func HashContent(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
