package settings

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum returns a stable content hash of text.
// Themes are tracked by checksum because the GitHub raw cache makes
// file timestamps unreliable.
func Checksum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
