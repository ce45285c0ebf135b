// Package audit persists a dispute-resolution fingerprint for each claim.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// snapshotCap bounds how much normalized text participates in the hash.
// Enough to cover any realistic profile header and result table while
// keeping the hash stable against trailing page noise.
const snapshotCap = 20000

var snapshotWhitespaceRe = regexp.MustCompile(`\s+`)

// SnapshotHash produces a content hash of a whitespace-normalized,
// length-bounded projection of the page. Two fetches of the same logical
// page hash identically even when incidental formatting differs, and the
// raw markup itself is never stored.
func SnapshotHash(html []byte) string {
	normalized := strings.TrimSpace(snapshotWhitespaceRe.ReplaceAllString(string(html), " "))
	if len(normalized) > snapshotCap {
		normalized = normalized[:snapshotCap]
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
