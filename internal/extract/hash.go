package extract

import (
	"crypto/sha1"
	"encoding/hex"
)

// contentID hashes the parts that uniquely identify a derived fact. The same
// parts always produce the same identifier, which makes re-extraction over
// unchanged input reproduce identical IDs.
func contentID(parts ...string) string {
	h := sha1.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
