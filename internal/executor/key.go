package executor

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key derives the deterministic cache key for one ticket execution from the
// idempotency prefix, ticket ID, and model identifier. Identical inputs
// always yield the identical key; changing any one input changes the key.
// A NUL separator keeps adjacent fields from colliding.
func Key(prefix, ticketID, model string) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write([]byte{0})
	h.Write([]byte(ticketID))
	h.Write([]byte{0})
	h.Write([]byte(model))
	return hex.EncodeToString(h.Sum(nil))
}
