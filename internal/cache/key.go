package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// QueryKey builds a stable cache key from a query and its search options, so
// identical queries with identical options hit the cache regardless of
// field ordering.
func QueryKey(query string, limit int, minScore float64, weight float64) string {
	combined := fmt.Sprintf("%s\x00%d\x00%f\x00%f", query, limit, minScore, weight)
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}
