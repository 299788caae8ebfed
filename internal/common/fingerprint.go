package common

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint builds a deterministic cache key from query parameters.
// Parameters are sorted by name before hashing so that equivalent queries
// issued with different argument orderings share one cache entry.
func Fingerprint(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}

	sum := sha1.Sum([]byte(b.String()))
	return prefix + hex.EncodeToString(sum[:])
}
