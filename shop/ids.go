package shop

import (
	"fmt"
	"strconv"
	"strings"
)

// ID prefixes used by the catalog.
const (
	BookIDPrefix     = "BK"
	CategoryIDPrefix = "CAT"
)

// NextID derives the next sequential id for a prefix: it strips the prefix
// from every existing id, parses the remainder as an unsigned integer
// (ignoring ids whose remainder does not parse), and returns the prefix plus
// the zero-padded successor of the maximum, e.g. NextID("BK", ...) -> "BK004".
//
// Not concurrency-safe: two calls made before either result is persisted
// will return the same id. Acceptable under the single-writer model.
func NextID(prefix string, existing []string) string {
	max := uint64(0)
	for _, id := range existing {
		rest := strings.TrimPrefix(id, prefix)
		if rest == id {
			continue
		}
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}
