package model

import "strings"

// PostingID builds the canonical dedup key from a source-qualified prefix and
// the upstream's native identifier. The parts are joined verbatim so the same
// raw record always yields the same key; nothing volatile (descriptions,
// timestamps) may ever feed into it.
func PostingID(parts ...string) string {
	return strings.Join(parts, "-")
}
