package filter

import "strings"

// KeywordFilter matches titles that look like entry-level corporate roles.
// Four ordered checks, short-circuiting:
//  1. title contains at least one entry-level keyword
//  2. title contains no seniority keyword
//  3. title contains no retail/store keyword
//  4. if extra keywords are configured, title contains at least one of them
//
// All matching is case-insensitive substring matching, not tokenized. That
// means "junior" matches inside "conjunction"; we keep the behavior because
// the keyword sets are curated around it.
type KeywordFilter struct {
	include       []string
	excludeSenior []string
	excludeRetail []string
	extraKeywords []string
}

// NewKeywordFilter builds a filter from the configured keyword sets. All
// keywords are lowercased once at construction.
func NewKeywordFilter(include, excludeSenior, excludeRetail, extra []string) *KeywordFilter {
	return &KeywordFilter{
		include:       lowerAll(include),
		excludeSenior: lowerAll(excludeSenior),
		excludeRetail: lowerAll(excludeRetail),
		extraKeywords: lowerAll(extra),
	}
}

// Match reports whether the title passes all four checks.
func (f *KeywordFilter) Match(title string) bool {
	t := strings.ToLower(title)

	if !containsAny(t, f.include) {
		return false
	}
	if containsAny(t, f.excludeSenior) {
		return false
	}
	if containsAny(t, f.excludeRetail) {
		return false
	}
	if len(f.extraKeywords) > 0 && !containsAny(t, f.extraKeywords) {
		return false
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out
}
