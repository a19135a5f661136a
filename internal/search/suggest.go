package search

import (
	"context"
	"strings"
)

// minSuggestPrefix is the minimum prefix length for suggestions.
const minSuggestPrefix = 2

// Suggest returns up to limit completion candidates for prefix: salon
// names, service names, quarters, and cities whose lowercase form
// contains the lowercase prefix. De-duplicated case-insensitively,
// preserving the casing of the first occurrence, in catalog traversal
// order. A prefix shorter than 2 characters yields no suggestions.
func (e *Engine) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	if len([]rune(prefix)) < minSuggestPrefix {
		return []string{}, nil
	}
	idx, err := e.current(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 8
	}

	needle := strings.ToLower(prefix)
	seen := make(map[string]bool)
	suggestions := make([]string, 0, limit)

	add := func(s string) bool {
		if len(suggestions) >= limit {
			return false
		}
		key := strings.ToLower(s)
		if s == "" || seen[key] || !strings.Contains(key, needle) {
			return true
		}
		seen[key] = true
		suggestions = append(suggestions, s)
		return len(suggestions) < limit
	}

	for _, entry := range idx.entries {
		if !add(entry.salon.Name) {
			break
		}
		full := true
		for _, svc := range entry.salon.Services {
			if !add(svc.Name) {
				full = false
				break
			}
		}
		if !full {
			break
		}
		if !add(entry.salon.Location.Quarter) {
			break
		}
		if !add(entry.salon.Location.City) {
			break
		}
	}
	return suggestions, nil
}

// containsFold reports whether needle is a case-insensitive substring
// of haystack.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
