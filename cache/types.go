package cache

import "strings"

// Normalizer turns a raw query into a cache key
type Normalizer struct {
	CaseSensitive bool
}

// Key trims surrounding whitespace and, unless CaseSensitive is set, folds
// the query to lower case. The same Key is used for reads and writes.
func (n Normalizer) Key(query string) string {
	key := strings.TrimSpace(query)
	if !n.CaseSensitive {
		key = strings.ToLower(key)
	}
	return key
}

// IsEmpty reports whether the query is the distinguished "no active search"
// value
func IsEmpty(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Stats contains statistics about the cache
type Stats struct {
	Entries int    `json:"entries"`
	Results int    `json:"results"` // total cached result rows
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
