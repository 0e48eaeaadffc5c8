package feed

import "strings"

// SortMode selects a ranking strategy.
type SortMode string

const (
	SortRecent  SortMode = "recent"
	SortPopular SortMode = "popular"
	SortLiked   SortMode = "liked"
)

// ParseSortMode maps a query value to a SortMode. Empty and unknown values
// fall back to SortRecent.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortPopular:
		return SortPopular
	case SortLiked:
		return SortLiked
	default:
		return SortRecent
	}
}

// OffsetBased reports whether the mode pages by skip count rather than by id.
// Offset pages can skip or repeat posts whose rank changes between requests.
func (m SortMode) OffsetBased() bool {
	return m == SortPopular || m == SortLiked
}
