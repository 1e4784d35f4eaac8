package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/ficai/signal-server/internal/domain"
	domainerrors "github.com/ficai/signal-server/internal/errors"
	"github.com/ficai/signal-server/internal/store"
)

// defaultSearchLimit caps how many tags a single search returns when the
// caller does not ask for fewer.
const defaultSearchLimit = 1000

// TagSearchService ranks known tags against a free-form query.
type TagSearchService struct {
	store  store.SignalStore
	logger *slog.Logger
}

// NewTagSearchService creates a new tag search service.
func NewTagSearchService(st store.SignalStore, logger *slog.Logger) *TagSearchService {
	return &TagSearchService{store: st, logger: logger}
}

// TagMatch is one ranked search result.
type TagMatch struct {
	Tag string `json:"tag"`
}

// Search returns up to limit known tags ranked by edit-distance closeness
// to the query, breaking ties by usage count (more used first) and then
// tag name. Matching is case-insensitive. A limit of zero or less means
// the default.
func (s *TagSearchService) Search(ctx context.Context, query string, limit int) ([]TagMatch, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	stats, err := s.store.ListTagStats(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to list tags")
	}

	type ranked struct {
		stat     domain.TagStat
		distance float64
	}

	needle := strings.ToLower(query)
	candidates := make([]ranked, len(stats))
	for i, st := range stats {
		candidates[i] = ranked{
			stat:     st,
			distance: normalizedDistance(needle, strings.ToLower(st.Tag)),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.stat.Count != b.stat.Count {
			return a.stat.Count > b.stat.Count
		}
		return a.stat.Tag < b.stat.Tag
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	matches := make([]TagMatch, len(candidates))
	for i, c := range candidates {
		matches[i] = TagMatch{Tag: c.stat.Tag}
	}
	return matches, nil
}

// normalizedDistance scales the edit distance by the longer string, so a
// one-letter typo in a short tag ranks the same as one in a long tag.
// Two empty strings are a perfect match.
func normalizedDistance(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return float64(levenshteinDistance(a, b)) / float64(longest)
}

// levenshteinDistance computes the byte-level edit distance between two
// strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create matrix
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
