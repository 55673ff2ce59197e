// Package ranking provides pure scoring, sorting, and filtering helpers for
// job recommendations and similarity results.
package ranking

import (
	"sort"
	"strings"
)

// ScoreFit returns the fraction of required skills present in the candidate
// set, in [0,1]. An empty required set scores 0.0. Matching is
// case-insensitive.
func ScoreFit(candidate, required []string) float64 {
	if len(required) == 0 {
		return 0.0
	}
	have := make(map[string]bool, len(candidate))
	for _, s := range candidate {
		have[strings.ToLower(s)] = true
	}
	matched := 0
	seen := make(map[string]bool, len(required))
	for _, s := range required {
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		if have[key] {
			matched++
		}
	}
	return float64(matched) / float64(len(seen))
}

// Rank sorts items descending by score, stably: ties keep their original
// relative order.
func Rank[T any](items []T, score func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return score(items[i]) > score(items[j])
	})
}

// Filters are the post-hoc recommendation filters. Zero values disable the
// corresponding predicate.
type Filters struct {
	JobType  string  `json:"jobType,omitempty"`
	Location string  `json:"location,omitempty"`
	MinScore float64 `json:"minFitScore,omitempty"`
}

// FilterItem is the view of an item the filters evaluate.
type FilterItem interface {
	FilterJobType() string
	FilterLocation() string
	FilterScore() float64
}

// ApplyFilters keeps only items satisfying every enabled predicate: exact
// match on job type, case-insensitive substring match on location, and a
// minimum score threshold. Order is preserved.
func ApplyFilters[T FilterItem](items []T, f Filters) []T {
	out := make([]T, 0, len(items))
	loc := strings.ToLower(f.Location)
	for _, item := range items {
		if f.JobType != "" && item.FilterJobType() != f.JobType {
			continue
		}
		if loc != "" && !strings.Contains(strings.ToLower(item.FilterLocation()), loc) {
			continue
		}
		if f.MinScore > 0 && item.FilterScore() < f.MinScore {
			continue
		}
		out = append(out, item)
	}
	return out
}
