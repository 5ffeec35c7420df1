package searcher

import (
	"slices"

	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// Rank returns the best min(k, len(results)) results ordered by dir.
// Equal scores fall back to ascending document id so output never depends
// on the order an index happened to produce. results is not modified.
func Rank(results []Result, k int, dir Direction) []Result {
	if k <= 0 || len(results) == 0 {
		return []Result{}
	}

	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b Result) int {
		if a.Score != b.Score {
			better := a.Score > b.Score
			if dir == LowerIsBetter {
				better = a.Score < b.Score
			}
			if better {
				return -1
			}
			return 1
		}
		return document.CompareIDs(a.DocumentID, b.DocumentID)
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
