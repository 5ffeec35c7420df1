// Package fuzzy implements approximate string similarity scorers.
//
// Every scorer returns a similarity in [0, 100], where 100 means identical
// (or, for partial scorers, that the shorter string occurs in the longer one).
// Ratios are InDel similarities (insertions and deletions only) measured in runes.
package fuzzy
