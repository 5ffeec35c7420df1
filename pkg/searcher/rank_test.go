package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.DocumentID
	}
	return out
}

func TestRank(t *testing.T) {
	input := []Result{
		{DocumentID: "10", Score: 0.5},
		{DocumentID: "2", Score: 0.9},
		{DocumentID: "3", Score: 0.5},
		{DocumentID: "1", Score: 0.1},
	}

	tests := []struct {
		name string
		k    int
		dir  Direction
		want []string
	}{
		{name: "higher is better", k: 4, dir: HigherIsBetter, want: []string{"2", "3", "10", "1"}},
		{name: "lower is better", k: 4, dir: LowerIsBetter, want: []string{"1", "3", "10", "2"}},
		{name: "truncates to k", k: 2, dir: HigherIsBetter, want: []string{"2", "3"}},
		{name: "k beyond length", k: 10, dir: HigherIsBetter, want: []string{"2", "3", "10", "1"}},
		{name: "zero k", k: 0, dir: HigherIsBetter, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(input, tt.k, tt.dir)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	// Given: an unsorted input
	input := []Result{{DocumentID: "b", Score: 1}, {DocumentID: "a", Score: 2}}
	snapshot := append([]Result(nil), input...)

	// When: ranking
	_ = Rank(input, 2, HigherIsBetter)

	// Then: the caller's slice is untouched
	assert.Equal(t, snapshot, input)
}

func TestRank_TopKIsPrefixOfTopKPlusOne(t *testing.T) {
	input := []Result{
		{DocumentID: "4", Score: 1}, {DocumentID: "0", Score: 1},
		{DocumentID: "3", Score: 2}, {DocumentID: "1", Score: 1},
		{DocumentID: "2", Score: 0},
	}

	for k := 1; k < len(input); k++ {
		small := Rank(input, k, HigherIsBetter)
		large := Rank(input, k+1, HigherIsBetter)
		assert.Equal(t, small, large[:k], "k=%d", k)
	}
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "higher_is_better", HigherIsBetter.String())
	assert.Equal(t, "lower_is_better", LowerIsBetter.String())
}
