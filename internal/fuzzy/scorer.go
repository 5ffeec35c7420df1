package fuzzy

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Scorer compares a query with a choice and returns a similarity in [0, 100].
type Scorer func(query, choice string) float64

// DefaultScorerName is used when no scorer is configured.
const DefaultScorerName = "partial_ratio"

var scorers = map[string]Scorer{
	"ratio":                    Ratio,
	"partial_ratio":            PartialRatio,
	"token_sort_ratio":         TokenSortRatio,
	"partial_token_sort_ratio": PartialTokenSortRatio,
	"token_set_ratio":          TokenSetRatio,
	"partial_token_set_ratio":  PartialTokenSetRatio,
	"token_ratio":              TokenRatio,
	"partial_token_ratio":      PartialTokenRatio,
	"WRatio":                   WRatio,
	"QRatio":                   QRatio,
}

// Lookup returns the scorer registered under name. An empty name yields the default.
func Lookup(name string) (Scorer, error) {
	if name == "" {
		name = DefaultScorerName
	}
	s, ok := scorers[name]
	if !ok {
		return nil, fmt.Errorf("unknown fuzzy scoring function: %s (valid options: %s)",
			name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the registered scorer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProcess lowercases s, replaces every non letter/digit with a space and trims.
func DefaultProcess(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}

// Ratio is the normalized InDel similarity of the two strings:
// 100 * (1 - indel/(len(a)+len(b))), where indel counts the insertions and
// deletions (no substitutions) turning a into b.
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

func ratioRunes(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	indel := total - 2*lcsLength(a, b)
	return 100 * (1 - float64(indel)/float64(total))
}

// lcsLength returns the length of the longest common subsequence of a and b.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := range a {
		for j := range b {
			switch {
			case a[i] == b[j]:
				curr[j+1] = prev[j] + 1
			case prev[j+1] >= curr[j]:
				curr[j+1] = prev[j+1]
			default:
				curr[j+1] = curr[j]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// PartialRatio is the best Ratio between the shorter string and any
// equally long window of the longer one, including windows hanging off either end.
func PartialRatio(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if strings.Contains(string(longer), string(shorter)) {
		return 100
	}

	m, n := len(shorter), len(longer)
	best := 0.0
	for start := -(m - 1); start < n; start++ {
		lo, hi := max(start, 0), min(start+m, n)
		if hi <= lo {
			continue
		}
		if s := ratioRunes(shorter, longer[lo:hi]); s > best {
			best = s
		}
	}
	return best
}

// TokenSortRatio compares the processed strings after sorting their words.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// PartialTokenSortRatio is TokenSortRatio with PartialRatio.
func PartialTokenSortRatio(a, b string) float64 {
	return PartialRatio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared words against each side's full word set,
// so extra words on one side only lower the score a little.
func TokenSetRatio(a, b string) float64 {
	ts := splitTokenSets(a, b)
	if ts.empty() {
		return 0
	}
	if ts.sect != "" && (ts.diffAB == "" || ts.diffBA == "") {
		return 100
	}
	return max(
		Ratio(ts.sect, ts.combinedAB()),
		Ratio(ts.sect, ts.combinedBA()),
		Ratio(ts.combinedAB(), ts.combinedBA()),
	)
}

// PartialTokenSetRatio is 100 when the strings share any word, else the
// PartialRatio of the words unique to each side.
func PartialTokenSetRatio(a, b string) float64 {
	ts := splitTokenSets(a, b)
	if ts.empty() {
		return 0
	}
	if ts.sect != "" {
		return 100
	}
	return PartialRatio(ts.diffAB, ts.diffBA)
}

// TokenRatio is the better of TokenSortRatio and TokenSetRatio.
func TokenRatio(a, b string) float64 {
	return max(TokenSortRatio(a, b), TokenSetRatio(a, b))
}

// PartialTokenRatio is the better of PartialTokenSortRatio and PartialTokenSetRatio.
func PartialTokenRatio(a, b string) float64 {
	return max(PartialTokenSortRatio(a, b), PartialTokenSetRatio(a, b))
}

// QRatio is Ratio over processed strings; empty input scores 0.
func QRatio(a, b string) float64 {
	pa, pb := DefaultProcess(a), DefaultProcess(b)
	if pa == "" || pb == "" {
		return 0
	}
	return Ratio(pa, pb)
}

// WRatio weighs several scorers by how different the string lengths are.
func WRatio(a, b string) float64 {
	const unbaseScale = 0.95

	pa, pb := DefaultProcess(a), DefaultProcess(b)
	if pa == "" || pb == "" {
		return 0
	}

	la, lb := float64(len([]rune(pa))), float64(len([]rune(pb)))
	lenRatio := max(la, lb) / min(la, lb)

	base := Ratio(pa, pb)
	if lenRatio < 1.5 {
		return max(
			base,
			TokenSortRatio(pa, pb)*unbaseScale,
			TokenSetRatio(pa, pb)*unbaseScale,
		)
	}

	partialScale := 0.9
	if lenRatio >= 8 {
		partialScale = 0.6
	}
	return max(
		base,
		PartialRatio(pa, pb)*partialScale,
		PartialTokenSortRatio(pa, pb)*unbaseScale*partialScale,
		PartialTokenSetRatio(pa, pb)*unbaseScale*partialScale,
	)
}

// sortedTokens processes s and returns its words sorted and space-joined.
func sortedTokens(s string) string {
	words := strings.Fields(DefaultProcess(s))
	sort.Strings(words)
	return strings.Join(words, " ")
}

// tokenSets holds the sorted shared and one-sided words of two strings.
type tokenSets struct {
	sect, diffAB, diffBA string
	sizeA, sizeB         int
}

// empty reports whether either side has no words at all.
func (t tokenSets) empty() bool {
	return t.sizeA == 0 || t.sizeB == 0
}

func (t tokenSets) combinedAB() string { return joinNonEmpty(t.sect, t.diffAB) }
func (t tokenSets) combinedBA() string { return joinNonEmpty(t.sect, t.diffBA) }

func splitTokenSets(a, b string) tokenSets {
	setA := wordSet(a)
	setB := wordSet(b)

	var sect, onlyA, onlyB []string
	for w := range setA {
		if _, ok := setB[w]; ok {
			sect = append(sect, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range setB {
		if _, ok := setA[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	return tokenSets{
		sect:   strings.Join(sect, " "),
		diffAB: strings.Join(onlyA, " "),
		diffBA: strings.Join(onlyB, " "),
		sizeA:  len(setA),
		sizeB:  len(setB),
	}
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(DefaultProcess(s)) {
		set[w] = struct{}{}
	}
	return set
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
