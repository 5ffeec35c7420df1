package store

import (
	"regexp"
	"strings"
	"unicode"
)

// tokenRegex matches letter/digit sequences (including underscores for initial split).
var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize splits text into lowercased terms.
// It handles camelCase and snake_case and drops tokens shorter than minLen.
func Tokenize(text string, minLen int) []string {
	var tokens []string

	for _, word := range tokenRegex.FindAllString(text, -1) {
		for _, t := range SplitCompoundToken(word) {
			lower := strings.ToLower(t)
			if len([]rune(lower)) >= minLen {
				tokens = append(tokens, lower)
			}
		}
	}

	return tokens
}

// SplitCompoundToken splits camelCase and snake_case words.
func SplitCompoundToken(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, SplitCamelCase(part)...)
			}
		}
		return result
	}

	return SplitCamelCase(token)
}

// SplitCamelCase splits camelCase and PascalCase words.
// Examples:
//   - "NewYork" -> ["New", "York"]
//   - "UNESCOHeritage" -> ["UNESCO", "Heritage"]
func SplitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevIsLower := unicode.IsLower(runes[i-1])
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// Split if previous is lowercase OR next is lowercase (handles acronyms)
			if prevIsLower || nextIsLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}

	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// FilterStopWords removes stop words from a token list.
func FilterStopWords(tokens []string, stopWords map[string]struct{}) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := stopWords[strings.ToLower(token)]; !isStop {
			result = append(result, token)
		}
	}
	return result
}

// BuildStopWordMap converts a slice of stop words to a map for efficient lookup.
func BuildStopWordMap(stopWords []string) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		m[strings.ToLower(word)] = struct{}{}
	}
	return m
}

// analyze runs the shared tokenize + stop word pipeline used by every lexical backend.
func analyze(text string, cfg LexicalConfig, stopWords map[string]struct{}) []string {
	return FilterStopWords(Tokenize(text, cfg.MinTokenLength), stopWords)
}

// uniqueTerms returns terms in first-seen order without repeats.
func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
