//go:build ignore

// Package main generates a synthetic document collection for benchmarking
// retrievers.
// Usage: go run scripts/generate-corpus.go -docs 10000 -output testdata/bench/docs.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numDocs   = flag.Int("docs", 10000, "Number of documents to generate")
	minWords  = flag.Int("min-words", 12, "Minimum words per document text")
	maxWords  = flag.Int("max-words", 60, "Maximum words per document text")
	outputPath = flag.String("output", "testdata/bench/docs.json", "Output file, - for stdout")
	queries   = flag.Int("queries", 0, "Also write this many queries next to the output")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Word pools for generating realistic text
var (
	places = []string{
		"Paris", "London", "Berlin", "Madrid", "Rome",
		"Vienna", "Lisbon", "Prague", "Dublin", "Oslo",
		"Athens", "Warsaw", "Helsinki", "Brussels", "Amsterdam",
	}
	subjects = []string{
		"capital", "city", "river", "museum", "cathedral",
		"university", "harbour", "market", "railway", "parliament",
		"bridge", "festival", "library", "opera", "district",
	}
	verbs = []string{
		"hosts", "borders", "attracts", "houses", "connects",
		"celebrates", "overlooks", "employs", "preserves", "exports",
	}
	topics = []string{
		"finance", "diplomacy", "commerce", "fashion", "gastronomy",
		"science", "arts", "industry", "tourism", "education",
		"shipping", "banking", "design", "music", "history",
	}
	fillers = []string{
		"the", "a", "of", "and", "with", "for", "in", "its", "many", "most",
	}
)

type record struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

func pick(r *rand.Rand, pool []string) string {
	return pool[r.Intn(len(pool))]
}

func sentence(r *rand.Rand) string {
	return fmt.Sprintf("%s %s %s %s %s %s",
		pick(r, places), pick(r, verbs), pick(r, fillers), pick(r, subjects), pick(r, fillers), pick(r, topics))
}

func generateText(r *rand.Rand) string {
	n := *minWords
	if *maxWords > *minWords {
		n += r.Intn(*maxWords - *minWords + 1)
	}
	var words []string
	for len(words) < n {
		words = append(words, strings.Fields(sentence(r))...)
	}
	return strings.Join(words[:n], " ")
}

func main() {
	flag.Parse()
	r := rand.New(rand.NewSource(*seed))

	docs := make([]record, *numDocs)
	for i := range docs {
		docs[i] = record{
			ID:    i,
			Title: fmt.Sprintf("%s %s", pick(r, places), pick(r, subjects)),
			Text:  generateText(r),
		}
	}

	if err := writeJSON(*outputPath, docs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing documents: %v\n", err)
		os.Exit(1)
	}

	if *queries > 0 && *outputPath != "-" {
		var b strings.Builder
		for i := 0; i < *queries; i++ {
			b.WriteString(fmt.Sprintf("%s %s %s\n", pick(r, places), pick(r, subjects), pick(r, topics)))
		}
		path := strings.TrimSuffix(*outputPath, filepath.Ext(*outputPath)) + ".queries.txt"
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing queries: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d queries to %s\n", *queries, path)
	}

	fmt.Fprintf(os.Stderr, "Generated %d documents\n", *numDocs)
}

func writeJSON(path string, docs []record) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
