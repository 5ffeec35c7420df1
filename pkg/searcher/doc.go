// Package searcher answers queries against built indexes and ranks the results.
//
// There is one Searcher per kind of index:
//
//   - [LexicalSearcher]: BM25-style keyword search over a store.LexicalIndex
//   - [FuzzySearcher]: string similarity against every stored document
//   - [VectorSearcher]: squared-distance nearest neighbors of an encoded query
//
// Every searcher hands its raw scores to [Rank], which fixes the ordering
// direction, truncates to k and breaks ties by ascending document id.
//
// # Usage
//
//	vs, _ := searcher.NewVectorSearcher(
//	    searcher.WithQueryEmbedder(queryEncoder),
//	    searcher.WithSearchVectorStore(vectorStore),
//	)
//	results, err := vs.Search(ctx, "museums in paris", 5)
//
// # Thread Safety
//
// All Searcher implementations are safe for concurrent use once the
// underlying index has been built.
package searcher
