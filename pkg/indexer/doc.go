// Package indexer turns a document collection into a populated index.
//
// Each retrieval strategy has one indexer:
//
//   - [LexicalIndexer]: tokenized text into a store.LexicalIndex
//   - [TextIndexer]: raw text into a store.TextStore for fuzzy scoring
//   - [VectorIndexer]: encoded text into a store.VectorStore, in batches
//
// The indexed text of a document is the concatenation of its configured
// fields, in order, joined by one space. Missing fields contribute nothing
// and are reported with a single warning per build.
//
// # Usage
//
//	vs, _ := store.NewVectorStore("flat", store.DefaultVectorStoreConfig(0))
//	idx, err := indexer.NewVectorIndexer(
//	    indexer.WithEmbedder(docEncoder),
//	    indexer.WithVectorStore(vs),
//	    indexer.WithVectorFields([]string{"title", "text"}),
//	)
//	if err != nil {
//	    return err
//	}
//	err = idx.Index(ctx, docs)
package indexer
