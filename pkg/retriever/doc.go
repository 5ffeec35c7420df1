// Package retriever is the single entry point for top-k document retrieval.
//
// A [Retriever] is built once for a document collection and a [Strategy]:
//
//   - lexical: BM25 term weighting; documents sharing no query term are absent
//   - fuzzy: string similarity in [0, 100]; every document is scored
//   - vector-symmetric: one encoder for documents and queries
//   - vector-dual: separate document and query encoders of equal dimension
//
// Construction is eager. Unknown strategies, missing models, dimension
// mismatches and encoder load failures are all reported by [New]; nothing
// is deferred to the first query. Options not recognized by the chosen
// strategy are dropped by [FilterOptions] and never cause an error.
//
// # Usage
//
//	r, err := retriever.New(ctx, docs, "vector-symmetric", retriever.Options{
//	    "on":         []string{"title", "text"},
//	    "model_name": "static-256",
//	})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	results, err := r.Retrieve(ctx, []string{"museums", "rivers"}, 5)
//
// Results within one query are ordered best first with ties broken by
// ascending document id, so repeated calls return identical lists and the
// top-k list is always a prefix of the top-(k+1) list.
package retriever
