// Package document defines the in-memory document collection the retriever indexes.
package document

import (
	"strconv"
	"strings"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
)

// Document is a record with an opaque identifier and named text fields.
// Documents are read-only once handed to a retriever.
type Document struct {
	ID     string
	Fields map[string]string
}

// New creates a Document from an id and its fields.
func New(id string, fields map[string]string) Document {
	return Document{ID: id, Fields: fields}
}

// Text concatenates the fields named in on, in order, joined by a single space.
// Fields the document lacks contribute nothing and are returned in missing.
func (d Document) Text(on []string) (text string, missing []string) {
	parts := make([]string, 0, len(on))
	for _, name := range on {
		v, ok := d.Fields[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, " "), missing
}

// Collection is an ordered set of documents. Order is insertion order.
type Collection []Document

// Validate checks that every document has a non-empty id and that ids are unique.
func (c Collection) Validate() error {
	seen := make(map[string]int, len(c))
	for i, d := range c {
		if d.ID == "" {
			return rerrors.Newf(rerrors.ErrCodeMissingKey, "document at position %d has no id", i)
		}
		if prev, ok := seen[d.ID]; ok {
			return rerrors.Newf(rerrors.ErrCodeDuplicateID,
				"duplicate document id %q at positions %d and %d", d.ID, prev, i).
				WithDetail("id", d.ID)
		}
		seen[d.ID] = i
	}
	return nil
}

// IDs returns the document ids in insertion order.
func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i, d := range c {
		ids[i] = d.ID
	}
	return ids
}

// Texts returns the field text of every document in insertion order, plus the
// number of documents that lacked at least one of the requested fields.
func (c Collection) Texts(on []string) (texts []string, incomplete int) {
	texts = make([]string, len(c))
	for i, d := range c {
		var missing []string
		texts[i], missing = d.Text(on)
		if len(missing) > 0 {
			incomplete++
		}
	}
	return texts, incomplete
}

// CompareIDs orders two document ids. Integer ids compare numerically, so "2" sorts
// before "10"; anything else falls back to byte-wise comparison, with integers first.
func CompareIDs(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return strings.Compare(a, b)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
