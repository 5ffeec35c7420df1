package document

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
)

// LoadJSON reads a JSON array of objects and turns each into a Document.
// The key field becomes the id; every other field becomes a text field.
func LoadJSON(path, key string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rerrors.New(rerrors.ErrCodeFileNotFound,
				fmt.Sprintf("documents file not found: %s", path), err)
		}
		return nil, rerrors.New(rerrors.ErrCodeFileNotFound,
			fmt.Sprintf("read documents file: %s", path), err)
	}
	return ParseJSON(data, key)
}

// ParseJSON decodes documents from JSON bytes. See LoadJSON.
func ParseJSON(data []byte, key string) (Collection, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, rerrors.New(rerrors.ErrCodeFileCorrupt,
			"documents must be a JSON list of objects", err)
	}

	return FromRecords(records, key)
}

// FromRecords converts generic records into a validated Collection. The key
// field becomes the id and every other field a text field; non-string
// values are rendered in decimal or with fmt.
func FromRecords(records []map[string]any, key string) (Collection, error) {
	docs := make(Collection, 0, len(records))
	for i, rec := range records {
		raw, ok := rec[key]
		if !ok || raw == nil {
			return nil, rerrors.Newf(rerrors.ErrCodeMissingKey,
				"document at position %d has no %q field", i, key)
		}
		fields := make(map[string]string, len(rec))
		for name, v := range rec {
			if name == key {
				continue
			}
			fields[name] = stringify(v)
		}
		docs = append(docs, Document{ID: stringify(raw), Fields: fields})
	}

	if err := docs.Validate(); err != nil {
		return nil, err
	}
	return docs, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
