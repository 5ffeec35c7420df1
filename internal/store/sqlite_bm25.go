package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteLexicalIndex implements LexicalIndex with an in-memory SQLite FTS5 table.
// Ranking is FTS5's bm25() with its built-in constants.
type SQLiteLexicalIndex struct {
	mu        sync.RWMutex
	db        *sql.DB
	config    LexicalConfig
	closed    bool
	stopWords map[string]struct{}
	count     int
}

var _ LexicalIndex = (*SQLiteLexicalIndex)(nil)

// NewSQLiteLexicalIndex opens a private ":memory:" database and creates the FTS5 table.
func NewSQLiteLexicalIndex(config LexicalConfig) (*SQLiteLexicalIndex, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every ":memory:" connection is a separate database, so pin the pool to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	idx := &SQLiteLexicalIndex{
		db:        db,
		config:    config,
		stopWords: BuildStopWordMap(config.StopWords),
	}

	if err := idx.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return idx, nil
}

// initSchema creates the FTS5 virtual table.
// doc_id is stored but not searchable; content holds pre-tokenized text.
func (s *SQLiteLexicalIndex) initSchema() error {
	_, err := s.db.Exec(`
	CREATE VIRTUAL TABLE IF NOT EXISTS fts_content USING fts5(
		doc_id UNINDEXED,
		content,
		tokenize='unicode61'
	);`)
	return err
}

// Index adds documents to the index in one transaction.
func (s *SQLiteLexicalIndex) Index(ctx context.Context, docs []*LexicalDocument) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("index is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insertStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fts_content(doc_id, content) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare FTS statement: %w", err)
	}
	defer insertStmt.Close()

	for _, doc := range docs {
		processed := strings.Join(analyze(doc.Content, s.config, s.stopWords), " ")
		if _, err := insertStmt.ExecContext(ctx, doc.ID, processed); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.count += len(docs)
	return nil
}

// Search returns documents matching any query term, scored by FTS5 bm25().
func (s *SQLiteLexicalIndex) Search(ctx context.Context, queryStr string, limit int) ([]*LexicalResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("index is closed")
	}

	tokens := uniqueTerms(analyze(queryStr, s.config, s.stopWords))
	if len(tokens) == 0 || limit <= 0 {
		return []*LexicalResult{}, nil
	}

	// FTS5 treats space-separated terms as AND; quote each term and OR them.
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	matchExpr := strings.Join(quoted, " OR ")

	// bm25() is negative, lower = better match.
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, bm25(fts_content) AS score, content
		FROM fts_content
		WHERE content MATCH ?
		ORDER BY score, doc_id
		LIMIT ?`, matchExpr, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	results := make([]*LexicalResult, 0)
	for rows.Next() {
		var docID, content string
		var score float64
		if err := rows.Scan(&docID, &score, &content); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, &LexicalResult{
			DocID:        docID,
			Score:        -score,
			MatchedTerms: matchedIn(content, tokens),
		})
	}

	return results, rows.Err()
}

// Count returns the number of indexed documents.
func (s *SQLiteLexicalIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Close closes the database.
func (s *SQLiteLexicalIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// matchedIn returns the query tokens present in pre-tokenized content.
func matchedIn(content string, tokens []string) []string {
	present := make(map[string]struct{})
	for _, t := range strings.Fields(content) {
		present[t] = struct{}{}
	}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := present[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
