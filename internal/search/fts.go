package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"notenav/internal/log"
	"notenav/pkg/types"
)

// Index is the ranked full-text provider backed by a SQLite FTS5 table.
// The schema is private to this type; callers only see the Provider
// contract.
type Index struct {
	db     *sql.DB
	useFTS bool
}

// NewIndex opens (or creates) the search index at dbPath. Use ":memory:"
// for an ephemeral index.
func NewIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Index) init() error {
	schema := `
	CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
		path UNINDEXED,
		name,
		tags,
		content,
		tokenize = 'porter unicode61'
	);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		// FTS5 not compiled in; the provider reports unavailable and the
		// engine falls back to the token filter.
		log.Warn("FTS5 unavailable, ranked search disabled: %v", err)
		idx.useFTS = false
		return nil
	}
	idx.useFTS = true
	return nil
}

// Available reports whether ranked search can serve queries.
func (idx *Index) Available() bool {
	return idx != nil && idx.db != nil && idx.useFTS
}

// Upsert indexes one file's name, tags, and content.
func (idx *Index) Upsert(path, name string, tags []string, content string) error {
	if !idx.Available() {
		return nil
	}
	if _, err := idx.db.Exec(`DELETE FROM files_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to reindex %s: %w", path, err)
	}
	_, err := idx.db.Exec(
		`INSERT INTO files_fts (path, name, tags, content) VALUES (?, ?, ?, ?)`,
		path, name, strings.Join(tags, " "), content,
	)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", path, err)
	}
	return nil
}

// Remove drops one file from the index.
func (idx *Index) Remove(path string) error {
	if !idx.Available() {
		return nil
	}
	_, err := idx.db.Exec(`DELETE FROM files_fts WHERE path = ?`, path)
	return err
}

// Search returns bm25-ranked hits for the query, best first. The query
// terms are quoted individually and combined with AND.
func (idx *Index) Search(ctx context.Context, query string) ([]Hit, error) {
	if !idx.Available() {
		return nil, nil
	}
	match := ftsMatchExpr(query)
	if match == "" {
		return nil, nil
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT path, bm25(files_fts) AS rank,
		       snippet(files_fts, 3, '', '', '…', 10) AS excerpt
		FROM files_fts
		WHERE files_fts MATCH ?
		ORDER BY rank, path`, match)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	terms := strings.Fields(strings.ToLower(query))
	var hits []Hit
	for rows.Next() {
		var hit Hit
		var rank float64
		if err := rows.Scan(&hit.Path, &rank, &hit.Excerpt); err != nil {
			return nil, fmt.Errorf("search scan failed: %w", err)
		}
		// bm25 returns lower-is-better; flip so higher score ranks first.
		hit.Score = -rank
		hit.Terms = terms
		hit.Spans = excerptSpans(hit.Excerpt, terms)
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// Close releases the underlying database.
func (idx *Index) Close() error {
	if idx.db == nil {
		return nil
	}
	return idx.db.Close()
}

// ftsMatchExpr quotes each term so user input can't inject FTS syntax.
func ftsMatchExpr(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f != "" {
			quoted = append(quoted, `"`+f+`"`)
		}
	}
	return strings.Join(quoted, " ")
}

// excerptSpans locates the term occurrences inside an excerpt for
// highlight rendering.
func excerptSpans(excerpt string, terms []string) []types.MatchSpan {
	lower := strings.ToLower(excerpt)
	var spans []types.MatchSpan
	for _, term := range terms {
		from := 0
		for {
			i := strings.Index(lower[from:], term)
			if i < 0 {
				break
			}
			start := from + i
			spans = append(spans, types.MatchSpan{Start: start, End: start + len(term)})
			from = start + len(term)
		}
	}
	return spans
}
