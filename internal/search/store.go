package search

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"

	"github.com/DhavalSuthar-24/miow-context-master/internal/errors"
)

const (
	backendName = "sqlite"

	// maxSubstringResults caps SearchSymbols so a broad query stays bounded.
	maxSubstringResults = 50

	// maxSimilarCandidates caps the rows scored by SearchSimilar.
	maxSimilarCandidates = 500
)

// Store is a symbol graph persisted in SQLite. It implements Backend.
type Store struct {
	db   *sql.DB
	path string
}

var _ Backend = (*Store)(nil)

// Open opens or creates the store at path and applies migrations.
// The path ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.NewSearchStoreError(path, fmt.Errorf("create data dir: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewSearchStoreError(path, fmt.Errorf("open sqlite: %w", err))
	}
	if path == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewSearchStoreError(path, fmt.Errorf("ping sqlite: %w", err))
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, errors.NewSearchStoreError(path, fmt.Errorf("exec %s: %w", p, err))
		}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.NewSearchStoreError(path, fmt.Errorf("migrate: %w", err))
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS files (
			path        TEXT PRIMARY KEY,
			language    TEXT,
			indexed_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS symbols (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			kind        TEXT NOT NULL,
			file_path   TEXT NOT NULL REFERENCES files(path),
			content     TEXT NOT NULL DEFAULT '',
			language    TEXT,
			start_line  INTEGER DEFAULT 0,
			end_line    INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_path)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// SymbolID returns the stable row id of a symbol.
func SymbolID(m SymbolMatch) string {
	sum := blake3.Sum256([]byte(m.FilePath + "\x00" + m.Name + "\x00" + strconv.Itoa(m.StartLine)))
	return hex.EncodeToString(sum[:16])
}

// Index upserts symbols and their files in a single transaction.
func (s *Store) Index(ctx context.Context, symbols []SymbolMatch) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewSearchBackendError(backendName, fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	files := make(map[string]bool)
	n := 0
	for _, m := range symbols {
		if m.Name == "" || m.FilePath == "" {
			continue
		}
		if !files[m.FilePath] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO files (path, language) VALUES (?, ?)
				 ON CONFLICT(path) DO UPDATE SET language = excluded.language, indexed_at = CURRENT_TIMESTAMP`,
				m.FilePath, m.Language); err != nil {
				return 0, errors.NewSearchBackendError(backendName, fmt.Errorf("insert file %s: %w", m.FilePath, err))
			}
			files[m.FilePath] = true
		}
		kind := m.Kind
		if kind == "" {
			kind = "unknown"
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO symbols (id, name, kind, file_path, content, language, start_line, end_line)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, content = excluded.content,
			   language = excluded.language, end_line = excluded.end_line`,
			SymbolID(m), m.Name, kind, m.FilePath, m.Content, m.Language, m.StartLine, m.EndLine); err != nil {
			return 0, errors.NewSearchBackendError(backendName, fmt.Errorf("insert symbol %s: %w", m.Name, err))
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewSearchBackendError(backendName, fmt.Errorf("commit: %w", err))
	}
	return n, nil
}

// Count returns the number of indexed symbols.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM symbols`).Scan(&n); err != nil {
		return 0, errors.NewSearchBackendError(backendName, err)
	}
	return n, nil
}

const selectColumns = `SELECT name, kind, file_path, content, COALESCE(language, ''), start_line, end_line FROM symbols`

// SearchSymbols returns symbols whose name or content contains query,
// exact name matches first.
func (s *Store) SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE name LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
		 ORDER BY (name = ?) DESC, (name LIKE ? ESCAPE '\') DESC, file_path, start_line
		 LIMIT ?`,
		pattern, pattern, query, pattern, maxSubstringResults)
	if err != nil {
		return nil, errors.NewSearchBackendError(backendName, err)
	}
	return scanMatches(rows)
}

// FindSymbolsByName returns symbols whose name equals name.
func (s *Store) FindSymbolsByName(ctx context.Context, name string) ([]SymbolMatch, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE name = ? ORDER BY file_path, start_line`, name)
	if err != nil {
		return nil, errors.NewSearchBackendError(backendName, err)
	}
	return scanMatches(rows)
}

// SearchSimilar ranks symbols by the share of query terms found in their
// name and content and returns the top k.
func (s *Store) SearchSimilar(ctx context.Context, query string, k int) ([]SymbolMatch, error) {
	terms := Terms(query)
	if len(terms) == 0 || k <= 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)*2+1)
	for _, t := range terms {
		clauses = append(clauses, `(name LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		p := "%" + escapeLike(t) + "%"
		args = append(args, p, p)
	}
	args = append(args, maxSimilarCandidates)

	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE `+strings.Join(clauses, " OR ")+` LIMIT ?`, args...)
	if err != nil {
		return nil, errors.NewSearchBackendError(backendName, err)
	}
	candidates, err := scanMatches(rows)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidates[i].Score = overlap(terms, candidates[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func scanMatches(rows *sql.Rows) ([]SymbolMatch, error) {
	defer rows.Close()

	var out []SymbolMatch
	for rows.Next() {
		var m SymbolMatch
		if err := rows.Scan(&m.Name, &m.Kind, &m.FilePath, &m.Content, &m.Language, &m.StartLine, &m.EndLine); err != nil {
			return nil, errors.NewSearchBackendError(backendName, fmt.Errorf("scan: %w", err))
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSearchBackendError(backendName, err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Terms splits text into lowercase search terms, breaking on punctuation and
// camelCase boundaries. Terms shorter than two runes are dropped.
func Terms(text string) []string {
	var (
		terms []string
		cur   []rune
		seen  = make(map[string]bool)
	)
	flush := func() {
		if len(cur) >= 2 {
			t := strings.ToLower(string(cur))
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
		cur = cur[:0]
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && len(cur) > 0 && i > 0 && unicode.IsLower(runes[i-1]) {
				flush()
			}
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()
	return terms
}

func overlap(terms []string, m SymbolMatch) float64 {
	haystack := strings.ToLower(m.Name + " " + m.Content)
	hits := 0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			hits++
		}
	}
	score := float64(hits) / float64(len(terms))
	if strings.EqualFold(m.Name, strings.Join(terms, "")) {
		score += 1
	}
	return score
}
