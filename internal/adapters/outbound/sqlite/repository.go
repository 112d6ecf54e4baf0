// Package sqlite provides the SQLite-backed source repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/promisetracker/linkwatch/internal/domain"
	_ "modernc.org/sqlite"
)

// Repository reads and repairs sources in the promise tracker database.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Repository struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ domain.SourceRepository = (*Repository)(nil)

// Open opens (or creates) the database at dbPath and ensures the schema.
// Uses WAL mode for file-based databases.
func Open(dbPath string) (*Repository, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	} else if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	r := &Repository{db: db}
	if err := r.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return r, nil
}

// createTables creates the tables the tracker shares with this service.
func (r *Repository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT,
		title TEXT NOT NULL,
		source_type TEXT NOT NULL,
		date TEXT,
		description TEXT,
		reliability_score REAL DEFAULT 1.0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS promises (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		priority INTEGER DEFAULT 3,
		date_made TEXT,
		date_updated TEXT NOT NULL,
		tags TEXT,
		notes TEXT,
		progress_percentage REAL DEFAULT 0.0,
		related_promises TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS promise_sources (
		promise_id INTEGER,
		source_id INTEGER,
		PRIMARY KEY (promise_id, source_id),
		FOREIGN KEY (promise_id) REFERENCES promises (id) ON DELETE CASCADE,
		FOREIGN KEY (source_id) REFERENCES sources (id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_promise_sources_source ON promise_sources(source_id);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}

const sourceColumns = `s.id, COALESCE(s.url, ''), s.title, COALESCE(s.description, ''),
	s.source_type, COALESCE(s.reliability_score, 1.0)`

// ListSources returns every source ordered by id, each with its distinct
// promise ids in ascending order.
func (r *Repository) ListSources(ctx context.Context) ([]domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sourceColumns+`, ps.promise_id
		FROM sources s
		LEFT JOIN promise_sources ps ON ps.source_id = s.id
		ORDER BY s.id, ps.promise_id`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var (
			s         domain.Source
			rawType   string
			promiseID sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.URL, &s.Title, &s.Description, &rawType, &s.ReliabilityScore, &promiseID); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		s.Type = domain.ParseSourceType(rawType)

		last := len(sources) - 1
		if last < 0 || sources[last].ID != s.ID {
			sources = append(sources, s)
			last++
		}
		if promiseID.Valid {
			ids := sources[last].PromiseIDs
			if n := len(ids); n == 0 || ids[n-1] != promiseID.Int64 {
				sources[last].PromiseIDs = append(ids, promiseID.Int64)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// GetSource returns one source with its promise ids.
func (r *Repository) GetSource(ctx context.Context, id int64) (*domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		s       domain.Source
		rawType string
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+sourceColumns+` FROM sources s WHERE s.id = ?`, id).
		Scan(&s.ID, &s.URL, &s.Title, &s.Description, &rawType, &s.ReliabilityScore)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %d: %w", id, domain.ErrSourceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query source %d: %w", id, err)
	}
	s.Type = domain.ParseSourceType(rawType)

	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT promise_id FROM promise_sources WHERE source_id = ? ORDER BY promise_id`, id)
	if err != nil {
		return nil, fmt.Errorf("query links for source %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		s.PromiseIDs = append(s.PromiseIDs, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return &s, nil
}

// ListRepairCandidates returns every linked source with a non-empty URL,
// joined to its promises. Promises are ordered by id.
func (r *Repository) ListRepairCandidates(ctx context.Context) ([]domain.RepairCandidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sourceColumns+`, p.id, p.text, p.category
		FROM sources s
		JOIN promise_sources ps ON ps.source_id = s.id
		JOIN promises p ON p.id = ps.promise_id
		WHERE COALESCE(s.url, '') <> ''
		ORDER BY s.id, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query repair candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.RepairCandidate
	for rows.Next() {
		var (
			s       domain.Source
			rawType string
			p       domain.LinkedPromise
		)
		if err := rows.Scan(&s.ID, &s.URL, &s.Title, &s.Description, &rawType, &s.ReliabilityScore,
			&p.ID, &p.Text, &p.Category); err != nil {
			return nil, fmt.Errorf("scan repair candidate: %w", err)
		}
		s.Type = domain.ParseSourceType(rawType)

		last := len(candidates) - 1
		if last < 0 || candidates[last].Source.ID != s.ID {
			candidates = append(candidates, domain.RepairCandidate{Source: s})
			last++
		}
		c := &candidates[last]
		c.Source.PromiseIDs = append(c.Source.PromiseIDs, p.ID)
		c.Promises = append(c.Promises, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repair candidates: %w", err)
	}
	return candidates, nil
}

// UpdateSource rewrites url, title, type and reliability in place.
func (r *Repository) UpdateSource(ctx context.Context, id int64, u domain.SourceUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `
		UPDATE sources SET url = ?, title = ?, source_type = ?, reliability_score = ?
		WHERE id = ?`,
		u.URL, u.Title, string(u.Type), u.ReliabilityScore, id)
	if err != nil {
		return fmt.Errorf("update source %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update source %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("source %d: %w", id, domain.ErrSourceNotFound)
	}
	return nil
}

// CountBelowReliability counts sources scored under threshold.
func (r *Repository) CountBelowReliability(ctx context.Context, threshold float64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sources WHERE COALESCE(reliability_score, 1.0) < ?`, threshold).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count low reliability sources: %w", err)
	}
	return n, nil
}

// CountByType returns the per-type breakdown, largest first.
func (r *Repository) CountByType(ctx context.Context) ([]domain.TypeCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT source_type, COUNT(*) AS n FROM sources
		GROUP BY source_type
		ORDER BY n DESC, source_type`)
	if err != nil {
		return nil, fmt.Errorf("query source types: %w", err)
	}
	defer rows.Close()

	var counts []domain.TypeCount
	for rows.Next() {
		var (
			rawType string
			n       int
		)
		if err := rows.Scan(&rawType, &n); err != nil {
			return nil, fmt.Errorf("scan source type: %w", err)
		}
		counts = append(counts, domain.TypeCount{Type: domain.ParseSourceType(rawType), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source types: %w", err)
	}
	return counts, nil
}

// AddPromise inserts a promise and returns its id.
func (r *Repository) AddPromise(ctx context.Context, text, category string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO promises (text, category, status, date_updated, created_at)
		VALUES (?, ?, 'Not Started', ?, ?)`,
		text, category, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert promise: %w", err)
	}
	return res.LastInsertId()
}

// AddSource inserts a source and returns its id. ID and PromiseIDs are ignored.
func (r *Repository) AddSource(ctx context.Context, s domain.Source) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := s.Type
	if st == "" {
		st = domain.SourceTypeOther
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (url, title, source_type, description, reliability_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.URL, s.Title, string(st), s.Description, s.ReliabilityScore, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}
	return res.LastInsertId()
}

// LinkSource records that a promise cites a source. Duplicate links are ignored.
func (r *Repository) LinkSource(ctx context.Context, promiseID, sourceID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO promise_sources (promise_id, source_id) VALUES (?, ?)`, promiseID, sourceID)
	if err != nil {
		return fmt.Errorf("link promise %d to source %d: %w", promiseID, sourceID, err)
	}
	return nil
}
