package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wikigraph/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "wikigraph.db"

// ErrSessionNotFound is returned when no session has the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// CrawlDB provides SQLite-based storage for crawl sessions.
// Every saved session keeps its own copy of the network, so an inner pass
// and the outer crawl it came from can be compared side by side.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw refuses to create the file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL,
		seeds TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages INTEGER NOT NULL,
		edges INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		stats TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_name ON sessions(name);

	-- Network nodes; position is the insertion order
	CREATE TABLE IF NOT EXISTS pages (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		url TEXT,
		PRIMARY KEY (session_id, title)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_position ON pages(session_id, position);

	-- Outbound links, in page order
	CREATE TABLE IF NOT EXISTS links (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		from_title TEXT NOT NULL,
		position INTEGER NOT NULL,
		to_title TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_from ON links(session_id, from_title);
	CREATE INDEX IF NOT EXISTS idx_links_to ON links(session_id, to_title);

	-- Category tags
	CREATE TABLE IF NOT EXISTS categories (
		session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		position INTEGER NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_categories_title ON categories(session_id, title);
	CREATE INDEX IF NOT EXISTS idx_categories_category ON categories(session_id, category);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SessionRecord is the stored summary of a session, without its network.
type SessionRecord struct {
	ID          int64
	Name        string
	Mode        string
	Seeds       []string
	StartedAt   time.Time
	FinishedAt  time.Time
	Pages       int
	Edges       int
	Interrupted bool
	Stats       model.Stats
}

// SaveNetwork stores session and its network in one transaction and
// returns the new session ID.
func (cdb *CrawlDB) SaveNetwork(ctx context.Context, session *model.Session) (int64, error) {
	seedsJSON, err := json.Marshal(session.Seeds)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize seeds: %w", err)
	}
	statsJSON, err := json.Marshal(session.Stats)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize stats: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO sessions (name, mode, seeds, started_at, finished_at, pages, edges, interrupted, stats)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.Name,
		session.Mode,
		string(seedsJSON),
		formatTimestamp(session.StartedAt),
		formatTimestamp(session.FinishedAt),
		session.Network.Len(),
		session.Network.EdgeCount(),
		session.Interrupted,
		string(statsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session ID: %w", err)
	}

	if err := insertNetwork(ctx, tx, id, session.Network); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return id, nil
}

// insertNetwork writes pages, links and categories of network.
func insertNetwork(ctx context.Context, tx *sql.Tx, id int64, network *model.Network) error {
	pageStmt, err := tx.PrepareContext(ctx, `INSERT INTO pages (session_id, position, title, url) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer pageStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `INSERT INTO links (session_id, from_title, position, to_title) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	catStmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (session_id, title, position, category) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare category insert: %w", err)
	}
	defer catStmt.Close()

	network.Each(func(i int, title string, node *model.Node) bool {
		if _, err = pageStmt.ExecContext(ctx, id, i, title, node.URL); err != nil {
			err = fmt.Errorf("failed to insert page %q: %w", title, err)
			return false
		}
		for j, link := range node.Links {
			if _, err = linkStmt.ExecContext(ctx, id, title, j, link); err != nil {
				err = fmt.Errorf("failed to insert link %q -> %q: %w", title, link, err)
				return false
			}
		}
		for j, category := range node.Categories {
			if _, err = catStmt.ExecContext(ctx, id, title, j, category); err != nil {
				err = fmt.Errorf("failed to insert category %q of %q: %w", category, title, err)
				return false
			}
		}
		return true
	})
	return err
}

// GetSession returns the stored summary of session id.
func (cdb *CrawlDB) GetSession(ctx context.Context, id int64) (*SessionRecord, error) {
	row := cdb.db.QueryRowContext(ctx, `
	SELECT id, name, mode, seeds, started_at, finished_at, pages, edges, interrupted, stats
	FROM sessions
	WHERE id = ?
	`, id)

	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return rec, nil
}

// ListSessions returns all sessions, newest first.
func (cdb *CrawlDB) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, name, mode, seeds, started_at, finished_at, pages, edges, interrupted, stats
	FROM sessions
	ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	results := make([]SessionRecord, 0)
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		results = append(results, *rec)
	}
	return results, rows.Err()
}

// LatestSessionID returns the ID of the most recent session with the
// given name, or of the most recent session when name is empty.
func (cdb *CrawlDB) LatestSessionID(ctx context.Context, name string) (int64, error) {
	query := `SELECT id FROM sessions`
	args := make([]any, 0, 1)
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY id DESC LIMIT 1`

	var id int64
	err := cdb.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		if name != "" {
			return 0, fmt.Errorf("%w: no session named %q", ErrSessionNotFound, name)
		}
		return 0, fmt.Errorf("%w: database is empty", ErrSessionNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest session: %w", err)
	}
	return id, nil
}

// LoadNetwork rebuilds the network of session id in its stored order.
func (cdb *CrawlDB) LoadNetwork(ctx context.Context, id int64) (*model.Network, error) {
	if _, err := cdb.GetSession(ctx, id); err != nil {
		return nil, err
	}

	network := model.NewNetwork()

	rows, err := cdb.db.QueryContext(ctx, `
	SELECT title, url FROM pages
	WHERE session_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	for rows.Next() {
		var title string
		var url sql.NullString
		if err := rows.Scan(&title, &url); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		network.Add(title, &model.Node{
			Links:      []string{},
			Categories: []string{},
			URL:        url.String,
		})
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	if err := cdb.loadColumn(ctx, network, id, `
	SELECT from_title, to_title FROM links
	WHERE session_id = ?
	ORDER BY from_title, position
	`, func(n *model.Node, v string) { n.Links = append(n.Links, v) }); err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	if err := cdb.loadColumn(ctx, network, id, `
	SELECT title, category FROM categories
	WHERE session_id = ?
	ORDER BY title, position
	`, func(n *model.Node, v string) { n.Categories = append(n.Categories, v) }); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	return network, nil
}

// loadColumn runs a (title, value) query and feeds each value to add.
func (cdb *CrawlDB) loadColumn(ctx context.Context, network *model.Network, id int64, query string, add func(*model.Node, string)) error {
	rows, err := cdb.db.QueryContext(ctx, query, id)
	if err != nil {
		return err
	}
	for rows.Next() {
		var title, value string
		if err := rows.Scan(&title, &value); err != nil {
			_ = rows.Close()
			return err
		}
		if node, ok := network.Get(title); ok {
			add(node, value)
		}
	}
	return closeRows(rows)
}

// CategoryCount is the number of pages tagged with one category.
type CategoryCount struct {
	Category string
	Pages    int
}

// CategoryCounts returns the category histogram of session id, most
// common first. limit <= 0 returns every category.
func (cdb *CrawlDB) CategoryCounts(ctx context.Context, id int64, limit int) ([]CategoryCount, error) {
	query := `
	SELECT category, COUNT(DISTINCT title) AS n
	FROM categories
	WHERE session_id = ?
	GROUP BY category
	ORDER BY n DESC, category ASC
	`
	args := []any{id}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()

	results := make([]CategoryCount, 0)
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*SessionRecord, error) {
	var rec SessionRecord
	var seedsJSON, startedAt, finishedAt string
	var statsJSON sql.NullString

	if err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Mode,
		&seedsJSON,
		&startedAt,
		&finishedAt,
		&rec.Pages,
		&rec.Edges,
		&rec.Interrupted,
		&statsJSON,
	); err != nil {
		return nil, err
	}

	rec.StartedAt = parseTimestamp(startedAt)
	rec.FinishedAt = parseTimestamp(finishedAt)

	if err := json.Unmarshal([]byte(seedsJSON), &rec.Seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}
	if statsJSON.Valid && strings.TrimSpace(statsJSON.String) != "" {
		if err := json.Unmarshal([]byte(statsJSON.String), &rec.Stats); err != nil {
			return nil, fmt.Errorf("failed to parse stats: %w", err)
		}
	}
	return &rec, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}

// formatTimestamp stores times in UTC with nanosecond precision.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
