package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CompletionCache stores provider replies keyed by a hash of the request
type CompletionCache struct {
	db *sql.DB
}

// OpenCompletionCache opens (or creates) the cache database at dbPath
func OpenCompletionCache(dbPath string) (*CompletionCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// One writer; the CLI and the API server may share the file
	db.SetMaxOpenConns(1)

	c := &CompletionCache{db: db}
	if err := c.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *CompletionCache) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS completions (
		key TEXT PRIMARY KEY,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_completions_created ON completions(created_at);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached reply for key
func (c *CompletionCache) Get(key string) (string, bool, error) {
	var response string
	err := c.db.QueryRow(`SELECT response FROM completions WHERE key = ?`, key).Scan(&response)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return response, true, nil
}

// Put stores a reply, replacing any previous one for key
func (c *CompletionCache) Put(key, provider, model, response string) error {
	_, err := c.db.Exec(`
		INSERT INTO completions (key, provider, model, response, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET response = excluded.response, created_at = excluded.created_at
	`, key, provider, model, response, time.Now().Unix())
	return err
}

// Prune deletes entries older than maxAge and returns how many were removed
func (c *CompletionCache) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := c.db.Exec(`DELETE FROM completions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of cached replies
func (c *CompletionCache) Count() (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM completions`).Scan(&n)
	return n, err
}

// Close closes the database
func (c *CompletionCache) Close() error {
	return c.db.Close()
}
