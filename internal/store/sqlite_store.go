package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"lockfit/internal/domain"
)

// SQLiteSecureStore keeps sealed items in a single SQLite database.
//
// Values are sealed the same way FileSecureStore seals them; the database
// only ever sees ciphertext.
type SQLiteSecureStore struct {
	db   *sql.DB
	seal sealer
	mu   sync.Mutex
}

// OpenSQLiteSecureStore opens (or creates) the database at path. Use
// ":memory:" for a throwaway store.
func OpenSQLiteSecureStore(path, passphrase string, opts ...Option) (*SQLiteSecureStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	// A :memory: database is per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s := &SQLiteSecureStore{db: db, seal: newSealer(passphrase, opts...)}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSecureStore) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS secure_items (
		item_key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`)
	return err
}

// Get returns the opened item and whether it was present.
func (s *SQLiteSecureStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b []byte
	err := s.db.QueryRow(`SELECT value FROM secure_items WHERE item_key = ?`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	pt, err := s.seal.open(key, b)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", key, err)
	}
	return pt, true, nil
}

// Set seals value and upserts it.
func (s *SQLiteSecureStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.seal.seal(key, value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO secure_items (item_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(item_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, b, time.Now().Unix())
	return err
}

// Delete removes the item; a missing item is not an error.
func (s *SQLiteSecureStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM secure_items WHERE item_key = ?`, key)
	return err
}

// Close releases the database handle.
func (s *SQLiteSecureStore) Close() error {
	return s.db.Close()
}

// Compile-time assertion that SQLiteSecureStore implements domain.SecureStore.
var _ domain.SecureStore = (*SQLiteSecureStore)(nil)
