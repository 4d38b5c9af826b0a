package querycache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

// Record is one cached query outcome: a summary of a single internal/query
// run, keyed by query kind and a content digest of whatever it ran over.
// It deliberately stays small — it is not a substitute for internal/query's
// own in-memory cells, only a durable fingerprint a later run can compare
// itself against.
type Record struct {
	// Session is a fresh UUID that Put generates for each row it writes;
	// it identifies the write, not the dadac invocation, so rows written
	// by one run do not share a Session value.
	Session string
	// ContentHash is the hex-encoded digest of the input the query ran
	// over (e.g. a source file's bytes).
	ContentHash string
	ItemCount   int
	ErrorCount  int
	StoredAt    int64 // unix seconds
}

// Store is a SQLite-backed cache of Records, one row per (kind, key).
type Store struct {
	db *sql.DB
}

// Open creates or reopens the cache database at path (typically
// .dadac/querycache.db beside a project's dada.toml).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("querycache: opening %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS cache_rows (
	kind       TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	stored_at  INTEGER NOT NULL,
	PRIMARY KEY (kind, key)
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("querycache: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the Record stored for (kind, key), if any.
func (s *Store) Get(kind, key string) (Record, bool, error) {
	row := s.db.QueryRow(`SELECT value FROM cache_rows WHERE kind = ? AND key = ?`, kind, key)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("querycache: reading %s/%s: %w", kind, key, err)
	}
	var rec Record
	if err := msgpack.Unmarshal(blob, &rec); err != nil {
		return Record{}, false, fmt.Errorf("querycache: decoding %s/%s: %w", kind, key, err)
	}
	return rec, true, nil
}

// Put stamps rec with a fresh session tag and storage time, then upserts it
// under (kind, key).
func (s *Store) Put(kind, key string, rec Record) (Record, error) {
	rec.Session = uuid.New().String()
	rec.StoredAt = time.Now().Unix()

	blob, err := msgpack.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("querycache: encoding %s/%s: %w", kind, key, err)
	}
	_, err = s.db.Exec(`
INSERT INTO cache_rows (kind, key, value, stored_at) VALUES (?, ?, ?, ?)
ON CONFLICT (kind, key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at`,
		kind, key, blob, rec.StoredAt)
	if err != nil {
		return Record{}, fmt.Errorf("querycache: writing %s/%s: %w", kind, key, err)
	}
	return rec, nil
}

// Evict drops rows older than policy.MaxAge, then — if still over
// policy.MaxRows — drops the oldest rows until at most MaxRows remain.
func (s *Store) Evict(policy Policy) error {
	if policy.MaxAge > 0 {
		cutoff := time.Now().Add(-policy.MaxAge).Unix()
		if _, err := s.db.Exec(`DELETE FROM cache_rows WHERE stored_at < ?`, cutoff); err != nil {
			return fmt.Errorf("querycache: evicting by age: %w", err)
		}
	}
	if policy.MaxRows <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
DELETE FROM cache_rows WHERE rowid IN (
	SELECT rowid FROM cache_rows ORDER BY stored_at DESC
	LIMIT -1 OFFSET ?
)`, policy.MaxRows)
	if err != nil {
		return fmt.Errorf("querycache: evicting by row count: %w", err)
	}
	return nil
}
