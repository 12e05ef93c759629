package storage

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mkoven/pathmc/internal/paths"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS steps (
	idx      INTEGER PRIMARY KEY,
	mover    TEXT NOT NULL,
	accepted INTEGER NOT NULL,
	data     BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL
);`

// SQLiteStore keeps the step log in a single-file database. Same
// append-only discipline as FileStore; sqlite gives indexed retrieval
// for free and tolerates very long runs without loading everything up
// front.
type SQLiteStore struct {
	db    *sql.DB
	count int
}

// OpenSQLiteStore opens or creates the database at path. A fresh
// database gets a run ID; an existing one keeps its history and
// appends after it.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('run_id', ?)`,
		uuid.New().String()); err != nil {
		db.Close()
		return nil, err
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM steps`).Scan(&count); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, count: count}, nil
}

func (s *SQLiteStore) RunID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'run_id'`).Scan(&id)
	return id, err
}

func (s *SQLiteStore) AppendStep(step *paths.Step) error {
	data, err := encodeStep(step)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO steps (idx, mover, accepted, data) VALUES (?, ?, ?, ?)`,
		s.count, step.Mover, boolToInt(step.Accepted), data)
	if err != nil {
		return err
	}
	s.count++
	return nil
}

func (s *SQLiteStore) Steps() ([]*paths.Step, error) {
	rows, err := s.db.Query(`SELECT data FROM steps ORDER BY idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*paths.Step
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		step, err := decodeStep(data)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func (s *SQLiteStore) StepAt(i int) (*paths.Step, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM steps WHERE idx = ?`, i).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("step index %d out of range [0,%d)", i, s.count)
	}
	if err != nil {
		return nil, err
	}
	return decodeStep(data)
}

func (s *SQLiteStore) Len() int { return s.count }

func (s *SQLiteStore) SetTag(name string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO tags (name, data) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data`,
		name, data)
	return err
}

func (s *SQLiteStore) Tag(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM tags WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no tag %q", name)
	}
	return data, err
}

func (s *SQLiteStore) TagNames() []string {
	rows, err := s.db.Query(`SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if rows.Scan(&name) == nil {
			names = append(names, name)
		}
	}
	return names
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
