package storage

import (
	"path/filepath"
)

func isSQLitePath(path string) bool {
	switch filepath.Ext(path) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Create opens a fresh store for writing. Paths with a sqlite
// extension get the database backend, everything else a run directory.
func Create(path string) (Store, error) {
	if isSQLitePath(path) {
		return OpenSQLiteStore(path)
	}
	return CreateFileStore(path)
}

// Open reads an existing store, choosing the backend by extension.
func Open(path string) (Store, error) {
	if isSQLitePath(path) {
		return OpenSQLiteStore(path)
	}
	return OpenFileStore(path)
}
