package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func isRemote(target string) bool {
	for _, prefix := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}

// OpenDB opens target and applies schema to it. target is either a path to
// a local sqlite file (created if missing), ":memory:" or the url of a
// remote libsql database.
func OpenDB(schema, target string) (*sql.DB, error) {
	if target == "" {
		return nil, fmt.Errorf("a database was not specified")
	}

	var db *sql.DB
	if isRemote(target) {
		remote, err := sql.Open("libsql", target)
		if err != nil {
			return nil, err
		}
		db = remote
	} else {
		local, err := openFile(target)
		if err != nil {
			return nil, err
		}
		db = local
	}

	_, err := db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

func openFile(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
