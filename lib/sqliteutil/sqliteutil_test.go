package sqliteutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `create table if not exists things (id integer primary key, name text not null);`

func TestOpenDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := OpenDB(testSchema, path)
	require.NoError(t, err)
	_, err = db.Exec("insert into things (name) values ('a')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(testSchema, path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("select count(*) from things").Scan(&count))
	require.Equal(t, 1, count)
}

func TestOpenDBErrors(t *testing.T) {
	_, err := OpenDB(testSchema, "")
	require.Error(t, err)

	_, err = OpenDB("this is not sql", ":memory:")
	require.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	require.True(t, isRemote("libsql://heavymetal.turso.io"))
	require.True(t, isRemote("https://heavymetal.turso.io"))
	require.False(t, isRemote("data/heavymetal.db"))
	require.False(t, isRemote(":memory:"))
}
