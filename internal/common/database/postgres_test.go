package database

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	client := NewPostgresFromDB(db)
	assert.NoError(t, client.Ping(context.Background()))

	err = client.Ping(context.Background())
	assert.EqualError(t, err, "postgres ping: connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE applications").WithArgs("VIEWED", "app-1").WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := NewPostgresFromDB(db).Exec(context.Background(),
		"UPDATE applications SET status = $1 WHERE id = $2", "VIEWED", "app-1")
	require.NoError(t, err)

	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClose_NilPool(t *testing.T) {
	assert.NoError(t, (&PostgresClient{}).Close())
}

func TestMigrationFiles_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}

	assert.Greater(t, ups, 0)
	assert.Equal(t, ups, downs)
}
