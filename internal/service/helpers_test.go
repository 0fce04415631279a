package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/db"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init(db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite))
	return database
}

func createTestUser(t *testing.T, database *sqlx.DB) *model.User {
	t.Helper()

	email := uuid.New().String() + "@example.com"
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     &email,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repository.NewUserRepository(database).Create(user))
	return user
}

func ptr(s string) *string {
	return &s
}

// clock returns a now func that advances one minute per call.
func clock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}
