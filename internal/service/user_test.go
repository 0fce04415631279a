package service

import (
	"context"
	"testing"
	"time"

	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardAndProfile(t *testing.T) {
	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	profiles := repository.NewProfileRepository(database)

	user := createTestUser(t, database)
	require.NoError(t, profiles.Create(&model.Profile{UserID: user.ID}))

	svc := NewUserService(users, profiles, nil)
	dash, err := svc.Dashboard(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome, "+*user.Email, dash.Greeting)
	assert.Empty(t, dash.Name)
	assert.Len(t, dash.Features, 5)

	profileSvc := NewProfileService(profiles)
	profile, err := profileSvc.UpdateName(user.ID, "  Asha ")
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)

	_, err = profileSvc.UpdateName(user.ID, " ")
	assert.ErrorIs(t, err, ErrAuthValidation)

	dash, err = svc.Dashboard(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", dash.Name)

	_, err = svc.Dashboard("missing")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestDeleteAccount(t *testing.T) {
	database := newTestDB(t)
	users := repository.NewUserRepository(database)
	user := createTestUser(t, database)

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	reports := NewReportService(repository.NewReportRepository(database), local, metrics.New(), "http://localhost:8090", time.Hour)

	file, header := formFile(t, "scan.png", pngBytes)
	report, err := reports.Upload(context.Background(), user.ID, file, header)
	require.NoError(t, err)

	svc := NewUserService(users, repository.NewProfileRepository(database), reports)
	require.NoError(t, svc.DeleteAccount(context.Background(), user.ID))

	_, err = users.ByID(user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = local.Open(context.Background(), report.StoragePath)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM reports`))
	assert.Zero(t, count)
}
