package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *sqlx.DB) {
	t.Helper()

	database := newTestDB(t)
	svc := NewAuthService(
		repository.NewUserRepository(database),
		repository.NewProfileRepository(database),
		repository.NewPhoneVerificationRepository(database),
		NewEmailService("", "noreply@example.com", "http://localhost:8090", "KidneyMate", true),
		NewSMSService(nil, "", true),
		"KidneyMate",
		"test-secret",
		false,
		time.Hour,
		10*time.Minute,
	)
	svc.generateCode = func() (string, error) { return "123456", nil }
	return svc, database
}

func TestSignupAndLogin(t *testing.T) {
	svc, database := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, " Asha ", "Asha@Example.com", "kidney-care-2025")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", *user.Email)

	profile, err := repository.NewProfileRepository(database).ByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)

	loggedIn, err := svc.Login("asha@example.com", "kidney-care-2025")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login("asha@example.com", "wrong-password-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "kidney-care-2025")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Signup(ctx, "Other", "asha@example.com", "kidney-care-2025")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Signup(context.Background(), "", "asha@example.com", "kidney-care-2025")
	assert.ErrorIs(t, err, ErrAuthValidation)

	_, err = svc.Signup(context.Background(), "Asha", "asha", "kidney-care-2025")
	assert.ErrorIs(t, err, ErrAuthValidation)

	_, err = svc.Signup(context.Background(), "Asha", "asha@example.com", "short")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password must be at least 12 characters", verr.Message)
}

func TestPhoneSignIn(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendPhoneCode(ctx, "98765 43210"))

	user, err := svc.VerifyPhoneCode("+919876543210", "123456")
	require.NoError(t, err)
	require.True(t, user.HasPhone())
	assert.Equal(t, "+919876543210", *user.Phone)

	// The code is single use.
	_, err = svc.VerifyPhoneCode("+919876543210", "123456")
	assert.ErrorIs(t, err, ErrInvalidPhoneCode)

	// A second sign-in finds the same account.
	require.NoError(t, svc.SendPhoneCode(ctx, "+919876543210"))
	again, err := svc.VerifyPhoneCode("9876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestPhoneCodeAttemptLimit(t *testing.T) {
	svc, _ := newAuthService(t)

	require.NoError(t, svc.SendPhoneCode(context.Background(), "+919876543210"))

	for range model.MaxPhoneCodeAttempts {
		_, err := svc.VerifyPhoneCode("+919876543210", "000000")
		assert.ErrorIs(t, err, ErrInvalidPhoneCode)
	}

	_, err := svc.VerifyPhoneCode("+919876543210", "123456")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestPhoneCodeExpired(t *testing.T) {
	svc, _ := newAuthService(t)
	svc.phoneCodeExpiry = -time.Minute

	require.NoError(t, svc.SendPhoneCode(context.Background(), "+919876543210"))

	_, err := svc.VerifyPhoneCode("+919876543210", "123456")
	assert.ErrorIs(t, err, ErrInvalidPhoneCode)
}

func TestCleanupPhoneCodes(t *testing.T) {
	svc, _ := newAuthService(t)
	svc.phoneCodeExpiry = -time.Hour

	require.NoError(t, svc.SendPhoneCode(context.Background(), "+919876543210"))

	n, err := svc.CleanupPhoneCodes(time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.CleanupPhoneCodes(time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSendPhoneCodeRejectsBadNumber(t *testing.T) {
	svc, _ := newAuthService(t)

	err := svc.SendPhoneCode(context.Background(), "call me")
	assert.ErrorIs(t, err, ErrAuthValidation)
}

func TestJWTRoundTrip(t *testing.T) {
	svc, _ := newAuthService(t)

	token, expiresAt, err := svc.GenerateJWT(&model.User{ID: "user-1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])

	other := *svc
	other.jwtSecret = "another-secret"
	_, err = other.VerifyJWT(token)
	assert.Error(t, err)
}

func TestJWTCookie(t *testing.T) {
	svc, _ := newAuthService(t)

	rec := httptest.NewRecorder()
	svc.SetJWTCookie(rec, "tok", time.Now().Add(time.Hour))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AuthCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = httptest.NewRecorder()
	svc.ClearJWTCookie(rec)
	assert.Empty(t, rec.Result().Cookies()[0].Value)
}

func TestGeneratePhoneCode(t *testing.T) {
	code, err := generatePhoneCode()
	require.NoError(t, err)
	assert.Len(t, code, 6)
}
