package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const AuthCookieName = "auth_token"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAuthValidation     = errors.New("invalid sign-in details")
	ErrInvalidPhoneCode   = errors.New("invalid or expired code")
	ErrTooManyAttempts    = errors.New("too many attempts, request a new code")
)

type AuthService struct {
	userRepository         repository.UserRepository
	profileRepository      repository.ProfileRepository
	verificationRepository repository.PhoneVerificationRepository
	emailService           *EmailService
	smsService             *SMSService
	appName                string
	jwtSecret              string
	isProduction           bool
	jwtExpiry              time.Duration
	phoneCodeExpiry        time.Duration
	generateCode           func() (string, error)
}

func NewAuthService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	verificationRepository repository.PhoneVerificationRepository,
	emailService *EmailService,
	smsService *SMSService,
	appName string,
	jwtSecret string,
	isProduction bool,
	jwtExpiry time.Duration,
	phoneCodeExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository:         userRepository,
		profileRepository:      profileRepository,
		verificationRepository: verificationRepository,
		emailService:           emailService,
		smsService:             smsService,
		appName:                appName,
		jwtSecret:              jwtSecret,
		isProduction:           isProduction,
		jwtExpiry:              jwtExpiry,
		phoneCodeExpiry:        phoneCodeExpiry,
		generateCode:           generatePhoneCode,
	}
}

// Signup creates an email account with its profile and sends a welcome email.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = validation.NormalizeEmail(email)

	err := validation.ValidateName(name)
	if err != nil {
		return nil, invalid(ErrAuthValidation, err.Error())
	}
	err = validation.ValidateEmail(email)
	if err != nil {
		return nil, invalid(ErrAuthValidation, err.Error())
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, invalid(ErrAuthValidation, err.Error())
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        &email,
		PasswordHash: &hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.userRepository.Create(user)
	if errors.Is(err, repository.ErrDuplicateUser) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.profileRepository.Create(&model.Profile{UserID: user.ID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	err = s.emailService.SendWelcomeEmail(ctx, email, name)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	slog.Info("new user signed up", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPassword() {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	err = s.ComparePassword(password, *user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, nil
}

// SendPhoneCode issues a new one-time code for phone and texts it. Earlier
// pending codes for the number stop working.
func (s *AuthService) SendPhoneCode(ctx context.Context, phone string) error {
	phone, err := validation.NormalizePhone(phone)
	if err != nil {
		return invalid(ErrAuthValidation, err.Error())
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	err = s.verificationRepository.DeletePending(phone)
	if err != nil {
		slog.Warn("failed to delete old phone codes", "error", err)
	}

	err = s.verificationRepository.Create(&model.PhoneVerification{
		Phone:     phone,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().UTC().Add(s.phoneCodeExpiry),
	})
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	err = s.smsService.Send(ctx, phone, phoneCodeMessage(code, s.appName))
	if err != nil {
		return err
	}

	return nil
}

// VerifyPhoneCode checks code against the latest one sent to phone and signs
// the owner of the number in, creating the account on first use.
func (s *AuthService) VerifyPhoneCode(phone, code string) (*model.User, error) {
	phone, err := validation.NormalizePhone(phone)
	if err != nil {
		return nil, invalid(ErrAuthValidation, err.Error())
	}

	v, err := s.verificationRepository.Latest(phone)
	if errors.Is(err, repository.ErrVerificationNotFound) {
		return nil, ErrInvalidPhoneCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load code: %w", err)
	}

	if v.IsExhausted() {
		return nil, ErrTooManyAttempts
	}
	if !v.IsValid() {
		return nil, ErrInvalidPhoneCode
	}

	err = bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(strings.TrimSpace(code)))
	if err != nil {
		incErr := s.verificationRepository.IncrementAttempts(v.ID)
		if incErr != nil {
			slog.Warn("failed to count phone code attempt", "error", incErr)
		}
		return nil, ErrInvalidPhoneCode
	}

	// Consume fails when a concurrent request already used the code.
	err = s.verificationRepository.Consume(v.ID)
	if err != nil {
		return nil, ErrInvalidPhoneCode
	}

	user, err := s.userRepository.ByPhone(phone)
	if err == nil {
		slog.Info("user authenticated via phone", "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user = &model.User{
		ID:        uuid.New().String(),
		Phone:     &phone,
		CreatedAt: time.Now().UTC(),
	}
	err = s.userRepository.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Name is set later from the profile screen.
	err = s.profileRepository.Create(&model.Profile{UserID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	slog.Info("new phone user created", "user_id", user.ID)
	return user, nil
}

// CleanupPhoneCodes removes spent and expired sign-in codes older than
// olderThan.
func (s *AuthService) CleanupPhoneCodes(olderThan time.Duration) (int64, error) {
	n, err := s.verificationRepository.CleanupExpired(olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up phone codes: %w", err)
	}
	if n > 0 {
		slog.Info("phone codes cleaned up", "count", n)
	}
	return n, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateJWT signs a session token for user and returns it with its expiry.
func (s *AuthService) GenerateJWT(user *model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtExpiry)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) SetJWTCookie(w http.ResponseWriter, token string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearJWTCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func generatePhoneCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
