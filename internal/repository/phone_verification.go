package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/model"
)

var (
	ErrVerificationNotFound = errors.New("verification code not found")
)

type PhoneVerificationRepository interface {
	Create(v *model.PhoneVerification) error
	Latest(phone string) (*model.PhoneVerification, error)
	IncrementAttempts(id string) error
	Consume(id string) error
	DeletePending(phone string) error
	CleanupExpired(olderThan time.Duration) (int64, error)
}

type phoneVerificationRepository struct {
	db *sqlx.DB
}

func NewPhoneVerificationRepository(db *sqlx.DB) PhoneVerificationRepository {
	return &phoneVerificationRepository{db: db}
}

func (r *phoneVerificationRepository) Create(v *model.PhoneVerification) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO phone_verifications (id, phone, code_hash, attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(query, v.ID, v.Phone, v.CodeHash, v.Attempts, v.ExpiresAt, v.CreatedAt)
	return err
}

// Latest returns the newest unused code issued to phone.
func (r *phoneVerificationRepository) Latest(phone string) (*model.PhoneVerification, error) {
	var v model.PhoneVerification
	query := `
		SELECT * FROM phone_verifications
		WHERE phone = $1 AND used_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.Get(&v, query, phone)
	if err == sql.ErrNoRows {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *phoneVerificationRepository) IncrementAttempts(id string) error {
	_, err := r.db.Exec(`UPDATE phone_verifications SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

// Consume marks the code used. Only the first caller succeeds; later calls
// get ErrVerificationNotFound.
func (r *phoneVerificationRepository) Consume(id string) error {
	result, err := r.db.Exec(`
		UPDATE phone_verifications
		SET used_at = $1
		WHERE id = $2 AND used_at IS NULL
	`, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVerificationNotFound
	}

	return nil
}

func (r *phoneVerificationRepository) DeletePending(phone string) error {
	_, err := r.db.Exec(`DELETE FROM phone_verifications WHERE phone = $1 AND used_at IS NULL`, phone)
	return err
}

// CleanupExpired removes used and expired codes older than olderThan.
func (r *phoneVerificationRepository) CleanupExpired(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := r.db.Exec(`
		DELETE FROM phone_verifications
		WHERE (used_at IS NOT NULL AND used_at < $1)
		   OR (expires_at < $1)
	`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
