package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/model"
)

var (
	ErrMedicationNotFound = errors.New("medication not found")
)

type MedicationRepository interface {
	Create(med *model.Medication) error
	Medications(userID string) ([]*model.Medication, error)
	DueAt(reminderAt string) ([]*model.Medication, error)
	Delete(userID, medicationID string) error
}

type medicationRepository struct {
	db *sqlx.DB
}

func NewMedicationRepository(db *sqlx.DB) MedicationRepository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(med *model.Medication) error {
	query := `INSERT INTO medications (id, user_id, med_name, dose, time, reminder_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		med.ID,
		med.UserID,
		med.MedName,
		med.Dose,
		med.Time,
		med.ReminderAt,
		med.CreatedAt,
	)

	return err
}

func (r *medicationRepository) Medications(userID string) ([]*model.Medication, error) {
	meds := []*model.Medication{}
	query := `SELECT * FROM medications WHERE user_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&meds, query, userID)
	if err != nil {
		return nil, err
	}

	return meds, nil
}

// DueAt returns every user's medications scheduled at the given "15:04" time.
func (r *medicationRepository) DueAt(reminderAt string) ([]*model.Medication, error) {
	meds := []*model.Medication{}
	query := `SELECT * FROM medications WHERE reminder_at = $1 ORDER BY user_id`

	err := r.db.Select(&meds, query, reminderAt)
	if err != nil {
		return nil, err
	}

	return meds, nil
}

func (r *medicationRepository) Delete(userID, medicationID string) error {
	result, err := r.db.Exec(`DELETE FROM medications WHERE id = $1 AND user_id = $2`, medicationID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMedicationNotFound
	}

	return nil
}
