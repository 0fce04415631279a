package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/model"
)

type TechnicianRepository interface {
	Technicians() ([]*model.Technician, error)
	Upsert(tech *model.Technician) error
	Version() (string, error)
}

type technicianRepository struct {
	db *sqlx.DB
}

func NewTechnicianRepository(db *sqlx.DB) TechnicianRepository {
	return &technicianRepository{db: db}
}

func (r *technicianRepository) Technicians() ([]*model.Technician, error) {
	techs := []*model.Technician{}
	query := `SELECT * FROM technicians ORDER BY LOWER(name) ASC, hospital ASC`

	err := r.db.Select(&techs, query)
	if err != nil {
		return nil, err
	}

	return techs, nil
}

// Upsert inserts the technician or refreshes contact and charges for an
// existing (name, hospital) pair.
func (r *technicianRepository) Upsert(tech *model.Technician) error {
	now := time.Now().UTC()
	if tech.ID == "" {
		tech.ID = uuid.New().String()
	}
	if tech.CreatedAt.IsZero() {
		tech.CreatedAt = now
	}
	tech.UpdatedAt = now

	query := `INSERT INTO technicians (id, name, hospital, contact, charges, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (name, hospital) DO UPDATE SET
	              contact = excluded.contact,
	              charges = excluded.charges,
	              updated_at = excluded.updated_at`

	_, err := r.db.Exec(query,
		tech.ID,
		tech.Name,
		tech.Hospital,
		tech.Contact,
		tech.Charges,
		tech.CreatedAt,
		tech.UpdatedAt,
	)

	return err
}

// Version summarizes the table so writers in other processes can be
// detected. It changes whenever a row is added or updated.
func (r *technicianRepository) Version() (string, error) {
	var v struct {
		Count  int            `db:"count"`
		Latest sql.NullString `db:"latest"`
	}
	query := `SELECT COUNT(*) AS count, MAX(updated_at) AS latest FROM technicians`

	err := r.db.Get(&v, query)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d/%s", v.Count, v.Latest.String), nil
}
