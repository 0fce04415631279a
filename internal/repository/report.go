package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/model"
)

var (
	ErrReportNotFound = errors.New("report not found")
)

type ReportRepository interface {
	Create(report *model.Report) error
	ByID(userID, reportID string) (*model.Report, error)
	Reports(userID string) ([]*model.Report, error)
	Delete(userID, reportID string) error
}

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *model.Report) error {
	query := `INSERT INTO reports (id, user_id, filename, mime_type, size, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		report.ID,
		report.UserID,
		report.Filename,
		report.MimeType,
		report.Size,
		report.StoragePath,
		report.CreatedAt,
	)

	return err
}

func (r *reportRepository) ByID(userID, reportID string) (*model.Report, error) {
	report := &model.Report{}
	query := `SELECT * FROM reports WHERE id = $1 AND user_id = $2`

	err := r.db.Get(report, query, reportID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (r *reportRepository) Reports(userID string) ([]*model.Report, error) {
	reports := []*model.Report{}
	query := `SELECT * FROM reports WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&reports, query, userID)
	if err != nil {
		return nil, err
	}

	return reports, nil
}

func (r *reportRepository) Delete(userID, reportID string) error {
	result, err := r.db.Exec(`DELETE FROM reports WHERE id = $1 AND user_id = $2`, reportID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrReportNotFound
	}

	return nil
}
