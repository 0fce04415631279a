package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/kidneymate/server/internal/model"
)

var (
	ErrTrackingRecordNotFound = errors.New("tracking record not found")
)

type TrackingRepository interface {
	ByDate(userID, date string) (*model.TrackingRecord, error)
	Merge(userID, date string, apply func(record *model.TrackingRecord)) (*model.TrackingRecord, error)
	Recent(userID string, limit int) ([]*model.TrackingRecord, error)
}

type trackingRepository struct {
	db *sqlx.DB
}

func NewTrackingRepository(db *sqlx.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) ByDate(userID, date string) (*model.TrackingRecord, error) {
	record := &model.TrackingRecord{}
	query := `SELECT * FROM tracking_records WHERE user_id = $1 AND date = $2`

	err := r.db.Get(record, query, userID, date)
	if err == sql.ErrNoRows {
		return nil, ErrTrackingRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Merge loads the (user, date) record, or starts a blank one, lets apply
// modify it and writes it back as an upsert on the (user_id, date) key.
// Concurrent merges of the same day resolve as last write wins.
func (r *trackingRepository) Merge(userID, date string, apply func(record *model.TrackingRecord)) (*model.TrackingRecord, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	record := &model.TrackingRecord{}
	err = tx.Get(record, `SELECT * FROM tracking_records WHERE user_id = $1 AND date = $2`, userID, date)
	if err == sql.ErrNoRows {
		record = &model.TrackingRecord{
			ID:     uuid.New().String(),
			UserID: userID,
			Date:   date,
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load tracking record: %w", err)
	}

	apply(record)

	query := `INSERT INTO tracking_records (
	              id, user_id, date, dry_weight, current_weight, weight_gain, dialysis_goal,
	              bp_before, bp_after, breakfast, lunch, dinner, other, fluid_intake,
	              created_at, updated_at
	          ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          ON CONFLICT (user_id, date) DO UPDATE SET
	              dry_weight = excluded.dry_weight,
	              current_weight = excluded.current_weight,
	              weight_gain = excluded.weight_gain,
	              dialysis_goal = excluded.dialysis_goal,
	              bp_before = excluded.bp_before,
	              bp_after = excluded.bp_after,
	              breakfast = excluded.breakfast,
	              lunch = excluded.lunch,
	              dinner = excluded.dinner,
	              other = excluded.other,
	              fluid_intake = excluded.fluid_intake,
	              updated_at = excluded.updated_at`

	_, err = tx.Exec(query,
		record.ID,
		record.UserID,
		record.Date,
		record.DryWeight,
		record.CurrentWeight,
		record.WeightGain,
		record.DialysisGoal,
		record.BPBefore,
		record.BPAfter,
		record.Breakfast,
		record.Lunch,
		record.Dinner,
		record.Other,
		record.FluidIntake,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tracking record: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Recent returns the user's most recently updated records, newest first.
func (r *trackingRepository) Recent(userID string, limit int) ([]*model.TrackingRecord, error) {
	records := []*model.TrackingRecord{}
	query := `SELECT * FROM tracking_records WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`

	err := r.db.Select(&records, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return records, nil
}
