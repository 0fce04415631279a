package model

import (
	"time"
)

type Medication struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"-"`
	MedName    string    `db:"med_name" json:"medName"`
	Dose       string    `db:"dose" json:"dose"`
	Time       string    `db:"time" json:"time"`               // As entered, e.g. "8:00 AM"
	ReminderAt string    `db:"reminder_at" json:"reminderAt"`  // "15:04", empty when Time is not a clock time
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
