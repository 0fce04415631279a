package model

import (
	"time"
)

// DateLayout is the format of a tracking record key.
const DateLayout = "2006-01-02"

const noDietNotes = "No diet notes"

// TrackingRecord is one user's fluid-balance and diet entry for a calendar day.
// Date is the record key: at most one record exists per (user, date).
type TrackingRecord struct {
	ID            string    `db:"id" json:"-"`
	UserID        string    `db:"user_id" json:"-"`
	Date          string    `db:"date" json:"date"`
	DryWeight     string    `db:"dry_weight" json:"dryWeight"`
	CurrentWeight string    `db:"current_weight" json:"currentWeight"`
	WeightGain    string    `db:"weight_gain" json:"weightGain"`
	DialysisGoal  string    `db:"dialysis_goal" json:"dialysisGoal"`
	BPBefore      string    `db:"bp_before" json:"bpBefore"`
	BPAfter       string    `db:"bp_after" json:"bpAfter"`
	Breakfast     string    `db:"breakfast" json:"breakfast"`
	Lunch         string    `db:"lunch" json:"lunch"`
	Dinner        string    `db:"dinner" json:"dinner"`
	Other         string    `db:"other" json:"other"`
	FluidIntake   string    `db:"fluid_intake" json:"fluidIntake"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// TrackingInput is a partial update. Nil fields are left unchanged on merge.
// WeightGain is absent on purpose: it is always derived.
type TrackingInput struct {
	DryWeight     *string `json:"dryWeight"`
	CurrentWeight *string `json:"currentWeight"`
	DialysisGoal  *string `json:"dialysisGoal"`
	BPBefore      *string `json:"bpBefore"`
	BPAfter       *string `json:"bpAfter"`
	Breakfast     *string `json:"breakfast"`
	Lunch         *string `json:"lunch"`
	Dinner        *string `json:"dinner"`
	Other         *string `json:"other"`
	FluidIntake   *string `json:"fluidIntake"`
}

// Merge applies the non-nil fields of in to r, sets the derived weight gain
// and stamps UpdatedAt.
func (r *TrackingRecord) Merge(in TrackingInput, weightGain string, now time.Time) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&r.DryWeight, in.DryWeight)
	set(&r.CurrentWeight, in.CurrentWeight)
	set(&r.DialysisGoal, in.DialysisGoal)
	set(&r.BPBefore, in.BPBefore)
	set(&r.BPAfter, in.BPAfter)
	set(&r.Breakfast, in.Breakfast)
	set(&r.Lunch, in.Lunch)
	set(&r.Dinner, in.Dinner)
	set(&r.Other, in.Other)
	set(&r.FluidIntake, in.FluidIntake)

	r.WeightGain = weightGain
	r.UpdatedAt = now
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
}

// IsEmpty reports whether the record has never been saved.
func (r *TrackingRecord) IsEmpty() bool {
	return r.UpdatedAt.IsZero()
}

// Summary is the one-line diet note shown in the history list.
func (r *TrackingRecord) Summary() string {
	for _, note := range []string{r.Breakfast, r.Lunch, r.Dinner, r.Other} {
		if note != "" {
			return note
		}
	}
	return noDietNotes
}

// DisplayDate renders the record key as e.g. "Thu Jan 02 2025".
func (r *TrackingRecord) DisplayDate() string {
	t, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return r.Date
	}
	return t.Format("Mon Jan 02 2006")
}
