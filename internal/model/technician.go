package model

import (
	"encoding/json"
	"time"
)

type Technician struct {
	ID        string    `db:"id" json:"id" yaml:"-"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	Hospital  string    `db:"hospital" json:"hospital" yaml:"hospital"`
	Contact   string    `db:"contact" json:"contact" yaml:"contact"`
	Charges   string    `db:"charges" json:"charges" yaml:"charges"` // On-call charges in INR
	CreatedAt time.Time `db:"created_at" json:"-" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-" yaml:"-"`
}

// CallURL is the dialer link for the technician's contact number.
func (t *Technician) CallURL() string {
	if t.Contact == "" {
		return ""
	}
	return "tel:" + t.Contact
}

// MarshalJSON adds callURL to the encoded technician.
func (t Technician) MarshalJSON() ([]byte, error) {
	type technician Technician
	return json.Marshal(struct {
		technician
		CallURL string `json:"callURL"`
	}{technician(t), t.CallURL()})
}
