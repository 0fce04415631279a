package model

import (
	"time"
)

// MaxPhoneCodeAttempts bounds wrong guesses per issued code.
const MaxPhoneCodeAttempts = 5

// PhoneVerification is a one-time sign-in code sent by SMS.
// Only the bcrypt hash of the code is stored.
type PhoneVerification struct {
	ID        string     `db:"id"`
	Phone     string     `db:"phone"`
	CodeHash  string     `db:"code_hash"`
	Attempts  int        `db:"attempts"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (v *PhoneVerification) IsExpired() bool {
	return time.Now().After(v.ExpiresAt)
}

func (v *PhoneVerification) IsUsed() bool {
	return v.UsedAt != nil
}

func (v *PhoneVerification) IsExhausted() bool {
	return v.Attempts >= MaxPhoneCodeAttempts
}

func (v *PhoneVerification) IsValid() bool {
	return !v.IsExpired() && !v.IsUsed() && !v.IsExhausted()
}
