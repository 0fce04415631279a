package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"` // E.164, set for phone sign-in
	PasswordHash *string   `db:"password_hash" json:"-"`       // Nullable for phone-only users
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

func (u *User) HasEmail() bool {
	return u.Email != nil && *u.Email != ""
}

func (u *User) HasPhone() bool {
	return u.Phone != nil && *u.Phone != ""
}

// DisplayName is the identifier shown on the dashboard greeting.
func (u *User) DisplayName() string {
	if u.HasEmail() {
		return *u.Email
	}
	if u.HasPhone() {
		return *u.Phone
	}
	return ""
}
