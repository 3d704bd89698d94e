package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Currency drives how expense amounts are shown.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Currency     string    `json:"currency" db:"currency"`
	Language     string    `json:"language" db:"language"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayCurrency returns the user's currency, or DefaultCurrency when unset
func (u *User) DisplayCurrency() string {
	if u == nil || u.Currency == "" {
		return DefaultCurrency
	}
	return NormalizeCurrency(u.Currency)
}
