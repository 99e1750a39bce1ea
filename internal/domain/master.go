package domain

import (
	"time"

	"github.com/google/uuid"
)

// Currency master data. DecimalPlace governs rounding for every amount on
// loans in that currency and is immutable once a loan references it.
type Currency struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Code         string    `json:"code" db:"code"`
	Name         string    `json:"name" db:"name"`
	Symbol       string    `json:"symbol" db:"symbol"`
	DecimalPlace int       `json:"decimal_place" db:"decimal_place"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Branch is used for attribution only.
type Branch struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
