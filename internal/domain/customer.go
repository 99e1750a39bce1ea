package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CustomerStatusActive   = "ACTIVE"
	CustomerStatusInactive = "INACTIVE"
	CustomerStatusDeleted  = "DELETED"
)

// Customer is identified by a unique national ID. Origination looks the
// customer up by that ID and creates one on first encounter, never a duplicate.
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     string    `json:"phone" db:"phone"`
	IDNumber  string    `json:"id_number" db:"id_number"`
	Address   string    `json:"address" db:"address"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	ItemStatusInPawn    = "IN_PAWN"
	ItemStatusReturned  = "RETURNED"
	ItemStatusForfeited = "FORFEITED"
)

// PawnItem is the collateral securing a loan. Owned by exactly one customer
// and referenced by at most one non-terminal loan at a time.
type PawnItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CustomerID     uuid.UUID       `json:"customer_id" db:"customer_id"`
	ItemType       string          `json:"item_type" db:"item_type"`
	Description    string          `json:"description" db:"description"`
	EstimatedValue decimal.Decimal `json:"estimated_value" db:"estimated_value"`
	PhotoURL       string          `json:"photo_url" db:"photo_url"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
