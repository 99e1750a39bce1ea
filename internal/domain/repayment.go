package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repayment is an immutable, append-only ledger row. RemainingPrincipal is a
// snapshot of the principal outstanding after this payment was applied.
type Repayment struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	PawnLoanID         uuid.UUID       `json:"pawn_loan_id" db:"pawn_loan_id"`
	PaidAmount         decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PrincipalPaid      decimal.Decimal `json:"principal_paid" db:"principal_paid"`
	InterestPaid       decimal.Decimal `json:"interest_paid" db:"interest_paid"`
	PenaltyPaid        decimal.Decimal `json:"penalty_paid" db:"penalty_paid"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal" db:"remaining_principal"`
	PaymentMethodID    uuid.UUID       `json:"payment_method_id" db:"payment_method_id"`
	CurrencyID         uuid.UUID       `json:"currency_id" db:"currency_id"`
	PaymentDate        time.Time       `json:"payment_date" db:"payment_date"`
	ReceivedBy         string          `json:"received_by" db:"received_by"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
}

type RecordRepaymentRequest struct {
	PaidAmount      decimal.Decimal `json:"paid_amount" validate:"required"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id" validate:"required"`
	CurrencyID      uuid.UUID       `json:"currency_id" validate:"required"`
	ReceivedBy      string          `json:"received_by"`
	PaymentDate     time.Time       `json:"payment_date"`
}
