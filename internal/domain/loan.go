package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusCreated       = "CREATED"
	LoanStatusActive        = "ACTIVE"
	LoanStatusPartiallyPaid = "PARTIALLY_PAID"
	LoanStatusOverdue       = "OVERDUE"
	LoanStatusRedeemed      = "REDEEMED"
	LoanStatusDefaulted     = "DEFAULTED"
	LoanStatusCancelled     = "CANCELLED"
)

// PawnLoan is the central entity: one customer, one collateral item, one
// currency, one branch. It is never physically deleted; terminal statuses
// soft-close it.
type PawnLoan struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	LoanCode           string          `json:"loan_code" db:"loan_code"`
	CustomerID         uuid.UUID       `json:"customer_id" db:"customer_id"`
	PawnItemID         uuid.UUID       `json:"pawn_item_id" db:"pawn_item_id"`
	BranchID           uuid.UUID       `json:"branch_id" db:"branch_id"`
	CurrencyID         uuid.UUID       `json:"currency_id" db:"currency_id"`
	LoanAmount         decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	StorageFee         decimal.Decimal `json:"storage_fee" db:"storage_fee"`
	PenaltyRate        decimal.Decimal `json:"penalty_rate" db:"penalty_rate"`
	TotalPayableAmount decimal.Decimal `json:"total_payable_amount" db:"total_payable_amount"`
	LoanDate           time.Time       `json:"loan_date" db:"loan_date"`
	DueDate            time.Time       `json:"due_date" db:"due_date"`
	GracePeriodDays    int             `json:"grace_period_days" db:"grace_period_days"`
	RedemptionDeadline time.Time       `json:"redemption_deadline" db:"redemption_deadline"`
	Status             string          `json:"status" db:"status"`
	OverdueAt          *time.Time      `json:"overdue_at,omitempty" db:"overdue_at"`
	RedeemedAt         *time.Time      `json:"redeemed_at,omitempty" db:"redeemed_at"`
	DefaultedAt        *time.Time      `json:"defaulted_at,omitempty" db:"defaulted_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalPayable computes loanAmount + flat interest + storage fee.
// Interest rate is a flat monthly percentage, e.g. 5 means 5%.
func TotalPayable(loanAmount, interestRate, storageFee decimal.Decimal) decimal.Decimal {
	interest := loanAmount.Mul(interestRate).Div(decimal.NewFromInt(100))
	return loanAmount.Add(interest).Add(storageFee)
}

// DTOs for requests and responses

type CustomerInfo struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address"`
}

// CollateralInfo either references an existing pawn item or describes a new one.
type CollateralInfo struct {
	PawnItemID     *uuid.UUID      `json:"pawn_item_id,omitempty"`
	ItemType       string          `json:"item_type"`
	Description    string          `json:"description"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	PhotoURL       string          `json:"photo_url"`
}

type LoanTerms struct {
	CurrencyID      uuid.UUID       `json:"currency_id" validate:"required"`
	BranchID        uuid.UUID       `json:"branch_id" validate:"required"`
	LoanAmount      decimal.Decimal `json:"loan_amount" validate:"required"`
	InterestRate    decimal.Decimal `json:"interest_rate" validate:"required"`
	DueDate         time.Time       `json:"due_date" validate:"required"`
	GracePeriodDays int             `json:"grace_period_days" validate:"gte=0"`
	StorageFee      decimal.Decimal `json:"storage_fee"`
	PenaltyRate     decimal.Decimal `json:"penalty_rate"`
}

type OriginateLoanRequest struct {
	NationalID     string         `json:"national_id" validate:"required"`
	CustomerInfo   *CustomerInfo  `json:"customer_info,omitempty"`
	CollateralInfo CollateralInfo `json:"collateral_info"`
	LoanTerms      LoanTerms      `json:"loan_terms"`
}

type RedeemLoanRequest struct {
	ItemConditionVerified bool            `json:"item_condition_verified"`
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	PaymentMethodID       uuid.UUID       `json:"payment_method_id"`
	ReceivedBy            string          `json:"received_by"`
}

type LoanPage struct {
	Content       []*PawnLoan `json:"content"`
	TotalElements int         `json:"total_elements"`
	TotalPages    int         `json:"total_pages"`
	Size          int         `json:"size"`
	Number        int         `json:"number"`
}
