package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pawnshop/pawn-engine/internal/domain"
)

type repaymentRepository struct {
	db *sqlx.DB
}

func NewRepaymentRepository(db *sqlx.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	query := `
		INSERT INTO repayments (
			id, pawn_loan_id, paid_amount, principal_paid, interest_paid, penalty_paid,
			remaining_principal, payment_method_id, currency_id, payment_date, received_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := getExt(ctx, r.db).ExecContext(ctx, query,
		repayment.ID,
		repayment.PawnLoanID,
		repayment.PaidAmount,
		repayment.PrincipalPaid,
		repayment.InterestPaid,
		repayment.PenaltyPaid,
		repayment.RemainingPrincipal,
		repayment.PaymentMethodID,
		repayment.CurrencyID,
		repayment.PaymentDate,
		repayment.ReceivedBy,
		repayment.CreatedAt,
	)

	return err
}

func (r *repaymentRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	query := `
		SELECT id, pawn_loan_id, paid_amount, principal_paid, interest_paid, penalty_paid,
		       remaining_principal, payment_method_id, currency_id, payment_date, received_by, created_at
		FROM repayments
		WHERE pawn_loan_id = $1
		ORDER BY created_at
	`

	var repayments []*domain.Repayment
	if err := sqlx.SelectContext(ctx, getExt(ctx, r.db), &repayments, query, loanID); err != nil {
		return nil, err
	}

	return repayments, nil
}
