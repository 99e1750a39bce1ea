package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pawnshop/pawn-engine/internal/domain"
	customError "github.com/pawnshop/pawn-engine/pkg/errors"
)

const loanColumns = `
	id, loan_code, customer_id, pawn_item_id, branch_id, currency_id,
	loan_amount, interest_rate, storage_fee, penalty_rate, total_payable_amount,
	loan_date, due_date, grace_period_days, redemption_deadline,
	status, overdue_at, redeemed_at, defaulted_at, created_at, updated_at
`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.PawnLoan) error {
	query := `
		INSERT INTO pawn_loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := getExt(ctx, r.db).ExecContext(ctx, query,
		loan.ID,
		loan.LoanCode,
		loan.CustomerID,
		loan.PawnItemID,
		loan.BranchID,
		loan.CurrencyID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.StorageFee,
		loan.PenaltyRate,
		loan.TotalPayableAmount,
		loan.LoanDate,
		loan.DueDate,
		loan.GracePeriodDays,
		loan.RedemptionDeadline,
		loan.Status,
		loan.OverdueAt,
		loan.RedeemedAt,
		loan.DefaultedAt,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PawnLoan, error) {
	query := `SELECT ` + loanColumns + ` FROM pawn_loans WHERE id = $1`

	var loan domain.PawnLoan
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByCode(ctx context.Context, loanCode string) (*domain.PawnLoan, error) {
	query := `SELECT ` + loanColumns + ` FROM pawn_loans WHERE loan_code = $1`

	var loan domain.PawnLoan
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &loan, query, loanCode); err != nil {
		return nil, err
	}

	return &loan, nil
}

// UpdateStatus writes the loan's status and lifecycle timestamps, guarded by
// the status the caller read. Zero rows affected means another operation got
// there first.
func (r *loanRepository) UpdateStatus(ctx context.Context, loan *domain.PawnLoan, expectedStatus string) error {
	query := `
		UPDATE pawn_loans
		SET status = $3, overdue_at = $4, redeemed_at = $5, defaulted_at = $6, updated_at = $7
		WHERE id = $1 AND status = $2
	`

	result, err := getExt(ctx, r.db).ExecContext(ctx, query,
		loan.ID,
		expectedStatus,
		loan.Status,
		loan.OverdueAt,
		loan.RedeemedAt,
		loan.DefaultedAt,
		time.Now(),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.WrapConcurrentModification(loan.LoanCode)
	}

	return nil
}

func (r *loanRepository) ListByStatus(ctx context.Context, status string, page, size int) ([]*domain.PawnLoan, int, error) {
	countQuery := `SELECT COUNT(*) FROM pawn_loans WHERE status = $1`

	var total int
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &total, countQuery, status); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + loanColumns + `
		FROM pawn_loans
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var loans []*domain.PawnLoan
	if err := sqlx.SelectContext(ctx, getExt(ctx, r.db), &loans, query, status, size, page*size); err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

func (r *loanRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, size int) ([]*domain.PawnLoan, int, error) {
	countQuery := `SELECT COUNT(*) FROM pawn_loans WHERE customer_id = $1`

	var total int
	if err := sqlx.GetContext(ctx, getExt(ctx, r.db), &total, countQuery, customerID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + loanColumns + `
		FROM pawn_loans
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var loans []*domain.PawnLoan
	if err := sqlx.SelectContext(ctx, getExt(ctx, r.db), &loans, query, customerID, size, page*size); err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

func (r *loanRepository) ListNonTerminalIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM pawn_loans
		WHERE status NOT IN ($1, $2, $3)
		ORDER BY created_at
	`

	var ids []uuid.UUID
	err := sqlx.SelectContext(ctx, getExt(ctx, r.db), &ids, query,
		domain.LoanStatusRedeemed, domain.LoanStatusDefaulted, domain.LoanStatusCancelled)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *loanRepository) HasNonTerminalLoanForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM pawn_loans
			WHERE pawn_item_id = $1 AND status NOT IN ($2, $3, $4)
		)
	`

	var exists bool
	err := sqlx.GetContext(ctx, getExt(ctx, r.db), &exists, query, itemID,
		domain.LoanStatusRedeemed, domain.LoanStatusDefaulted, domain.LoanStatusCancelled)
	if err != nil {
		return false, err
	}

	return exists, nil
}
