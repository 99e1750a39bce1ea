package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/pawnshop/pawn-engine/internal/domain"
)

// LoanRepository defines the interface for pawn loan data operations
type LoanRepository interface {
	// Create inserts a new loan
	Create(ctx context.Context, loan *domain.PawnLoan) error

	// GetByID retrieves a loan by primary key
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PawnLoan, error)

	// GetByCode retrieves a loan by its loan code
	GetByCode(ctx context.Context, loanCode string) (*domain.PawnLoan, error)

	// UpdateStatus persists the loan's status and lifecycle timestamps,
	// guarded by the status the caller read (optimistic check)
	UpdateStatus(ctx context.Context, loan *domain.PawnLoan, expectedStatus string) error

	// ListByStatus returns a page of loans in a given status plus the total count
	ListByStatus(ctx context.Context, status string, page, size int) ([]*domain.PawnLoan, int, error)

	// ListByCustomer returns a page of a customer's loans plus the total count
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page, size int) ([]*domain.PawnLoan, int, error)

	// ListNonTerminalIDs returns ids of all loans the overdue sweep must visit
	ListNonTerminalIDs(ctx context.Context) ([]uuid.UUID, error)

	// HasNonTerminalLoanForItem reports whether a pawn item currently secures
	// a loan that is not redeemed, defaulted, or cancelled
	HasNonTerminalLoanForItem(ctx context.Context, itemID uuid.UUID) (bool, error)
}

// RepaymentRepository defines the interface for repayment data operations.
// Repayment rows are append-only; there is no update or delete.
type RepaymentRepository interface {
	Create(ctx context.Context, repayment *domain.Repayment) error
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error)
}

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// GetByIDNumber looks a customer up by national ID
	GetByIDNumber(ctx context.Context, idNumber string) (*domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) error
}

// PawnItemRepository defines the interface for collateral data operations
type PawnItemRepository interface {
	Create(ctx context.Context, item *domain.PawnItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PawnItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CurrencyRepository defines currency master lookups
type CurrencyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Currency, error)
}

// BranchRepository defines branch master lookups
type BranchRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error)
}

// TxRunner runs a function inside one database transaction. Repositories
// called with the context it hands out join that transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
