package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pawnshop/pawn-engine/internal/domain"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.PawnLoan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PawnLoan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PawnLoan), args.Error(1)
}

func (m *MockLoanRepository) GetByCode(ctx context.Context, loanCode string) (*domain.PawnLoan, error) {
	args := m.Called(ctx, loanCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PawnLoan), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, loan *domain.PawnLoan, expectedStatus string) error {
	args := m.Called(ctx, loan, expectedStatus)
	return args.Error(0)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status string, page, size int) ([]*domain.PawnLoan, int, error) {
	args := m.Called(ctx, status, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.PawnLoan), args.Int(1), args.Error(2)
}

func (m *MockLoanRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, size int) ([]*domain.PawnLoan, int, error) {
	args := m.Called(ctx, customerID, page, size)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.PawnLoan), args.Int(1), args.Error(2)
}

func (m *MockLoanRepository) ListNonTerminalIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockLoanRepository) HasNonTerminalLoanForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, itemID)
	return args.Bool(0), args.Error(1)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repayment), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByIDNumber(ctx context.Context, idNumber string) (*domain.Customer, error) {
	args := m.Called(ctx, idNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

type MockPawnItemRepository struct {
	mock.Mock
}

func (m *MockPawnItemRepository) Create(ctx context.Context, item *domain.PawnItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPawnItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PawnItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PawnItem), args.Error(1)
}

func (m *MockPawnItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Currency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

// PassthroughTxRunner executes the function directly, without a database.
// Rollback behavior is asserted by checking which creates happened.
type PassthroughTxRunner struct{}

func (PassthroughTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
