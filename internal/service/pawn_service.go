package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pawnshop/pawn-engine/internal/config"
	"github.com/pawnshop/pawn-engine/internal/domain"
	"github.com/pawnshop/pawn-engine/internal/repository"
	customError "github.com/pawnshop/pawn-engine/pkg/errors"
	"github.com/pawnshop/pawn-engine/pkg/lock"
	"github.com/pawnshop/pawn-engine/pkg/money"
)

// PawnService owns the pawn-loan lifecycle: origination, repayment
// allocation, redemption, default, cancellation, and the overdue check.
// Every mutating operation is serialized per loan via the locker.
type PawnService struct {
	LoanRepo      repository.LoanRepository
	RepaymentRepo repository.RepaymentRepository
	CustomerRepo  repository.CustomerRepository
	ItemRepo      repository.PawnItemRepository
	CurrencyRepo  repository.CurrencyRepository
	BranchRepo    repository.BranchRepository

	txRunner repository.TxRunner
	locker   *lock.Locker
	config   *config.Config
	logger   *zap.Logger

	now func() time.Time
}

func NewPawnService(
	loanRepo repository.LoanRepository,
	repaymentRepo repository.RepaymentRepository,
	customerRepo repository.CustomerRepository,
	itemRepo repository.PawnItemRepository,
	currencyRepo repository.CurrencyRepository,
	branchRepo repository.BranchRepository,
	txRunner repository.TxRunner,
	locker *lock.Locker,
	cfg *config.Config,
	logger *zap.Logger,
) *PawnService {
	return &PawnService{
		LoanRepo:      loanRepo,
		RepaymentRepo: repaymentRepo,
		CustomerRepo:  customerRepo,
		ItemRepo:      itemRepo,
		CurrencyRepo:  currencyRepo,
		BranchRepo:    branchRepo,
		txRunner:      txRunner,
		locker:        locker,
		config:        cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// OriginateLoan atomically looks up or creates the customer by national ID,
// creates or reuses the collateral item, computes the payable amount, and
// creates the loan. All steps commit or fail together: a failure late in the
// transaction rolls back a customer or item created earlier in it.
func (s *PawnService) OriginateLoan(ctx context.Context, req *domain.OriginateLoanRequest) (*domain.PawnLoan, error) {
	if err := validateOrigination(req); err != nil {
		return nil, err
	}

	currency, err := s.CurrencyRepo.GetByID(ctx, req.LoanTerms.CurrencyID)
	if err != nil {
		return nil, lookupError("currency", err)
	}

	if _, err := s.BranchRepo.GetByID(ctx, req.LoanTerms.BranchID); err != nil {
		return nil, lookupError("branch", err)
	}

	now := s.now()
	var loan *domain.PawnLoan

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		customer, err := s.lookupOrCreateCustomer(ctx, req, now)
		if err != nil {
			return err
		}

		item, err := s.resolveCollateral(ctx, customer, &req.CollateralInfo, now)
		if err != nil {
			return err
		}

		if s.config.Business.EnforceSingleActiveLoan {
			inUse, err := s.LoanRepo.HasNonTerminalLoanForItem(ctx, item.ID)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}
			if inUse {
				return customError.WrapDuplicateActiveLoan(item.ID.String())
			}
		}

		terms := req.LoanTerms
		totalPayable, err := money.Round(
			domain.TotalPayable(terms.LoanAmount, terms.InterestRate, terms.StorageFee),
			currency.DecimalPlace,
		)
		if err != nil {
			return err
		}

		grace := terms.GracePeriodDays
		if grace == 0 {
			grace = s.config.Business.DefaultGracePeriodDays
		}

		loan = &domain.PawnLoan{
			ID:                 uuid.New(),
			LoanCode:           s.newLoanCode(now),
			CustomerID:         customer.ID,
			PawnItemID:         item.ID,
			BranchID:           terms.BranchID,
			CurrencyID:         terms.CurrencyID,
			LoanAmount:         terms.LoanAmount,
			InterestRate:       terms.InterestRate,
			StorageFee:         terms.StorageFee,
			PenaltyRate:        terms.PenaltyRate,
			TotalPayableAmount: totalPayable,
			LoanDate:           now,
			DueDate:            terms.DueDate,
			GracePeriodDays:    grace,
			RedemptionDeadline: terms.DueDate.AddDate(0, 0, grace),
			Status:             domain.LoanStatusCreated,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		// Disbursement is part of the origination commit, so loans reach
		// the database already ACTIVE. CREATED exists for flows that stage
		// a loan before handing over funds; only those can still cancel.
		if err := loan.TransitionTo(domain.LoanStatusActive, now); err != nil {
			return err
		}

		if err := s.LoanRepo.Create(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan originated",
		zap.String("loan_code", loan.LoanCode),
		zap.String("total_payable", loan.TotalPayableAmount.String()),
	)

	return loan, nil
}

// RecordRepayment splits a tendered amount across penalty, interest, and
// principal and appends an immutable repayment row. A payment that would
// settle the loan in full is rejected; that path belongs to RedeemLoan.
func (s *PawnService) RecordRepayment(ctx context.Context, loanID uuid.UUID, req *domain.RecordRepaymentRequest) (*domain.Repayment, error) {
	handle, err := s.locker.Acquire(ctx, loanID.String())
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	now := s.now()

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	// Repayments are single-currency: the tender must be in the loan's
	// currency, conversion happens outside this engine.
	if req.CurrencyID != loan.CurrencyID {
		return nil, customError.WrapValidation("payment currency does not match the loan currency")
	}

	if err := s.applyOverdue(ctx, loan, now); err != nil {
		return nil, err
	}

	if !domain.CanTransition(loan.Status, domain.LoanStatusPartiallyPaid) {
		return nil, customError.WrapInvalidStateTransition(loan.LoanCode, loan.Status, domain.LoanStatusPartiallyPaid)
	}

	led, err := s.buildLedger(ctx, loan, now)
	if err != nil {
		return nil, err
	}

	alloc, err := domain.AllocatePayment(led, req.PaidAmount)
	if err != nil {
		return nil, err
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	repayment := &domain.Repayment{
		ID:                 uuid.New(),
		PawnLoanID:         loan.ID,
		PaidAmount:         alloc.PaidAmount,
		PrincipalPaid:      alloc.PrincipalPaid,
		InterestPaid:       alloc.InterestPaid,
		PenaltyPaid:        alloc.PenaltyPaid,
		RemainingPrincipal: alloc.RemainingPrincipal,
		PaymentMethodID:    req.PaymentMethodID,
		CurrencyID:         loan.CurrencyID,
		PaymentDate:        paymentDate,
		ReceivedBy:         req.ReceivedBy,
		CreatedAt:          now,
	}

	priorStatus := loan.Status
	if err := loan.TransitionTo(domain.LoanStatusPartiallyPaid, now); err != nil {
		return nil, err
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.RepaymentRepo.Create(ctx, repayment); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return s.updateLoanStatus(ctx, loan, priorStatus)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("repayment recorded",
		zap.String("loan_code", loan.LoanCode),
		zap.String("paid_amount", repayment.PaidAmount.String()),
		zap.String("remaining_principal", repayment.RemainingPrincipal.String()),
	)

	return repayment, nil
}

// PreviewRepayment runs the allocation waterfall without committing anything.
// The UI previews with this; submit re-executes the same function
// authoritatively inside RecordRepayment.
func (s *PawnService) PreviewRepayment(ctx context.Context, loanID uuid.UUID, paidAmount decimal.Decimal) (*domain.Allocation, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	led, err := s.buildLedger(ctx, loan, s.now())
	if err != nil {
		return nil, err
	}

	return domain.AllocatePayment(led, paidAmount)
}

// RedeemLoan fully settles a loan and releases the collateral. The operator
// must confirm the item's condition, and the tendered amount (possibly zero,
// when prior repayments already cover everything) must bring the outstanding
// total to exactly zero.
func (s *PawnService) RedeemLoan(ctx context.Context, loanID uuid.UUID, req *domain.RedeemLoanRequest) (*domain.PawnLoan, error) {
	handle, err := s.locker.Acquire(ctx, loanID.String())
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	now := s.now()

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(loan.Status, domain.LoanStatusRedeemed) {
		return nil, customError.WrapInvalidStateTransition(loan.LoanCode, loan.Status, domain.LoanStatusRedeemed)
	}

	if !req.ItemConditionVerified {
		return nil, customError.WrapItemNotVerified(loan.LoanCode)
	}

	led, err := s.buildLedger(ctx, loan, now)
	if err != nil {
		return nil, err
	}

	alloc, err := domain.AllocateSettlement(led, req.PaidAmount)
	if err != nil {
		return nil, err
	}

	priorStatus := loan.Status
	if err := loan.TransitionTo(domain.LoanStatusRedeemed, now); err != nil {
		return nil, err
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if alloc.PaidAmount.IsPositive() {
			settlement := &domain.Repayment{
				ID:                 uuid.New(),
				PawnLoanID:         loan.ID,
				PaidAmount:         alloc.PaidAmount,
				PrincipalPaid:      alloc.PrincipalPaid,
				InterestPaid:       alloc.InterestPaid,
				PenaltyPaid:        alloc.PenaltyPaid,
				RemainingPrincipal: alloc.RemainingPrincipal,
				PaymentMethodID:    req.PaymentMethodID,
				CurrencyID:         loan.CurrencyID,
				PaymentDate:        now,
				ReceivedBy:         req.ReceivedBy,
				CreatedAt:          now,
			}
			if err := s.RepaymentRepo.Create(ctx, settlement); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}

		if err := s.updateLoanStatus(ctx, loan, priorStatus); err != nil {
			return err
		}

		if err := s.ItemRepo.UpdateStatus(ctx, loan.PawnItemID, domain.ItemStatusReturned); err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan redeemed", zap.String("loan_code", loan.LoanCode))

	return loan, nil
}

// DefaultLoan forfeits the collateral after non-payment. No funds flow.
func (s *PawnService) DefaultLoan(ctx context.Context, loanID uuid.UUID) (*domain.PawnLoan, error) {
	handle, err := s.locker.Acquire(ctx, loanID.String())
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	priorStatus := loan.Status
	if err := loan.TransitionTo(domain.LoanStatusDefaulted, s.now()); err != nil {
		return nil, err
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.updateLoanStatus(ctx, loan, priorStatus); err != nil {
			return err
		}
		if err := s.ItemRepo.UpdateStatus(ctx, loan.PawnItemID, domain.ItemStatusForfeited); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan defaulted", zap.String("loan_code", loan.LoanCode))

	return loan, nil
}

// CancelLoan voids a loan still in CREATED, i.e. staged but not disbursed.
// Loans created through OriginateLoan are persisted ACTIVE and cannot be
// cancelled, only redeemed or defaulted. No financial side effects.
func (s *PawnService) CancelLoan(ctx context.Context, loanID uuid.UUID) (*domain.PawnLoan, error) {
	handle, err := s.locker.Acquire(ctx, loanID.String())
	if err != nil {
		return nil, err
	}
	defer handle.Release(ctx)

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	priorStatus := loan.Status
	if err := loan.TransitionTo(domain.LoanStatusCancelled, s.now()); err != nil {
		return nil, err
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.updateLoanStatus(ctx, loan, priorStatus); err != nil {
			return err
		}
		if err := s.ItemRepo.UpdateStatus(ctx, loan.PawnItemID, domain.ItemStatusReturned); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// CheckOverdue lazily transitions a loan past its redemption deadline to
// OVERDUE and reports whether the loan is overdue. Re-checking an
// already-overdue loan is a no-op.
func (s *PawnService) CheckOverdue(ctx context.Context, loanID uuid.UUID) (bool, error) {
	handle, err := s.locker.Acquire(ctx, loanID.String())
	if err != nil {
		return false, err
	}
	defer handle.Release(ctx)

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return false, err
	}

	if err := s.applyOverdue(ctx, loan, s.now()); err != nil {
		return false, err
	}

	return loan.Status == domain.LoanStatusOverdue, nil
}

// SweepOverdue visits every non-terminal loan and applies the overdue check.
// Failures on individual loans are logged and skipped so one contended lock
// does not stall the sweep.
func (s *PawnService) SweepOverdue(ctx context.Context) (int, error) {
	ids, err := s.LoanRepo.ListNonTerminalIDs(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	overdue := 0
	for _, id := range ids {
		isOverdue, err := s.CheckOverdue(ctx, id)
		if err != nil {
			s.logger.Warn("overdue sweep skipped loan",
				zap.String("loan_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		if isOverdue {
			overdue++
		}
	}

	return overdue, nil
}

// GetLoan returns a loan by id.
func (s *PawnService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.PawnLoan, error) {
	return s.getLoan(ctx, loanID)
}

// GetLoanByCode returns a loan by its loan code.
func (s *PawnService) GetLoanByCode(ctx context.Context, loanCode string) (*domain.PawnLoan, error) {
	loan, err := s.LoanRepo.GetByCode(ctx, loanCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanCode)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// ListLoansByStatus returns one page of loans in a status.
func (s *PawnService) ListLoansByStatus(ctx context.Context, status string, page, size int) (*domain.LoanPage, error) {
	loans, total, err := s.LoanRepo.ListByStatus(ctx, status, page, size)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return newLoanPage(loans, total, page, size), nil
}

// ListLoansByCustomer returns one page of a customer's loans.
func (s *PawnService) ListLoansByCustomer(ctx context.Context, customerID uuid.UUID, page, size int) (*domain.LoanPage, error) {
	loans, total, err := s.LoanRepo.ListByCustomer(ctx, customerID, page, size)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return newLoanPage(loans, total, page, size), nil
}

// ListRepayments returns the full repayment history for a loan.
func (s *PawnService) ListRepayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}

	repayments, err := s.RepaymentRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return repayments, nil
}

func (s *PawnService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.PawnLoan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// applyOverdue performs the lazy OVERDUE transition when the loan has slipped
// past its redemption deadline. Idempotent for already-overdue loans.
func (s *PawnService) applyOverdue(ctx context.Context, loan *domain.PawnLoan, now time.Time) error {
	if loan.Status == domain.LoanStatusOverdue {
		return nil
	}
	if domain.IsTerminalStatus(loan.Status) || loan.Status == domain.LoanStatusCreated {
		return nil
	}
	if !loan.IsPastRedemptionDeadline(now) {
		return nil
	}

	priorStatus := loan.Status
	if err := loan.TransitionTo(domain.LoanStatusOverdue, now); err != nil {
		return err
	}

	return s.updateLoanStatus(ctx, loan, priorStatus)
}

func (s *PawnService) updateLoanStatus(ctx context.Context, loan *domain.PawnLoan, expectedStatus string) error {
	err := s.LoanRepo.UpdateStatus(ctx, loan, expectedStatus)
	if err == nil {
		return nil
	}
	if errors.Is(err, customError.ErrConcurrentModification) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

func (s *PawnService) buildLedger(ctx context.Context, loan *domain.PawnLoan, asOf time.Time) (*domain.Ledger, error) {
	currency, err := s.CurrencyRepo.GetByID(ctx, loan.CurrencyID)
	if err != nil {
		return nil, lookupError("currency", err)
	}

	repayments, err := s.RepaymentRepo.ListByLoanID(ctx, loan.ID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return domain.NewLedger(loan, repayments, s.config.PenaltyPolicy(), currency.DecimalPlace, asOf), nil
}

func (s *PawnService) lookupOrCreateCustomer(ctx context.Context, req *domain.OriginateLoanRequest, now time.Time) (*domain.Customer, error) {
	customer, err := s.CustomerRepo.GetByIDNumber(ctx, req.NationalID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if req.CustomerInfo == nil {
		return nil, customError.WrapValidation("customer info is required for a first-time national ID")
	}

	customer = &domain.Customer{
		ID:        uuid.New(),
		FullName:  req.CustomerInfo.FullName,
		Phone:     req.CustomerInfo.Phone,
		IDNumber:  req.NationalID,
		Address:   req.CustomerInfo.Address,
		Status:    domain.CustomerStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CustomerRepo.Create(ctx, customer); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return customer, nil
}

func (s *PawnService) resolveCollateral(ctx context.Context, customer *domain.Customer, info *domain.CollateralInfo, now time.Time) (*domain.PawnItem, error) {
	if info.PawnItemID != nil {
		item, err := s.ItemRepo.GetByID(ctx, *info.PawnItemID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapValidation("referenced pawn item does not exist")
			}
			return nil, customError.WrapDatabaseError(err)
		}
		if item.CustomerID != customer.ID {
			return nil, customError.WrapValidation("pawn item belongs to a different customer")
		}
		if err := s.ItemRepo.UpdateStatus(ctx, item.ID, domain.ItemStatusInPawn); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		item.Status = domain.ItemStatusInPawn
		return item, nil
	}

	item := &domain.PawnItem{
		ID:             uuid.New(),
		CustomerID:     customer.ID,
		ItemType:       info.ItemType,
		Description:    info.Description,
		EstimatedValue: info.EstimatedValue,
		PhotoURL:       info.PhotoURL,
		Status:         domain.ItemStatusInPawn,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ItemRepo.Create(ctx, item); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return item, nil
}

func (s *PawnService) newLoanCode(now time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", s.config.Business.LoanCodePrefix, now.Format("20060102"), short)
}

func validateOrigination(req *domain.OriginateLoanRequest) error {
	if req.NationalID == "" {
		return customError.WrapValidation("national ID is required")
	}
	if !req.LoanTerms.LoanAmount.IsPositive() {
		return customError.WrapValidation("loan amount must be positive")
	}
	if !req.LoanTerms.InterestRate.IsPositive() {
		return customError.WrapValidation("interest rate must be positive")
	}
	if req.LoanTerms.StorageFee.IsNegative() {
		return customError.WrapValidation("storage fee cannot be negative")
	}
	if req.LoanTerms.PenaltyRate.IsNegative() {
		return customError.WrapValidation("penalty rate cannot be negative")
	}
	if req.LoanTerms.GracePeriodDays < 0 {
		return customError.WrapValidation("grace period cannot be negative")
	}
	if req.LoanTerms.DueDate.IsZero() {
		return customError.WrapValidation("due date is required")
	}
	if req.CollateralInfo.PawnItemID == nil {
		if req.CollateralInfo.ItemType == "" || !req.CollateralInfo.EstimatedValue.IsPositive() {
			return customError.WrapValidation("either an existing pawn item or new collateral details must be provided")
		}
	}
	return nil
}

func lookupError(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapValidation(entity + " not found")
	}
	return customError.WrapDatabaseError(err)
}

func newLoanPage(loans []*domain.PawnLoan, total, page, size int) *domain.LoanPage {
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	return &domain.LoanPage{
		Content:       loans,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}
}
