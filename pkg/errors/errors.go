package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound                = errors.New("loan not found")
	ErrValidation                  = errors.New("validation failed")
	ErrInvalidAmount               = errors.New("invalid amount")
	ErrInvalidPaymentAmount        = errors.New("invalid payment amount")
	ErrOverpaymentNotAllowed       = errors.New("payment exceeds total outstanding balance")
	ErrUseRedemptionInstead        = errors.New("full settlement must go through redemption")
	ErrInvalidStateTransition      = errors.New("invalid loan state transition")
	ErrOutstandingBalanceRemaining = errors.New("outstanding balance remaining")
	ErrItemNotVerified             = errors.New("item condition not verified")
	ErrDuplicateActiveLoan         = errors.New("collateral item already secures an active loan")
	ErrConcurrentModification      = errors.New("loan is being modified by another operation")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound                = "LOAN_NOT_FOUND"
	ErrCodeValidation                  = "VALIDATION_ERROR"
	ErrCodeInvalidAmount               = "INVALID_AMOUNT"
	ErrCodeInvalidPaymentAmount        = "INVALID_PAYMENT_AMOUNT"
	ErrCodeOverpaymentNotAllowed       = "OVERPAYMENT_NOT_ALLOWED"
	ErrCodeUseRedemptionInstead        = "USE_REDEMPTION_INSTEAD"
	ErrCodeInvalidStateTransition      = "INVALID_STATE_TRANSITION"
	ErrCodeOutstandingBalanceRemaining = "OUTSTANDING_BALANCE_REMAINING"
	ErrCodeItemNotVerified             = "ITEM_NOT_VERIFIED"
	ErrCodeDuplicateActiveLoan         = "DUPLICATE_ACTIVE_LOAN"
	ErrCodeConcurrentModification      = "CONCURRENT_MODIFICATION"
	ErrCodePersistence                 = "PERSISTENCE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapInvalidAmount(message string) *BusinessError {
	return NewBusinessError(ErrCodeInvalidAmount, message, ErrInvalidAmount)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Payment amount must be greater than zero, got %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapOverpaymentNotAllowed(paid, due string) *BusinessError {
	return NewBusinessError(
		ErrCodeOverpaymentNotAllowed,
		fmt.Sprintf("Payment %s exceeds total outstanding %s", paid, due),
		ErrOverpaymentNotAllowed,
	)
}

func WrapUseRedemptionInstead(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUseRedemptionInstead,
		fmt.Sprintf("Payment would settle loan %s in full; use redemption instead", loanID),
		ErrUseRedemptionInstead,
	)
}

func WrapInvalidStateTransition(loanID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStateTransition,
		fmt.Sprintf("Loan %s cannot move from %s to %s", loanID, from, to),
		ErrInvalidStateTransition,
	)
}

func WrapOutstandingBalanceRemaining(loanID, outstanding string) *BusinessError {
	return NewBusinessError(
		ErrCodeOutstandingBalanceRemaining,
		fmt.Sprintf("Loan %s still has %s outstanding", loanID, outstanding),
		ErrOutstandingBalanceRemaining,
	)
}

func WrapItemNotVerified(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeItemNotVerified,
		fmt.Sprintf("Collateral condition for loan %s has not been verified", loanID),
		ErrItemNotVerified,
	)
}

func WrapDuplicateActiveLoan(itemID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateActiveLoan,
		fmt.Sprintf("Pawn item %s already secures an active loan", itemID),
		ErrDuplicateActiveLoan,
	)
}

func WrapConcurrentModification(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentModification,
		fmt.Sprintf("Loan %s is locked by another operation, retry later", loanID),
		ErrConcurrentModification,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistence,
		"database operation failed",
		err,
	)
}
