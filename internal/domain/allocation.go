package domain

import (
	"github.com/shopspring/decimal"

	customError "github.com/pawnshop/pawn-engine/pkg/errors"
	"github.com/pawnshop/pawn-engine/pkg/money"
)

// Allocation is the result of splitting one tendered payment across the
// waterfall: penalty first, then interest, then principal.
type Allocation struct {
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	PenaltyPaid        decimal.Decimal `json:"penalty_paid"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	PrincipalPaid      decimal.Decimal `json:"principal_paid"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
}

// AllocatePayment deterministically splits paidAmount across penalty,
// interest, and principal in strict priority order. It is pure: the same
// function backs the read-only preview and the authoritative commit path.
//
// A payment that would zero out the principal is rejected: full settlement
// must go through redemption, which additionally verifies collateral return.
func AllocatePayment(led *Ledger, paidAmount decimal.Decimal) (*Allocation, error) {
	if !paidAmount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(paidAmount.String())
	}

	penaltyDue := led.OutstandingPenalty()
	interestDue := led.OutstandingInterest()
	principalDue := led.OutstandingPrincipal()

	penaltyPaid := money.Min(paidAmount, penaltyDue)
	remainder := paidAmount.Sub(penaltyPaid)

	interestPaid := money.Min(remainder, interestDue)
	remainder = remainder.Sub(interestPaid)

	principalPaid := money.Min(remainder, principalDue)
	remainingPrincipal := principalDue.Sub(principalPaid)
	leftover := remainder.Sub(principalPaid)

	if leftover.IsPositive() {
		return nil, customError.WrapOverpaymentNotAllowed(paidAmount.String(), led.TotalOutstanding().String())
	}

	if remainingPrincipal.IsZero() {
		return nil, customError.WrapUseRedemptionInstead(led.LoanCode)
	}

	alloc := &Allocation{
		PaidAmount:         paidAmount,
		PenaltyPaid:        penaltyPaid,
		InterestPaid:       interestPaid,
		PrincipalPaid:      principalPaid,
		RemainingPrincipal: remainingPrincipal,
	}
	if err := alloc.round(led.DecimalPlace); err != nil {
		return nil, err
	}

	return alloc, nil
}

// AllocateSettlement splits a redemption tender across the waterfall without
// the partial-payment guards: the tendered amount must cover the outstanding
// total exactly, driving remaining principal to zero.
func AllocateSettlement(led *Ledger, paidAmount decimal.Decimal) (*Allocation, error) {
	if paidAmount.IsNegative() {
		return nil, customError.WrapInvalidPaymentAmount(paidAmount.String())
	}

	outstanding := led.TotalOutstanding()
	if !paidAmount.Equal(outstanding) {
		return nil, customError.WrapOutstandingBalanceRemaining(led.LoanCode, outstanding.Sub(paidAmount).String())
	}

	alloc := &Allocation{
		PaidAmount:         paidAmount,
		PenaltyPaid:        led.OutstandingPenalty(),
		InterestPaid:       led.OutstandingInterest(),
		PrincipalPaid:      led.OutstandingPrincipal(),
		RemainingPrincipal: decimal.Zero,
	}
	if err := alloc.round(led.DecimalPlace); err != nil {
		return nil, err
	}

	return alloc, nil
}

func (a *Allocation) round(decimalPlace int) error {
	var err error
	if a.PaidAmount, err = money.Round(a.PaidAmount, decimalPlace); err != nil {
		return err
	}
	if a.PenaltyPaid, err = money.Round(a.PenaltyPaid, decimalPlace); err != nil {
		return err
	}
	if a.InterestPaid, err = money.Round(a.InterestPaid, decimalPlace); err != nil {
		return err
	}
	if a.PrincipalPaid, err = money.Round(a.PrincipalPaid, decimalPlace); err != nil {
		return err
	}
	a.RemainingPrincipal, err = money.Round(a.RemainingPrincipal, decimalPlace)
	return err
}
