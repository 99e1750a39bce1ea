package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawnshop/pawn-engine/pkg/money"
)

// PenaltyPolicy computes the total penalty accrued on a loan as of a point in
// time. The accrual formula is a configuration decision, not a fixed rule.
type PenaltyPolicy func(loan *PawnLoan, outstandingPrincipal decimal.Decimal, asOf time.Time) decimal.Decimal

// NoPenalty never accrues anything.
func NoPenalty(_ *PawnLoan, _ decimal.Decimal, _ time.Time) decimal.Decimal {
	return decimal.Zero
}

// DailyRatePenalty accrues penaltyRate% of the outstanding principal per day
// past the redemption deadline. Simple, non-compounding.
func DailyRatePenalty(loan *PawnLoan, outstandingPrincipal decimal.Decimal, asOf time.Time) decimal.Decimal {
	if !asOf.After(loan.RedemptionDeadline) {
		return decimal.Zero
	}

	overdueDays := int64(asOf.Sub(loan.RedemptionDeadline).Hours() / 24)
	if overdueDays <= 0 {
		return decimal.Zero
	}

	dailyRate := loan.PenaltyRate.Div(decimal.NewFromInt(100))
	return outstandingPrincipal.Mul(dailyRate).Mul(decimal.NewFromInt(overdueDays))
}

// Ledger holds the authoritative paid/outstanding breakdown for one loan,
// built from the loan row and its full repayment history. Reads have no side
// effects; only the allocation engine committing a repayment mutates the
// underlying rows.
type Ledger struct {
	LoanCode           string
	LoanAmount         decimal.Decimal
	TotalPayableAmount decimal.Decimal
	PrincipalPaid      decimal.Decimal
	InterestPaid       decimal.Decimal
	PenaltyPaid        decimal.Decimal
	AccruedPenalty     decimal.Decimal
	DecimalPlace       int
}

// NewLedger sums the repayment history and accrues penalty via the policy.
func NewLedger(loan *PawnLoan, repayments []*Repayment, policy PenaltyPolicy, decimalPlace int, asOf time.Time) *Ledger {
	led := &Ledger{
		LoanCode:           loan.LoanCode,
		LoanAmount:         loan.LoanAmount,
		TotalPayableAmount: loan.TotalPayableAmount,
		PrincipalPaid:      decimal.Zero,
		InterestPaid:       decimal.Zero,
		PenaltyPaid:        decimal.Zero,
		DecimalPlace:       decimalPlace,
	}

	for _, r := range repayments {
		led.PrincipalPaid = led.PrincipalPaid.Add(r.PrincipalPaid)
		led.InterestPaid = led.InterestPaid.Add(r.InterestPaid)
		led.PenaltyPaid = led.PenaltyPaid.Add(r.PenaltyPaid)
	}

	if policy == nil {
		policy = NoPenalty
	}
	// Accrual is snapped to the currency's precision here; every due the
	// waterfall splits is already representable, so the per-component
	// rounding downstream cannot break the paid-amount sum.
	led.AccruedPenalty = money.MustRound(policy(loan, led.OutstandingPrincipal(), asOf), decimalPlace)

	return led
}

// OutstandingPrincipal is loanAmount minus all principal paid.
func (l *Ledger) OutstandingPrincipal() decimal.Decimal {
	return money.ClampZero(l.LoanAmount.Sub(l.PrincipalPaid))
}

// OutstandingInterest is the interest-plus-fee portion of the payable amount
// minus all interest paid.
func (l *Ledger) OutstandingInterest() decimal.Decimal {
	totalInterest := l.TotalPayableAmount.Sub(l.LoanAmount)
	return money.ClampZero(totalInterest.Sub(l.InterestPaid))
}

// OutstandingPenalty is accrued penalty minus all penalty paid.
func (l *Ledger) OutstandingPenalty() decimal.Decimal {
	return money.ClampZero(l.AccruedPenalty.Sub(l.PenaltyPaid))
}

// TotalOutstanding is the sum of the three components, never negative.
func (l *Ledger) TotalOutstanding() decimal.Decimal {
	return l.OutstandingPenalty().Add(l.OutstandingInterest()).Add(l.OutstandingPrincipal())
}

// IsSettled reports whether nothing remains outstanding.
func (l *Ledger) IsSettled() bool {
	return l.TotalOutstanding().IsZero()
}
