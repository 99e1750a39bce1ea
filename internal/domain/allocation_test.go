package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	customError "github.com/pawnshop/pawn-engine/pkg/errors"
)

func testLedger(loanAmount, totalPayable, accruedPenalty string) *Ledger {
	return &Ledger{
		LoanCode:           "PWN-20260101-TEST",
		LoanAmount:         decimal.RequireFromString(loanAmount),
		TotalPayableAmount: decimal.RequireFromString(totalPayable),
		PrincipalPaid:      decimal.Zero,
		InterestPaid:       decimal.Zero,
		PenaltyPaid:        decimal.Zero,
		AccruedPenalty:     decimal.RequireFromString(accruedPenalty),
		DecimalPlace:       2,
	}
}

func TestAllocatePayment(t *testing.T) {
	tests := []struct {
		name               string
		ledger             *Ledger
		paidAmount         string
		expectedErr        error
		penaltyPaid        string
		interestPaid       string
		principalPaid      string
		remainingPrincipal string
	}{
		{
			// loanAmount=1000, rate=5% monthly, storageFee=0 => payable 1050
			name:               "partial payment covers interest then principal",
			ledger:             testLedger("1000", "1050", "0"),
			paidAmount:         "200",
			penaltyPaid:        "0",
			interestPaid:       "50",
			principalPaid:      "150",
			remainingPrincipal: "850",
		},
		{
			name:               "penalty drains first",
			ledger:             testLedger("1000", "1050", "30"),
			paidAmount:         "100",
			penaltyPaid:        "30",
			interestPaid:       "50",
			principalPaid:      "20",
			remainingPrincipal: "980",
		},
		{
			name:               "small payment absorbed entirely by penalty",
			ledger:             testLedger("1000", "1050", "30"),
			paidAmount:         "10",
			penaltyPaid:        "10",
			interestPaid:       "0",
			principalPaid:      "0",
			remainingPrincipal: "1000",
		},
		{
			name:        "exact full settlement is pushed to redemption",
			ledger:      testLedger("1000", "1050", "0"),
			paidAmount:  "1050",
			expectedErr: customError.ErrUseRedemptionInstead,
		},
		{
			name:        "overpayment beyond settlement rejected",
			ledger:      testLedger("1000", "1050", "0"),
			paidAmount:  "2000",
			expectedErr: customError.ErrOverpaymentNotAllowed,
		},
		{
			name:        "zero payment rejected",
			ledger:      testLedger("1000", "1050", "0"),
			paidAmount:  "0",
			expectedErr: customError.ErrInvalidPaymentAmount,
		},
		{
			name:        "negative payment rejected",
			ledger:      testLedger("1000", "1050", "0"),
			paidAmount:  "-50",
			expectedErr: customError.ErrInvalidPaymentAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := AllocatePayment(tt.ledger, decimal.RequireFromString(tt.paidAmount))

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, alloc)
				return
			}

			assert.NoError(t, err)
			assert.True(t, alloc.PenaltyPaid.Equal(decimal.RequireFromString(tt.penaltyPaid)),
				"penalty paid: expected %s, got %s", tt.penaltyPaid, alloc.PenaltyPaid)
			assert.True(t, alloc.InterestPaid.Equal(decimal.RequireFromString(tt.interestPaid)),
				"interest paid: expected %s, got %s", tt.interestPaid, alloc.InterestPaid)
			assert.True(t, alloc.PrincipalPaid.Equal(decimal.RequireFromString(tt.principalPaid)),
				"principal paid: expected %s, got %s", tt.principalPaid, alloc.PrincipalPaid)
			assert.True(t, alloc.RemainingPrincipal.Equal(decimal.RequireFromString(tt.remainingPrincipal)),
				"remaining principal: expected %s, got %s", tt.remainingPrincipal, alloc.RemainingPrincipal)

			// Allocation conserves money.
			sum := alloc.PenaltyPaid.Add(alloc.InterestPaid).Add(alloc.PrincipalPaid)
			assert.True(t, sum.Equal(alloc.PaidAmount),
				"components %s do not sum to paid amount %s", sum, alloc.PaidAmount)
		})
	}
}

func TestAllocatePaymentWaterfallPriority(t *testing.T) {
	led := testLedger("1000", "1050", "40")

	// 40 penalty + 50 interest due; a 70 payment must fully drain penalty
	// before touching interest, and never reach principal.
	alloc, err := AllocatePayment(led, decimal.NewFromInt(70))
	assert.NoError(t, err)

	assert.True(t, alloc.PenaltyPaid.Equal(decimal.NewFromInt(40)))
	assert.True(t, alloc.InterestPaid.Equal(decimal.NewFromInt(30)))
	assert.True(t, alloc.PrincipalPaid.IsZero())
	assert.True(t, alloc.RemainingPrincipal.Equal(decimal.NewFromInt(1000)))
}

func TestAllocatePaymentAfterPriorRepayments(t *testing.T) {
	led := testLedger("1000", "1050", "0")
	led.InterestPaid = decimal.NewFromInt(50)
	led.PrincipalPaid = decimal.NewFromInt(150)

	// Interest already settled; the whole payment goes to principal.
	alloc, err := AllocatePayment(led, decimal.NewFromInt(100))
	assert.NoError(t, err)

	assert.True(t, alloc.InterestPaid.IsZero())
	assert.True(t, alloc.PrincipalPaid.Equal(decimal.NewFromInt(100)))
	assert.True(t, alloc.RemainingPrincipal.Equal(decimal.NewFromInt(750)))
}

func TestAllocatePaymentSubPrecisionPenaltyAccrual(t *testing.T) {
	// 0.0005%/day on 1000 principal accrues 0.015 over three days, below
	// the 2dp currency precision. The ledger must hand the waterfall a
	// penalty due that is already rounded, or the split components stop
	// summing to the paid amount.
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	loan := &PawnLoan{
		LoanCode:           "PWN-20260201-ROUND01",
		LoanAmount:         decimal.NewFromInt(1000),
		TotalPayableAmount: decimal.NewFromInt(1050),
		PenaltyRate:        decimal.RequireFromString("0.0005"),
		RedemptionDeadline: deadline,
	}

	led := NewLedger(loan, nil, DailyRatePenalty, 2, deadline.AddDate(0, 0, 3))
	assert.True(t, led.AccruedPenalty.Equal(decimal.RequireFromString("0.02")),
		"accrued penalty: expected 0.02, got %s", led.AccruedPenalty)

	alloc, err := AllocatePayment(led, decimal.NewFromInt(100))
	assert.NoError(t, err)

	assert.True(t, alloc.PenaltyPaid.Equal(decimal.RequireFromString("0.02")))
	assert.True(t, alloc.InterestPaid.Equal(decimal.NewFromInt(50)))
	assert.True(t, alloc.PrincipalPaid.Equal(decimal.RequireFromString("49.98")))
	assert.True(t, alloc.RemainingPrincipal.Equal(decimal.RequireFromString("950.02")))

	sum := alloc.PenaltyPaid.Add(alloc.InterestPaid).Add(alloc.PrincipalPaid)
	assert.True(t, sum.Equal(alloc.PaidAmount),
		"components %s do not sum to paid amount %s", sum, alloc.PaidAmount)
}

func TestAllocateSettlement(t *testing.T) {
	t.Run("exact outstanding settles", func(t *testing.T) {
		led := testLedger("1000", "1050", "0")
		led.InterestPaid = decimal.NewFromInt(50)
		led.PrincipalPaid = decimal.NewFromInt(150)

		alloc, err := AllocateSettlement(led, decimal.NewFromInt(850))
		assert.NoError(t, err)
		assert.True(t, alloc.PrincipalPaid.Equal(decimal.NewFromInt(850)))
		assert.True(t, alloc.InterestPaid.IsZero())
		assert.True(t, alloc.RemainingPrincipal.IsZero())
	})

	t.Run("short tender fails", func(t *testing.T) {
		led := testLedger("1000", "1050", "0")

		_, err := AllocateSettlement(led, decimal.NewFromInt(1000))
		assert.ErrorIs(t, err, customError.ErrOutstandingBalanceRemaining)
	})

	t.Run("zero tender on a fully covered ledger settles", func(t *testing.T) {
		led := testLedger("1000", "1050", "0")
		led.InterestPaid = decimal.NewFromInt(50)
		led.PrincipalPaid = decimal.NewFromInt(1000)

		alloc, err := AllocateSettlement(led, decimal.Zero)
		assert.NoError(t, err)
		assert.True(t, alloc.PaidAmount.IsZero())
		assert.True(t, alloc.RemainingPrincipal.IsZero())
	})

	t.Run("negative tender rejected", func(t *testing.T) {
		led := testLedger("1000", "1050", "0")

		_, err := AllocateSettlement(led, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, customError.ErrInvalidPaymentAmount)
	})
}
