package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotalPayable(t *testing.T) {
	tests := []struct {
		name       string
		loanAmount string
		rate       string
		storageFee string
		expected   string
	}{
		{"flat five percent", "1000", "5", "0", "1050"},
		{"with storage fee", "1000", "5", "25", "1075"},
		{"fractional amounts", "333.33", "10", "0", "366.663"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalPayable(
				decimal.RequireFromString(tt.loanAmount),
				decimal.RequireFromString(tt.rate),
				decimal.RequireFromString(tt.storageFee),
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got)
		})
	}
}

func TestNewLedgerAccumulatesRepayments(t *testing.T) {
	loan := &PawnLoan{
		LoanCode:           "PWN-1",
		LoanAmount:         decimal.NewFromInt(1000),
		TotalPayableAmount: decimal.NewFromInt(1050),
	}
	repayments := []*Repayment{
		{
			PawnLoanID:    uuid.New(),
			PrincipalPaid: decimal.NewFromInt(150),
			InterestPaid:  decimal.NewFromInt(50),
			PenaltyPaid:   decimal.Zero,
		},
		{
			PawnLoanID:    uuid.New(),
			PrincipalPaid: decimal.NewFromInt(100),
			InterestPaid:  decimal.Zero,
			PenaltyPaid:   decimal.NewFromInt(10),
		},
	}

	led := NewLedger(loan, repayments, NoPenalty, 2, time.Now())

	assert.True(t, led.OutstandingPrincipal().Equal(decimal.NewFromInt(750)))
	assert.True(t, led.OutstandingInterest().IsZero())
	assert.True(t, led.OutstandingPenalty().IsZero(), "paid penalty exceeds accrual, clamped to zero")
	assert.True(t, led.TotalOutstanding().Equal(decimal.NewFromInt(750)))
	assert.False(t, led.IsSettled())
}

func TestLedgerOutstandingNeverNegative(t *testing.T) {
	loan := &PawnLoan{
		LoanCode:           "PWN-2",
		LoanAmount:         decimal.NewFromInt(100),
		TotalPayableAmount: decimal.NewFromInt(105),
	}
	repayments := []*Repayment{
		{PrincipalPaid: decimal.NewFromInt(100), InterestPaid: decimal.NewFromInt(5)},
	}

	led := NewLedger(loan, repayments, nil, 2, time.Now())

	assert.True(t, led.OutstandingPrincipal().IsZero())
	assert.True(t, led.OutstandingInterest().IsZero())
	assert.True(t, led.TotalOutstanding().IsZero())
	assert.True(t, led.IsSettled())
}

func TestDailyRatePenalty(t *testing.T) {
	deadline := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := &PawnLoan{
		PenaltyRate:        decimal.NewFromInt(1), // 1% per day
		RedemptionDeadline: deadline,
	}
	outstanding := decimal.NewFromInt(1000)

	t.Run("before deadline accrues nothing", func(t *testing.T) {
		got := DailyRatePenalty(loan, outstanding, deadline.AddDate(0, 0, -1))
		assert.True(t, got.IsZero())
	})

	t.Run("same day accrues nothing", func(t *testing.T) {
		got := DailyRatePenalty(loan, outstanding, deadline)
		assert.True(t, got.IsZero())
	})

	t.Run("three days overdue", func(t *testing.T) {
		got := DailyRatePenalty(loan, outstanding, deadline.AddDate(0, 0, 3))
		assert.True(t, got.Equal(decimal.NewFromInt(30)), "expected 30, got %s", got)
	})
}
