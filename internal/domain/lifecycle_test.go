package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	customError "github.com/pawnshop/pawn-engine/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{LoanStatusCreated, LoanStatusActive, true},
		{LoanStatusCreated, LoanStatusCancelled, true},
		{LoanStatusCreated, LoanStatusRedeemed, false},
		{LoanStatusActive, LoanStatusPartiallyPaid, true},
		{LoanStatusActive, LoanStatusOverdue, true},
		{LoanStatusActive, LoanStatusRedeemed, true},
		{LoanStatusActive, LoanStatusDefaulted, true},
		{LoanStatusActive, LoanStatusCancelled, false},
		{LoanStatusPartiallyPaid, LoanStatusPartiallyPaid, true},
		{LoanStatusPartiallyPaid, LoanStatusRedeemed, true},
		{LoanStatusOverdue, LoanStatusPartiallyPaid, true},
		{LoanStatusOverdue, LoanStatusDefaulted, true},
		{LoanStatusRedeemed, LoanStatusDefaulted, false},
		{LoanStatusDefaulted, LoanStatusRedeemed, false},
		{LoanStatusCancelled, LoanStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(LoanStatusRedeemed))
	assert.True(t, IsTerminalStatus(LoanStatusDefaulted))
	assert.True(t, IsTerminalStatus(LoanStatusCancelled))
	assert.False(t, IsTerminalStatus(LoanStatusActive))
	assert.False(t, IsTerminalStatus(LoanStatusOverdue))
	assert.False(t, IsTerminalStatus(LoanStatusPartiallyPaid))
}

func TestTransitionToStampsTimestampsOnce(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	loan := &PawnLoan{LoanCode: "PWN-3", Status: LoanStatusActive}

	err := loan.TransitionTo(LoanStatusOverdue, now)
	assert.NoError(t, err)
	assert.Equal(t, LoanStatusOverdue, loan.Status)
	assert.NotNil(t, loan.OverdueAt)
	assert.Equal(t, now, *loan.OverdueAt)

	// Re-checking an already-overdue loan is a no-op, not an error.
	later := now.Add(24 * time.Hour)
	err = loan.TransitionTo(LoanStatusOverdue, later)
	assert.NoError(t, err)
	assert.Equal(t, now, *loan.OverdueAt)
	assert.Equal(t, LoanStatusOverdue, loan.Status)
}

func TestTransitionToTerminalIsFinal(t *testing.T) {
	now := time.Now()
	loan := &PawnLoan{LoanCode: "PWN-4", Status: LoanStatusOverdue}

	assert.NoError(t, loan.TransitionTo(LoanStatusDefaulted, now))
	assert.NotNil(t, loan.DefaultedAt)

	err := loan.TransitionTo(LoanStatusDefaulted, now)
	assert.ErrorIs(t, err, customError.ErrInvalidStateTransition)

	err = loan.TransitionTo(LoanStatusRedeemed, now)
	assert.ErrorIs(t, err, customError.ErrInvalidStateTransition)
}

func TestTransitionToIllegalMoveLeavesLoanUnchanged(t *testing.T) {
	loan := &PawnLoan{LoanCode: "PWN-5", Status: LoanStatusActive}

	err := loan.TransitionTo(LoanStatusCancelled, time.Now())
	assert.ErrorIs(t, err, customError.ErrInvalidStateTransition)
	assert.Equal(t, LoanStatusActive, loan.Status)
}

func TestIsPastRedemptionDeadline(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	loan := &PawnLoan{RedemptionDeadline: deadline}

	assert.False(t, loan.IsPastRedemptionDeadline(deadline))
	assert.False(t, loan.IsPastRedemptionDeadline(deadline.Add(-time.Hour)))
	assert.True(t, loan.IsPastRedemptionDeadline(deadline.Add(time.Hour)))
}
