package domain

import (
	"time"

	customError "github.com/pawnshop/pawn-engine/pkg/errors"
)

// allowedTransitions is the loan lifecycle table. Terminal statuses
// (REDEEMED, DEFAULTED, CANCELLED) have no outgoing edges.
var allowedTransitions = map[string][]string{
	LoanStatusCreated: {
		LoanStatusActive,
		LoanStatusCancelled,
	},
	LoanStatusActive: {
		LoanStatusPartiallyPaid,
		LoanStatusOverdue,
		LoanStatusRedeemed,
		LoanStatusDefaulted,
	},
	LoanStatusPartiallyPaid: {
		LoanStatusPartiallyPaid,
		LoanStatusOverdue,
		LoanStatusRedeemed,
		LoanStatusDefaulted,
	},
	LoanStatusOverdue: {
		LoanStatusPartiallyPaid,
		LoanStatusRedeemed,
		LoanStatusDefaulted,
	},
}

// IsTerminalStatus reports whether a status permits no further transitions.
func IsTerminalStatus(status string) bool {
	switch status {
	case LoanStatusRedeemed, LoanStatusDefaulted, LoanStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo moves the loan to a new status, stamping overdue/redeemed/
// defaulted timestamps exactly once. Re-entering OVERDUE is a no-op so the
// periodic sweep stays idempotent; any other illegal move fails with
// InvalidStateTransition and leaves the loan unchanged.
func (l *PawnLoan) TransitionTo(status string, at time.Time) error {
	if l.Status == LoanStatusOverdue && status == LoanStatusOverdue {
		return nil
	}

	if !CanTransition(l.Status, status) {
		return customError.WrapInvalidStateTransition(l.LoanCode, l.Status, status)
	}

	l.Status = status
	l.UpdatedAt = at

	switch status {
	case LoanStatusOverdue:
		if l.OverdueAt == nil {
			stamped := at
			l.OverdueAt = &stamped
		}
	case LoanStatusRedeemed:
		if l.RedeemedAt == nil {
			stamped := at
			l.RedeemedAt = &stamped
		}
	case LoanStatusDefaulted:
		if l.DefaultedAt == nil {
			stamped := at
			l.DefaultedAt = &stamped
		}
	}

	return nil
}

// IsPastRedemptionDeadline reports whether the loan has slipped past
// dueDate + gracePeriodDays.
func (l *PawnLoan) IsPastRedemptionDeadline(now time.Time) bool {
	return now.After(l.RedemptionDeadline)
}
