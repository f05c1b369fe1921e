package booking

import (
	"fmt"
	"strings"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending                  BookingStatus = "pending"
	StatusPendingPayment           BookingStatus = "pending_payment"
	StatusPendingApproval          BookingStatus = "pending_approval"
	StatusConfirmed                BookingStatus = "confirmed"
	StatusInProgress               BookingStatus = "in_progress"
	StatusPendingReview            BookingStatus = "pending_review"
	StatusDisputed                 BookingStatus = "disputed"
	StatusResolved                 BookingStatus = "resolved"
	StatusCompleted                BookingStatus = "completed"
	StatusCancelled                BookingStatus = "cancelled"
	StatusCancelledRenter          BookingStatus = "cancelled_renter"
	StatusCancelledOwner           BookingStatus = "cancelled_owner"
	StatusCancelledSystem          BookingStatus = "cancelled_system"
	StatusExpired                  BookingStatus = "expired"
	StatusNoShow                   BookingStatus = "no_show"
	StatusRejected                 BookingStatus = "rejected"
	StatusPendingDisputeResolution BookingStatus = "pending_dispute_resolution"
	StatusPaymentValidationFailed  BookingStatus = "payment_validation_failed"
	StatusReturned                 BookingStatus = "returned"
	StatusInspectedGood            BookingStatus = "inspected_good"
	StatusDamageReported           BookingStatus = "damage_reported"
)

// validTransitions defines the state machine for booking status transitions.
// Terminal states map to an empty list: nothing leaves them.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending: {
		StatusConfirmed, StatusCancelled, StatusExpired, StatusRejected,
		StatusCancelledRenter, StatusCancelledOwner, StatusCancelledSystem,
	},
	StatusPendingPayment: {
		StatusConfirmed, StatusCancelled, StatusExpired,
		StatusCancelledRenter, StatusCancelledOwner, StatusCancelledSystem,
		StatusPaymentValidationFailed,
	},
	StatusPendingApproval: {
		StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusRejected,
		StatusCancelledRenter, StatusCancelledOwner, StatusCancelledSystem,
	},
	StatusConfirmed: {
		StatusInProgress, StatusCancelled,
		StatusCancelledRenter, StatusCancelledOwner, StatusCancelledSystem,
	},
	StatusInProgress: {
		StatusPendingReview, StatusCompleted, StatusCancelled,
		StatusCancelledRenter, StatusCancelledOwner, StatusCancelledSystem,
		StatusReturned,
	},
	StatusPendingReview: {
		StatusCompleted, StatusDisputed, StatusCancelled,
		StatusCancelledRenter, StatusCancelledOwner, StatusCancelledSystem,
	},
	StatusDisputed: {StatusResolved, StatusCancelledSystem},
	StatusResolved: {StatusCompleted},
	// pending_dispute_resolution predates the disputed status and only maps into it.
	StatusPendingDisputeResolution: {StatusDisputed},
	StatusPaymentValidationFailed:  {StatusPendingPayment, StatusCancelled, StatusCancelledSystem},
	StatusReturned:                 {StatusInspectedGood, StatusDamageReported, StatusCompleted},
	StatusInspectedGood:            {StatusCompleted},
	StatusDamageReported:           {StatusDisputed, StatusCompleted},
	StatusCompleted:                {},
	StatusCancelled:                {},
	StatusCancelledRenter:          {},
	StatusCancelledOwner:           {},
	StatusCancelledSystem:          {},
	StatusExpired:                  {},
	StatusNoShow:                   {},
	StatusRejected:                 {},
}

// TransitionCheck is the result of validating a status transition. A denied
// transition is an expected outcome, not an error: callers branch on Valid.
type TransitionCheck struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateTransition reports whether a transition from one status to another
// is allowed. When denied, Reason lists the allowed targets ("none" for
// terminal states).
func ValidateTransition(from, to BookingStatus) TransitionCheck {
	allowed, exists := validTransitions[from]
	if exists {
		for _, t := range allowed {
			if t == to {
				return TransitionCheck{Valid: true}
			}
		}
	}

	targets := "none"
	if len(allowed) > 0 {
		names := make([]string, len(allowed))
		for i, t := range allowed {
			names[i] = string(t)
		}
		targets = strings.Join(names, ", ")
	}

	return TransitionCheck{
		Valid:  false,
		Reason: fmt.Sprintf("cannot change status from %q to %q; allowed transitions: %s", from, to, targets),
	}
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return ValidateTransition(s, target).Valid
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsCancelled returns true for any of the cancelled variants.
func (s BookingStatus) IsCancelled() bool {
	switch s {
	case StatusCancelled, StatusCancelledRenter, StatusCancelledOwner, StatusCancelledSystem:
		return true
	}
	return false
}

// CanBeCancelled returns true if the booking can still be cancelled from this status.
func (s BookingStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// AllStatuses returns every recognized booking status. The order is not significant.
func AllStatuses() []BookingStatus {
	statuses := make([]BookingStatus, 0, len(validTransitions))
	for s := range validTransitions {
		statuses = append(statuses, s)
	}
	return statuses
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
