package booking

import (
	"fmt"
	"math"
	"time"
)

// Check-in opens this long before the rental start. There is deliberately no
// upper bound: product allows late check-ins for delayed hand-overs.
const checkInEarlyWindow = 2 * time.Hour

// Reviews close this many days after completion.
const reviewWindowDays = 14

// ActionCheck is the result of an eligibility predicate. Like TransitionCheck,
// a denial is a value, never an error.
type ActionCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ReviewCheck extends ActionCheck with the days left in the review window.
type ReviewCheck struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason,omitempty"`
	DaysRemaining int    `json:"days_remaining"`
}

// CanCheckIn reports whether the renter may check in at the given instant.
// The booking must be confirmed and the check-in window (start - 2h) open.
func CanCheckIn(b *Booking, now time.Time) ActionCheck {
	if b.Status() != StatusConfirmed {
		return ActionCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("check-in is only available for confirmed bookings; current status: %s", b.Status()),
		}
	}

	if now.Before(b.StartAt().Add(-checkInEarlyWindow)) {
		return ActionCheck{
			Allowed: false,
			Reason:  "check-in opens 2 hours before the rental start",
		}
	}

	return ActionCheck{Allowed: true}
}

// checkOutStatuses are the statuses in which a trip could plausibly be active.
// Deliberately permissive: the authoritative gate is the completed inspections,
// which live outside this package.
var checkOutStatuses = []BookingStatus{
	StatusInProgress,
	StatusConfirmed,
	StatusPendingReview,
	StatusCompleted,
}

// CanCheckOut reports whether the renter may check out at the given instant.
func CanCheckOut(b *Booking, now time.Time) ActionCheck {
	active := false
	for _, s := range checkOutStatuses {
		if b.Status() == s {
			active = true
			break
		}
	}
	if !active {
		return ActionCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("check-out is not available for bookings in status: %s", b.Status()),
		}
	}

	if now.Before(b.StartAt()) {
		return ActionCheck{
			Allowed: false,
			Reason:  "check-out is only available after the rental has started",
		}
	}

	return ActionCheck{Allowed: true}
}

// CanLeaveReview reports whether a review may still be left for the booking.
// completedAt overrides the booking's own completion timestamp when provided;
// the booking's UpdatedAt is the fallback of last resort.
func CanLeaveReview(b *Booking, completedAt *time.Time, now time.Time) ReviewCheck {
	if b.Status() != StatusCompleted {
		return ReviewCheck{
			Allowed: false,
			Reason:  "reviews can only be left for completed bookings",
		}
	}

	completed := completedAt
	if completed == nil {
		completed = b.CompletedAt()
	}
	if completed == nil {
		updated := b.UpdatedAt()
		if updated.IsZero() {
			return ReviewCheck{
				Allowed: false,
				Reason:  "completion date could not be determined",
			}
		}
		completed = &updated
	}

	daysSinceCompleted := int(math.Floor(now.Sub(*completed).Hours() / 24))
	daysRemaining := reviewWindowDays - daysSinceCompleted
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	if daysSinceCompleted > reviewWindowDays {
		return ReviewCheck{
			Allowed:       false,
			Reason:        fmt.Sprintf("the review window closed %d days after completion", reviewWindowDays),
			DaysRemaining: 0,
		}
	}

	return ReviewCheck{Allowed: true, DaysRemaining: daysRemaining}
}
