package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bookingWithStart rebuilds a booking with a fixed start instant and status.
func bookingWithStart(t *testing.T, status BookingStatus, startAt time.Time) *Booking {
	t.Helper()
	b := bookingInStatus(t, status)
	return ReconstructBooking(
		b.ID(), b.BookingNumber(), b.RenterID(), b.OwnerID(), status, b.Vehicle(),
		startAt, startAt.Add(72*time.Hour), b.Currency(),
		b.NightlyRateCents(), b.TotalAmountCents(),
		0, 0, 0, "",
		nil, nil, nil, nil, nil, "", "",
		1, b.CreatedAt(), b.UpdatedAt(),
	)
}

func TestCanCheckInWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	b := bookingWithStart(t, StatusConfirmed, start)

	// Too early: more than 2h before start.
	check := CanCheckIn(b, start.Add(-3*time.Hour))
	assert.False(t, check.Allowed)
	assert.Contains(t, check.Reason, "2 hours before")

	// Window opens exactly 2h before.
	assert.True(t, CanCheckIn(b, start.Add(-2*time.Hour)).Allowed)
	assert.True(t, CanCheckIn(b, start).Allowed)

	// No upper bound: late check-in is still allowed.
	assert.True(t, CanCheckIn(b, start.Add(30*24*time.Hour)).Allowed)
}

func TestCanCheckInRequiresConfirmed(t *testing.T) {
	start := time.Now().Add(time.Hour)
	for _, status := range []BookingStatus{
		StatusPending, StatusPendingPayment, StatusInProgress, StatusCompleted, StatusCancelled,
	} {
		b := bookingWithStart(t, status, start)
		check := CanCheckIn(b, start)
		assert.False(t, check.Allowed, "status %s should block check-in", status)
		assert.Contains(t, check.Reason, string(status))
	}
}

func TestCanCheckOutStatuses(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	now := start.Add(time.Hour)

	for _, status := range []BookingStatus{
		StatusInProgress, StatusConfirmed, StatusPendingReview, StatusCompleted,
	} {
		b := bookingWithStart(t, status, start)
		assert.True(t, CanCheckOut(b, now).Allowed, "status %s should allow check-out", status)
	}

	for _, status := range []BookingStatus{
		StatusPending, StatusReturned, StatusDisputed, StatusCancelled,
	} {
		b := bookingWithStart(t, status, start)
		check := CanCheckOut(b, now)
		assert.False(t, check.Allowed, "status %s should block check-out", status)
		assert.Contains(t, check.Reason, string(status))
	}
}

func TestCanCheckOutNotBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	b := bookingWithStart(t, StatusInProgress, start)

	check := CanCheckOut(b, start.Add(-time.Minute))
	assert.False(t, check.Allowed)
	assert.Contains(t, check.Reason, "after the rental has started")

	assert.True(t, CanCheckOut(b, start).Allowed)
}

func TestCanLeaveReviewRequiresCompleted(t *testing.T) {
	b := bookingInStatus(t, StatusInProgress)
	check := CanLeaveReview(b, nil, time.Now())
	assert.False(t, check.Allowed)
	assert.Contains(t, check.Reason, "completed bookings")
}

func TestCanLeaveReviewWindow(t *testing.T) {
	completed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := bookingInStatus(t, StatusCompleted)

	// Same day: 14 days remain.
	check := CanLeaveReview(b, &completed, completed.Add(2*time.Hour))
	require.True(t, check.Allowed)
	assert.Equal(t, 14, check.DaysRemaining)

	// Day 10: 4 days remain.
	check = CanLeaveReview(b, &completed, completed.Add(10*24*time.Hour))
	require.True(t, check.Allowed)
	assert.Equal(t, 4, check.DaysRemaining)

	// Exactly day 14 (floor): still open with zero days remaining.
	check = CanLeaveReview(b, &completed, completed.Add(14*24*time.Hour+time.Hour))
	require.True(t, check.Allowed)
	assert.Equal(t, 0, check.DaysRemaining)

	// Day 15: closed.
	check = CanLeaveReview(b, &completed, completed.Add(15*24*time.Hour))
	assert.False(t, check.Allowed)
	assert.Equal(t, 0, check.DaysRemaining)
	assert.Contains(t, check.Reason, "14 days")
}

func TestCanLeaveReviewFallsBackToBookingTimestamps(t *testing.T) {
	b := bookingInStatus(t, StatusCompleted)

	// No explicit completedAt and no CompletedAt on the aggregate: UpdatedAt
	// is the fallback, which is recent, so the window is open.
	check := CanLeaveReview(b, nil, time.Now())
	assert.True(t, check.Allowed)
	assert.Equal(t, 14, check.DaysRemaining)
}
