package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autorentar/service-booking/internal/auth"
	"github.com/autorentar/service-booking/internal/domain"
	"github.com/autorentar/service-booking/internal/domain/booking"
	"github.com/autorentar/service-booking/internal/events"
)

func newTestService(t *testing.T) (*BookingService, *fakeBookingRepo, *fakePublisher) {
	t.Helper()
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	service := NewBookingService(repo, publisher, zap.NewNop())
	return service, repo, publisher
}

func validInput(startIn time.Duration) CreateBookingInput {
	start := time.Now().Add(startIn)
	return CreateBookingInput{
		RenterID: uuid.New(),
		OwnerID:  uuid.New(),
		Vehicle: booking.VehicleSnapshot{
			VehicleID:        "veh-1",
			Title:            "Fiat Cronos 2023",
			ValueUsd:         14_000,
			NightlyRateCents: 3_500,
		},
		StartAt:          start,
		EndAt:            start.Add(72 * time.Hour),
		NightlyRateCents: 3_500,
		TotalAmountCents: 10_500,
		Currency:         "USD",
	}
}

func TestCreateBooking(t *testing.T) {
	service, repo, publisher := newTestService(t)

	b, err := service.CreateBooking(context.Background(), validInput(48*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, booking.StatusPending, b.Status())
	assert.Contains(t, repo.bookings, b.ID())
	assert.Equal(t, []string{events.TypeBookingCreated}, publisher.eventTypes())
}

func TestCreateBookingRejectsSelfBooking(t *testing.T) {
	service, _, _ := newTestService(t)

	input := validInput(48 * time.Hour)
	input.OwnerID = input.RenterID

	_, err := service.CreateBooking(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestGetBookingAuthorization(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)

	// Renter, owner and admin can see it.
	_, err = service.GetBooking(ctx, b.ID(), b.RenterID(), auth.RoleRenter)
	assert.NoError(t, err)
	_, err = service.GetBooking(ctx, b.ID(), b.OwnerID(), auth.RoleOwner)
	assert.NoError(t, err)
	_, err = service.GetBooking(ctx, b.ID(), uuid.New(), auth.RoleAdmin)
	assert.NoError(t, err)

	// A stranger cannot.
	_, err = service.GetBooking(ctx, b.ID(), uuid.New(), auth.RoleRenter)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestConfirmFromPayment(t *testing.T) {
	service, _, publisher := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)

	err = service.ConfirmFromPayment(ctx, b.ID(), "credit_card", 80_000, 0, 10_500)
	require.NoError(t, err)

	assert.Equal(t, booking.StatusConfirmed, b.Status())
	assert.Equal(t, booking.PaymentMethodCreditCard, b.PaymentMethod())
	assert.Equal(t, int64(80_000), b.DepositCents())
	assert.Contains(t, publisher.eventTypes(), events.TypeBookingStatusChanged)
	assert.Contains(t, publisher.eventTypes(), events.TypeBookingConfirmed)
}

func TestFailPayment(t *testing.T) {
	service, repo, _ := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)

	// pending cannot fail payment validation; move it into the payment window
	// the way the repository would hand it back.
	repo.bookings[b.ID()] = reconstructInStatus(b, booking.StatusPendingPayment)

	require.NoError(t, service.FailPayment(ctx, b.ID(), "card declined"))
	assert.Equal(t, booking.StatusPaymentValidationFailed, repo.bookings[b.ID()].Status())
}

func TestCheckInEnforcesWindowAndOwnership(t *testing.T) {
	service, repo, _ := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, service.ConfirmFromPayment(ctx, b.ID(), "credit_card", 0, 0, 10_500))

	// Too early: the window opens 2h before start.
	service.now = func() time.Time { return b.StartAt().Add(-3 * time.Hour) }
	_, err = service.CheckIn(ctx, b.ID(), b.RenterID())
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

	// Someone else cannot check in even inside the window.
	service.now = func() time.Time { return b.StartAt() }
	_, err = service.CheckIn(ctx, b.ID(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// The renter inside the window can.
	got, err := service.CheckIn(ctx, b.ID(), b.RenterID())
	require.NoError(t, err)
	assert.Equal(t, booking.StatusInProgress, got.Status())
	assert.Equal(t, booking.StatusInProgress, repo.bookings[b.ID()].Status())
}

func TestCheckOutMovesToReturned(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, service.ConfirmFromPayment(ctx, b.ID(), "credit_card", 0, 0, 10_500))

	service.now = func() time.Time { return b.StartAt() }
	_, err = service.CheckIn(ctx, b.ID(), b.RenterID())
	require.NoError(t, err)

	service.now = func() time.Time { return b.StartAt().Add(72 * time.Hour) }
	got, err := service.CheckOut(ctx, b.ID(), b.RenterID())
	require.NoError(t, err)
	assert.Equal(t, booking.StatusReturned, got.Status())
}

func TestInspectionRequiresOwner(t *testing.T) {
	service, repo, _ := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)
	repo.bookings[b.ID()] = reconstructInStatus(b, booking.StatusReturned)

	_, err = service.MarkInspectedGood(ctx, b.ID(), b.RenterID())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	got, err := service.MarkInspectedGood(ctx, b.ID(), b.OwnerID())
	require.NoError(t, err)
	assert.Equal(t, booking.StatusInspectedGood, got.Status())
}

func TestCancelVariantsByActor(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		asAdmin bool
		byOwner bool
		want    booking.BookingStatus
	}{
		{"renter", false, false, booking.StatusCancelledRenter},
		{"owner", false, true, booking.StatusCancelledOwner},
		{"admin", true, false, booking.StatusCancelledSystem},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, _, publisher := newTestService(t)
			b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
			require.NoError(t, err)

			userID := b.RenterID()
			role := auth.RoleRenter
			if tc.byOwner {
				userID = b.OwnerID()
				role = auth.RoleOwner
			}
			if tc.asAdmin {
				userID = uuid.New()
				role = auth.RoleAdmin
			}

			got, err := service.Cancel(ctx, b.ID(), userID, role, "weather")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Status())
			assert.Equal(t, "weather", got.CancelNote())
			assert.Contains(t, publisher.eventTypes(), events.TypeBookingCancelled)
		})
	}
}

func TestCancelByStrangerForbidden(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)

	_, err = service.Cancel(ctx, b.ID(), uuid.New(), auth.RoleRenter, "nope")
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestExpireStaleBookings(t *testing.T) {
	service, repo, publisher := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(72*time.Hour))
	require.NoError(t, err)

	// A confirmed booking must never be expired by the job.
	confirmed, err := service.CreateBooking(ctx, validInput(72*time.Hour))
	require.NoError(t, err)
	require.NoError(t, service.ConfirmFromPayment(ctx, confirmed.ID(), "wallet", 0, 10_500, 0))

	expired, err := service.ExpireStaleBookings(ctx, time.Now().Add(time.Hour), 100)
	require.NoError(t, err)

	assert.Equal(t, 1, expired)
	assert.Equal(t, booking.StatusExpired, repo.bookings[b.ID()].Status())
	assert.Equal(t, booking.StatusConfirmed, repo.bookings[confirmed.ID()].Status())
	assert.Contains(t, publisher.eventTypes(), events.TypeBookingExpired)
}

func TestEligibilityBundle(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := service.CreateBooking(ctx, validInput(48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, service.ConfirmFromPayment(ctx, b.ID(), "credit_card", 0, 0, 10_500))

	service.now = func() time.Time { return b.StartAt().Add(-time.Hour) }
	eligibility, err := service.Eligibility(ctx, b.ID(), b.RenterID(), auth.RoleRenter)
	require.NoError(t, err)

	assert.True(t, eligibility.CheckIn.Allowed)
	assert.False(t, eligibility.CheckOut.Allowed, "check-out opens at start")
	assert.False(t, eligibility.Review.Allowed, "reviews need a completed booking")
}

// reconstructInStatus rebuilds a booking in the given status, keeping its
// identity and dates.
func reconstructInStatus(b *booking.Booking, status booking.BookingStatus) *booking.Booking {
	return booking.ReconstructBooking(
		b.ID(), b.BookingNumber(), b.RenterID(), b.OwnerID(), status, b.Vehicle(),
		b.StartAt(), b.EndAt(), b.Currency(),
		b.NightlyRateCents(), b.TotalAmountCents(),
		b.DepositCents(), b.WalletAmountCents(), b.CardAmountCents(), b.PaymentMethod(),
		b.ConfirmedAt(), b.StartedAt(), b.ReturnedAt(), b.CompletedAt(), b.CancelledAt(),
		b.CancelNote(), b.Notes(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}
