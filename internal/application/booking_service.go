package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autorentar/service-booking/internal/auth"
	"github.com/autorentar/service-booking/internal/domain"
	"github.com/autorentar/service-booking/internal/domain/booking"
	"github.com/autorentar/service-booking/internal/events"
	"github.com/autorentar/service-booking/internal/kafka"
)

// EventPublisher is the slice of the Kafka producer the service uses.
type EventPublisher interface {
	PublishEventWithKey(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingService coordinates the booking lifecycle: creation, status
// transitions, eligibility checks and event publication.
type BookingService struct {
	repo      booking.BookingRepository
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a BookingService.
func NewBookingService(repo booking.BookingRepository, publisher EventPublisher, logger *zap.Logger) *BookingService {
	return &BookingService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBookingInput carries the fields needed to open a booking request.
type CreateBookingInput struct {
	RenterID         uuid.UUID
	OwnerID          uuid.UUID
	Vehicle          booking.VehicleSnapshot
	StartAt          time.Time
	EndAt            time.Time
	NightlyRateCents int64
	TotalAmountCents int64
	Currency         string
	Notes            string
}

// CreateBooking opens a new booking request in status pending.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	if input.RenterID == input.OwnerID {
		return nil, domain.NewValidationError("renter cannot book their own vehicle")
	}

	b, err := booking.NewBooking(
		input.RenterID,
		input.OwnerID,
		input.Vehicle,
		input.StartAt,
		input.EndAt,
		input.NightlyRateCents,
		input.TotalAmountCents,
		input.Currency,
		input.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeBookingCreated, b.ID().String(), events.BookingCreatedEvent{
		BookingID:     b.ID().String(),
		BookingNumber: b.BookingNumber(),
		RenterID:      b.RenterID().String(),
		OwnerID:       b.OwnerID().String(),
		VehicleID:     b.Vehicle().VehicleID,
		StartAt:       b.StartAt(),
		EndAt:         b.EndAt(),
		TotalCents:    b.TotalAmountCents(),
		Currency:      b.Currency(),
	})

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("booking_number", b.BookingNumber()),
	)
	return b, nil
}

// GetBooking returns a booking visible to the requesting user.
func (s *BookingService) GetBooking(ctx context.Context, id, userID uuid.UUID, role string) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(b, userID, role); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookingByNumber returns a booking by its booking number, subject to the
// same visibility rules as GetBooking.
func (s *BookingService) GetBookingByNumber(ctx context.Context, number string, userID uuid.UUID, role string) (*booking.Booking, error) {
	b, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(b, userID, role); err != nil {
		return nil, err
	}
	return b, nil
}

func authorizeView(b *booking.Booking, userID uuid.UUID, role string) error {
	if role == auth.RoleAdmin || b.RenterID() == userID || b.OwnerID() == userID {
		return nil
	}
	return domain.NewForbiddenError("booking belongs to another user")
}

// ListRenterBookings returns a renter's bookings, newest first.
func (s *BookingService) ListRenterBookings(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	return s.repo.FindByRenterID(ctx, renterID, page, limit)
}

// ListOwnerBookings returns a vehicle owner's bookings, newest first.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	return s.repo.FindByOwnerID(ctx, ownerID, page, limit)
}

// ListAllBookings returns all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]*booking.Booking, int64, error) {
	return s.repo.ListAll(ctx, page, limit)
}

// BookingStats returns booking counts per status (admin).
func (s *BookingService) BookingStats(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByStatus(ctx)
}

// ConfirmFromPayment confirms a booking after its payment was approved. Called
// by the payment event consumer.
func (s *BookingService) ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID, paymentMethod string, depositCents, walletCents, cardCents int64) error {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	from := b.Status()
	if err := b.Confirm(booking.PaymentMethod(paymentMethod), depositCents, walletCents, cardCents); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}

	s.publishStatusChanged(ctx, b, from, "")
	s.publishEvent(ctx, events.TypeBookingConfirmed, b.ID().String(), events.BookingConfirmedEvent{
		BookingID:         b.ID().String(),
		BookingNumber:     b.BookingNumber(),
		RenterID:          b.RenterID().String(),
		OwnerID:           b.OwnerID().String(),
		PaymentMethod:     string(b.PaymentMethod()),
		DepositCents:      b.DepositCents(),
		WalletAmountCents: b.WalletAmountCents(),
		CardAmountCents:   b.CardAmountCents(),
	})
	return nil
}

// FailPayment marks a booking's payment as failed validation. Called by the
// payment event consumer.
func (s *BookingService) FailPayment(ctx context.Context, bookingID uuid.UUID, reason string) error {
	return s.transition(ctx, bookingID, reason, func(b *booking.Booking) error {
		return b.FailPaymentValidation()
	})
}

// CheckIn starts the rental after verifying the check-in window.
func (s *BookingService) CheckIn(ctx context.Context, bookingID, renterID uuid.UUID) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID() != renterID {
		return nil, domain.NewForbiddenError("only the renter can check in")
	}

	check := booking.CanCheckIn(b, s.now())
	if !check.Allowed {
		return nil, domain.NewInvalidStateErrorWithReason(check.Reason)
	}

	from := b.Status()
	if err := b.Start(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publishStatusChanged(ctx, b, from, "")
	return b, nil
}

// CheckOut hands the vehicle back after verifying the check-out window.
func (s *BookingService) CheckOut(ctx context.Context, bookingID, renterID uuid.UUID) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID() != renterID {
		return nil, domain.NewForbiddenError("only the renter can check out")
	}

	check := booking.CanCheckOut(b, s.now())
	if !check.Allowed {
		return nil, domain.NewInvalidStateErrorWithReason(check.Reason)
	}

	from := b.Status()
	if err := b.Return(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publishStatusChanged(ctx, b, from, "")
	return b, nil
}

// MarkInspectedGood records a clean post-return inspection by the owner.
func (s *BookingService) MarkInspectedGood(ctx context.Context, bookingID, ownerID uuid.UUID) (*booking.Booking, error) {
	return s.ownerTransition(ctx, bookingID, ownerID, "", func(b *booking.Booking) error {
		return b.MarkInspectedGood()
	})
}

// ReportDamage flags a returned vehicle as damaged.
func (s *BookingService) ReportDamage(ctx context.Context, bookingID, ownerID uuid.UUID, note string) (*booking.Booking, error) {
	return s.ownerTransition(ctx, bookingID, ownerID, note, func(b *booking.Booking) error {
		return b.ReportDamage()
	})
}

// Reject declines a booking request.
func (s *BookingService) Reject(ctx context.Context, bookingID, ownerID uuid.UUID) (*booking.Booking, error) {
	return s.ownerTransition(ctx, bookingID, ownerID, "", func(b *booking.Booking) error {
		return b.Reject()
	})
}

func (s *BookingService) ownerTransition(ctx context.Context, bookingID, ownerID uuid.UUID, reason string, apply func(*booking.Booking) error) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID() != ownerID {
		return nil, domain.NewForbiddenError("only the vehicle owner can perform this action")
	}

	from := b.Status()
	if err := apply(b); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publishStatusChanged(ctx, b, from, reason)
	return b, nil
}

// Dispute opens a dispute on a booking. Either party may dispute.
func (s *BookingService) Dispute(ctx context.Context, bookingID, userID uuid.UUID) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID() != userID && b.OwnerID() != userID {
		return nil, domain.NewForbiddenError("booking belongs to another user")
	}

	from := b.Status()
	if err := b.Dispute(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publishStatusChanged(ctx, b, from, "")
	return b, nil
}

// Resolve closes an open dispute (admin only, enforced at the handler).
func (s *BookingService) Resolve(ctx context.Context, bookingID uuid.UUID, note string) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := b.Status()
	if err := b.Resolve(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publishStatusChanged(ctx, b, from, note)
	return b, nil
}

// Complete finalizes a booking.
func (s *BookingService) Complete(ctx context.Context, bookingID uuid.UUID) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := b.Status()
	if err := b.Complete(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, b, from, "")
	s.publishEvent(ctx, events.TypeBookingCompleted, b.ID().String(), events.BookingStatusChangedEvent{
		BookingID:     b.ID().String(),
		BookingNumber: b.BookingNumber(),
		RenterID:      b.RenterID().String(),
		OwnerID:       b.OwnerID().String(),
		FromStatus:    from.String(),
		ToStatus:      b.Status().String(),
	})
	return b, nil
}

// Cancel cancels a booking. The cancellation variant depends on who asks:
// renters and owners get their attributed variant, admins cancel as system.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID uuid.UUID, role, reason string) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var variant booking.BookingStatus
	switch {
	case role == auth.RoleAdmin:
		variant = booking.StatusCancelledSystem
	case b.RenterID() == userID:
		variant = booking.StatusCancelledRenter
	case b.OwnerID() == userID:
		variant = booking.StatusCancelledOwner
	default:
		return nil, domain.NewForbiddenError("booking belongs to another user")
	}

	from := b.Status()
	if err := b.Cancel(variant, reason); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, b, from, reason)
	s.publishEvent(ctx, events.TypeBookingCancelled, b.ID().String(), events.BookingStatusChangedEvent{
		BookingID:     b.ID().String(),
		BookingNumber: b.BookingNumber(),
		RenterID:      b.RenterID().String(),
		OwnerID:       b.OwnerID().String(),
		FromStatus:    from.String(),
		ToStatus:      b.Status().String(),
		Reason:        reason,
	})
	return b, nil
}

// ExpireStaleBookings expires unpaid bookings older than the cutoff and
// returns how many were expired. Called by the background job.
func (s *BookingService) ExpireStaleBookings(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	stale, err := s.repo.FindStaleUnpaid(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		from := b.Status()
		if err := b.Expire(); err != nil {
			s.logger.Warn("skipping booking that cannot expire",
				zap.String("booking_id", b.ID().String()),
				zap.Error(err),
			)
			continue
		}
		if err := s.repo.Update(ctx, b); err != nil {
			s.logger.Error("failed to persist booking expiry",
				zap.String("booking_id", b.ID().String()),
				zap.Error(err),
			)
			continue
		}

		s.publishStatusChanged(ctx, b, from, "payment window elapsed")
		s.publishEvent(ctx, events.TypeBookingExpired, b.ID().String(), events.BookingStatusChangedEvent{
			BookingID:     b.ID().String(),
			BookingNumber: b.BookingNumber(),
			RenterID:      b.RenterID().String(),
			OwnerID:       b.OwnerID().String(),
			FromStatus:    from.String(),
			ToStatus:      b.Status().String(),
			Reason:        "payment window elapsed",
		})
		expired++
	}
	return expired, nil
}

// BookingEligibility bundles the three action checks for one booking.
type BookingEligibility struct {
	CheckIn  booking.ActionCheck `json:"check_in"`
	CheckOut booking.ActionCheck `json:"check_out"`
	Review   booking.ReviewCheck `json:"review"`
}

// Eligibility reports what the renter can currently do with a booking.
func (s *BookingService) Eligibility(ctx context.Context, bookingID, userID uuid.UUID, role string) (*BookingEligibility, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(b, userID, role); err != nil {
		return nil, err
	}

	now := s.now()
	return &BookingEligibility{
		CheckIn:  booking.CanCheckIn(b, now),
		CheckOut: booking.CanCheckOut(b, now),
		Review:   booking.CanLeaveReview(b, b.CompletedAt(), now),
	}, nil
}

// transition loads a booking, applies a status change and persists it.
func (s *BookingService) transition(ctx context.Context, bookingID uuid.UUID, reason string, apply func(*booking.Booking) error) error {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	from := b.Status()
	if err := apply(b); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}
	s.publishStatusChanged(ctx, b, from, reason)
	return nil
}

func (s *BookingService) publishStatusChanged(ctx context.Context, b *booking.Booking, from booking.BookingStatus, reason string) {
	s.publishEvent(ctx, events.TypeBookingStatusChanged, b.ID().String(), events.BookingStatusChangedEvent{
		BookingID:     b.ID().String(),
		BookingNumber: b.BookingNumber(),
		RenterID:      b.RenterID().String(),
		OwnerID:       b.OwnerID().String(),
		FromStatus:    from.String(),
		ToStatus:      b.Status().String(),
		Reason:        reason,
	})
}

// publishEvent publishes best-effort: a Kafka outage must not fail the
// user-facing operation.
func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, payload interface{}) {
	if s.publisher == nil {
		return
	}

	event, err := kafka.NewCloudEvent(events.EventSource, eventType, payload)
	if err != nil {
		s.logger.Error("failed to build event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.PublishEventWithKey(ctx, events.TopicBookingEvents, key, event); err != nil {
		s.logger.Error(fmt.Sprintf("failed to publish %s", eventType), zap.Error(err))
	}
}
