package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/autorentar/service-booking/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the rental booking domain.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	renterID      uuid.UUID
	ownerID       uuid.UUID
	status        BookingStatus
	vehicle       VehicleSnapshot

	startAt time.Time
	endAt   time.Time

	currency          string
	nightlyRateCents  int64
	totalAmountCents  int64
	depositCents      int64
	walletAmountCents int64
	cardAmountCents   int64
	paymentMethod     PaymentMethod

	confirmedAt *time.Time
	startedAt   *time.Time
	returnedAt  *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string
	notes       string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "AR-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "AR-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	renterID uuid.UUID,
	ownerID uuid.UUID,
	vehicle VehicleSnapshot,
	startAt time.Time,
	endAt time.Time,
	nightlyRateCents int64,
	totalAmountCents int64,
	currency string,
	notes string,
) (*Booking, error) {
	if renterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if vehicle.VehicleID == "" {
		return nil, domain.NewValidationError("vehicle is required")
	}
	if !endAt.After(startAt) {
		return nil, domain.NewValidationError("end date must be after start date")
	}
	if totalAmountCents <= 0 {
		return nil, domain.NewValidationError("total amount must be positive")
	}
	if currency != domain.CurrencyUSD && currency != domain.CurrencyARS {
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported currency: %s", currency))
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:               uuid.New(),
		bookingNumber:    bookingNumber,
		renterID:         renterID,
		ownerID:          ownerID,
		status:           StatusPending,
		vehicle:          vehicle,
		startAt:          startAt.UTC(),
		endAt:            endAt.UTC(),
		currency:         currency,
		nightlyRateCents: nightlyRateCents,
		totalAmountCents: totalAmountCents,
		notes:            notes,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	renterID uuid.UUID,
	ownerID uuid.UUID,
	status BookingStatus,
	vehicle VehicleSnapshot,
	startAt time.Time,
	endAt time.Time,
	currency string,
	nightlyRateCents int64,
	totalAmountCents int64,
	depositCents int64,
	walletAmountCents int64,
	cardAmountCents int64,
	paymentMethod PaymentMethod,
	confirmedAt *time.Time,
	startedAt *time.Time,
	returnedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	cancelNote string,
	notes string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		bookingNumber:     bookingNumber,
		renterID:          renterID,
		ownerID:           ownerID,
		status:            status,
		vehicle:           vehicle,
		startAt:           startAt,
		endAt:             endAt,
		currency:          currency,
		nightlyRateCents:  nightlyRateCents,
		totalAmountCents:  totalAmountCents,
		depositCents:      depositCents,
		walletAmountCents: walletAmountCents,
		cardAmountCents:   cardAmountCents,
		paymentMethod:     paymentMethod,
		confirmedAt:       confirmedAt,
		startedAt:         startedAt,
		returnedAt:        returnedAt,
		completedAt:       completedAt,
		cancelledAt:       cancelledAt,
		cancelNote:        cancelNote,
		notes:             notes,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// RenterID returns the renter's user ID.
func (b *Booking) RenterID() uuid.UUID { return b.renterID }

// OwnerID returns the vehicle owner's user ID.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Vehicle returns the vehicle snapshot captured at booking time.
func (b *Booking) Vehicle() VehicleSnapshot { return b.vehicle }

// StartAt returns the rental start instant.
func (b *Booking) StartAt() time.Time { return b.startAt }

// EndAt returns the rental end instant.
func (b *Booking) EndAt() time.Time { return b.endAt }

// Currency returns the booking currency code.
func (b *Booking) Currency() string { return b.currency }

// NightlyRateCents returns the nightly rate in cents.
func (b *Booking) NightlyRateCents() int64 { return b.nightlyRateCents }

// TotalAmountCents returns the rental total in cents (excludes the deposit).
func (b *Booking) TotalAmountCents() int64 { return b.totalAmountCents }

// DepositCents returns the deposit charged for this booking, in cents.
func (b *Booking) DepositCents() int64 { return b.depositCents }

// WalletAmountCents returns the wallet share of the rental total, in cents.
func (b *Booking) WalletAmountCents() int64 { return b.walletAmountCents }

// CardAmountCents returns the card share of the rental total, in cents.
func (b *Booking) CardAmountCents() int64 { return b.cardAmountCents }

// PaymentMethod returns the payment method chosen at checkout (may be empty
// before checkout).
func (b *Booking) PaymentMethod() PaymentMethod { return b.paymentMethod }

// ConfirmedAt returns the time payment was confirmed.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// StartedAt returns the check-in time.
func (b *Booking) StartedAt() *time.Time { return b.startedAt }

// ReturnedAt returns the time the vehicle was returned.
func (b *Booking) ReturnedAt() *time.Time { return b.returnedAt }

// CompletedAt returns the time the booking was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// transitionTo moves the booking to the target status after consulting the
// transition table. The denied reason is carried on the returned error.
func (b *Booking) transitionTo(target BookingStatus) error {
	check := ValidateTransition(b.status, target)
	if !check.Valid {
		return domain.NewInvalidStateErrorWithReason(check.Reason)
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkPendingPayment moves an approved request into the payment window.
func (b *Booking) MarkPendingPayment() error {
	return b.transitionTo(StatusPendingPayment)
}

// Confirm marks the booking paid and confirmed, recording the checkout outcome.
func (b *Booking) Confirm(method PaymentMethod, depositCents, walletCents, cardCents int64) error {
	if !method.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", method))
	}
	if err := b.transitionTo(StatusConfirmed); err != nil {
		return err
	}
	now := b.updatedAt
	b.paymentMethod = method
	b.depositCents = depositCents
	b.walletAmountCents = walletCents
	b.cardAmountCents = cardCents
	b.confirmedAt = &now
	return nil
}

// Start records the check-in and moves the booking to in_progress.
func (b *Booking) Start() error {
	if err := b.transitionTo(StatusInProgress); err != nil {
		return err
	}
	now := b.updatedAt
	b.startedAt = &now
	return nil
}

// Return records the vehicle hand-back, pending inspection.
func (b *Booking) Return() error {
	if err := b.transitionTo(StatusReturned); err != nil {
		return err
	}
	now := b.updatedAt
	b.returnedAt = &now
	return nil
}

// MarkInspectedGood records a clean post-return inspection.
func (b *Booking) MarkInspectedGood() error {
	return b.transitionTo(StatusInspectedGood)
}

// ReportDamage flags the booking after a failed inspection.
func (b *Booking) ReportDamage() error {
	return b.transitionTo(StatusDamageReported)
}

// Dispute opens a dispute on the booking.
func (b *Booking) Dispute() error {
	return b.transitionTo(StatusDisputed)
}

// Resolve closes an open dispute.
func (b *Booking) Resolve() error {
	return b.transitionTo(StatusResolved)
}

// Complete finalizes the booking.
func (b *Booking) Complete() error {
	if err := b.transitionTo(StatusCompleted); err != nil {
		return err
	}
	now := b.updatedAt
	b.completedAt = &now
	return nil
}

// Cancel cancels the booking with the given variant (cancelled, cancelled_renter,
// cancelled_owner or cancelled_system) and reason.
func (b *Booking) Cancel(variant BookingStatus, reason string) error {
	if !variant.IsCancelled() {
		return domain.NewValidationError(fmt.Sprintf("not a cancellation status: %s", variant))
	}
	if err := b.transitionTo(variant); err != nil {
		return err
	}
	now := b.updatedAt
	b.cancelNote = reason
	b.cancelledAt = &now
	return nil
}

// Expire marks an unpaid booking as expired.
func (b *Booking) Expire() error {
	return b.transitionTo(StatusExpired)
}

// Reject marks a booking request as rejected by the owner.
func (b *Booking) Reject() error {
	return b.transitionTo(StatusRejected)
}

// FailPaymentValidation records a payment that could not be validated.
func (b *Booking) FailPaymentValidation() error {
	return b.transitionTo(StatusPaymentValidationFailed)
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
