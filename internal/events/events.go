package events

import "time"

// Topics used by the booking service.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// EventSource identifies this service in CloudEvent envelopes.
const EventSource = "service-booking"

// Booking event types published on TopicBookingEvents.
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingConfirmed     = "booking.confirmed"
	TypeBookingCancelled     = "booking.cancelled"
	TypeBookingCompleted     = "booking.completed"
	TypeBookingExpired       = "booking.expired"
)

// Payment event types consumed from TopicPaymentEvents.
const (
	TypePaymentApproved = "payment.approved"
	TypePaymentRejected = "payment.rejected"
)

// BookingCreatedEvent is published when a renter submits a booking request.
type BookingCreatedEvent struct {
	BookingID     string    `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	RenterID      string    `json:"renter_id"`
	OwnerID       string    `json:"owner_id"`
	VehicleID     string    `json:"vehicle_id"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
}

// BookingStatusChangedEvent is published on every successful status transition.
type BookingStatusChangedEvent struct {
	BookingID     string `json:"booking_id"`
	BookingNumber string `json:"booking_number"`
	RenterID      string `json:"renter_id"`
	OwnerID       string `json:"owner_id"`
	FromStatus    string `json:"from_status"`
	ToStatus      string `json:"to_status"`
	Reason        string `json:"reason,omitempty"`
}

// BookingConfirmedEvent is published once payment is confirmed.
type BookingConfirmedEvent struct {
	BookingID         string `json:"booking_id"`
	BookingNumber     string `json:"booking_number"`
	RenterID          string `json:"renter_id"`
	OwnerID           string `json:"owner_id"`
	PaymentMethod     string `json:"payment_method"`
	DepositCents      int64  `json:"deposit_cents"`
	WalletAmountCents int64  `json:"wallet_amount_cents"`
	CardAmountCents   int64  `json:"card_amount_cents"`
}

// PaymentApprovedEvent is the payload of payment.approved events.
type PaymentApprovedEvent struct {
	PaymentID         string `json:"payment_id"`
	BookingID         string `json:"booking_id"`
	PaymentMethod     string `json:"payment_method"`
	DepositCents      int64  `json:"deposit_cents"`
	WalletAmountCents int64  `json:"wallet_amount_cents"`
	CardAmountCents   int64  `json:"card_amount_cents"`
}

// PaymentRejectedEvent is the payload of payment.rejected events.
type PaymentRejectedEvent struct {
	PaymentID string `json:"payment_id"`
	BookingID string `json:"booking_id"`
	Reason    string `json:"reason,omitempty"`
}
