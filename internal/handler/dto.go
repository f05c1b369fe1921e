package handler

import (
	"time"

	"github.com/autorentar/service-booking/internal/domain/booking"
)

// bookingResponse is the JSON shape of a booking on the API.
type bookingResponse struct {
	ID                string                  `json:"id"`
	BookingNumber     string                  `json:"booking_number"`
	RenterID          string                  `json:"renter_id"`
	OwnerID           string                  `json:"owner_id"`
	Status            string                  `json:"status"`
	Vehicle           booking.VehicleSnapshot `json:"vehicle"`
	StartAt           time.Time               `json:"start_at"`
	EndAt             time.Time               `json:"end_at"`
	Currency          string                  `json:"currency"`
	NightlyRateCents  int64                   `json:"nightly_rate_cents"`
	TotalAmountCents  int64                   `json:"total_amount_cents"`
	DepositCents      int64                   `json:"deposit_cents"`
	WalletAmountCents int64                   `json:"wallet_amount_cents"`
	CardAmountCents   int64                   `json:"card_amount_cents"`
	PaymentMethod     string                  `json:"payment_method,omitempty"`
	ConfirmedAt       *time.Time              `json:"confirmed_at,omitempty"`
	StartedAt         *time.Time              `json:"started_at,omitempty"`
	ReturnedAt        *time.Time              `json:"returned_at,omitempty"`
	CompletedAt       *time.Time              `json:"completed_at,omitempty"`
	CancelledAt       *time.Time              `json:"cancelled_at,omitempty"`
	CancelNote        string                  `json:"cancel_note,omitempty"`
	Notes             string                  `json:"notes,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func toBookingResponse(b *booking.Booking) bookingResponse {
	return bookingResponse{
		ID:                b.ID().String(),
		BookingNumber:     b.BookingNumber(),
		RenterID:          b.RenterID().String(),
		OwnerID:           b.OwnerID().String(),
		Status:            b.Status().String(),
		Vehicle:           b.Vehicle(),
		StartAt:           b.StartAt(),
		EndAt:             b.EndAt(),
		Currency:          b.Currency(),
		NightlyRateCents:  b.NightlyRateCents(),
		TotalAmountCents:  b.TotalAmountCents(),
		DepositCents:      b.DepositCents(),
		WalletAmountCents: b.WalletAmountCents(),
		CardAmountCents:   b.CardAmountCents(),
		PaymentMethod:     string(b.PaymentMethod()),
		ConfirmedAt:       b.ConfirmedAt(),
		StartedAt:         b.StartedAt(),
		ReturnedAt:        b.ReturnedAt(),
		CompletedAt:       b.CompletedAt(),
		CancelledAt:       b.CancelledAt(),
		CancelNote:        b.CancelNote(),
		Notes:             b.Notes(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
}

func toBookingResponses(bookings []*booking.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}
