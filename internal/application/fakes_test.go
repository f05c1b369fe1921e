package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/autorentar/service-booking/internal/domain"
	"github.com/autorentar/service-booking/internal/domain/booking"
	"github.com/autorentar/service-booking/internal/kafka"
)

// fakeBookingRepo is an in-memory booking.BookingRepository.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking.Booking
	failNext error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*booking.Booking)}
}

func (r *fakeBookingRepo) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return b, nil
}

func (r *fakeBookingRepo) FindByNumber(ctx context.Context, number string) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookingNumber() == number {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("booking", number)
}

func (r *fakeBookingRepo) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.RenterID() == renterID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.OwnerID() == ownerID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindStaleUnpaid(ctx context.Context, olderThan time.Time, limit int) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		unpaid := b.Status() == booking.StatusPending || b.Status() == booking.StatusPendingPayment
		if unpaid && b.CreatedAt().Before(olderThan) && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(ctx context.Context, page, limit int) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*booking.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("booking", b.ID().String())
	}
	b.IncrementVersion()
	r.bookings[b.ID()] = b
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	topics []string
}

func (p *fakePublisher) PublishEventWithKey(ctx context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.topics = append(p.topics, topic)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

// fakeCoverageClient returns a canned coverage check or error.
type fakeCoverageClient struct {
	check *booking.SubscriptionCoverageCheck
	err   error

	lastUserID         uuid.UUID
	lastFranchiseCents int64
}

func (c *fakeCoverageClient) CheckCoverage(ctx context.Context, userID uuid.UUID, franchiseAmountCents int64) (*booking.SubscriptionCoverageCheck, error) {
	c.lastUserID = userID
	c.lastFranchiseCents = franchiseAmountCents
	return c.check, c.err
}

// fakeRateSource returns a fixed FX rate or error.
type fakeRateSource struct {
	rate float64
	err  error
}

func (s *fakeRateSource) Rate(ctx context.Context) (float64, error) {
	return s.rate, s.err
}
