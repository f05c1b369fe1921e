package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autorentar/service-booking/internal/domain"
	"github.com/autorentar/service-booking/internal/domain/booking"
)

// BookingModel is the GORM persistence model for booking aggregates.
type BookingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber string    `gorm:"uniqueIndex;not null"`
	RenterID      uuid.UUID `gorm:"type:uuid;index;not null"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Status        string    `gorm:"index;not null"`
	Vehicle       []byte    `gorm:"type:jsonb;not null"`

	StartAt time.Time `gorm:"not null"`
	EndAt   time.Time `gorm:"not null"`

	Currency          string `gorm:"type:varchar(3);not null"`
	NightlyRateCents  int64  `gorm:"not null"`
	TotalAmountCents  int64  `gorm:"not null"`
	DepositCents      int64  `gorm:"not null;default:0"`
	WalletAmountCents int64  `gorm:"not null;default:0"`
	CardAmountCents   int64  `gorm:"not null;default:0"`
	PaymentMethod     string

	ConfirmedAt *time.Time
	StartedAt   *time.Time
	ReturnedAt  *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
	CancelNote  string
	Notes       string

	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the table name for GORM.
func (BookingModel) TableName() string { return "bookings" }

// GormBookingRepository implements booking.BookingRepository backed by PostgreSQL.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a repository on the given connection.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func toModel(b *booking.Booking) (*BookingModel, error) {
	vehicle, err := json.Marshal(b.Vehicle())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vehicle snapshot: %w", err)
	}
	return &BookingModel{
		ID:                b.ID(),
		BookingNumber:     b.BookingNumber(),
		RenterID:          b.RenterID(),
		OwnerID:           b.OwnerID(),
		Status:            b.Status().String(),
		Vehicle:           vehicle,
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
		Version:           b.Version(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}, nil
}

func toDomain(m *BookingModel) (*booking.Booking, error) {
	var vehicle booking.VehicleSnapshot
	if err := json.Unmarshal(m.Vehicle, &vehicle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicle snapshot: %w", err)
	}

	status, err := booking.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.RenterID,
		m.OwnerID,
		status,
		vehicle,
		m.StartAt,
		m.EndAt,
		m.Currency,
		m.NightlyRateCents,
		m.TotalAmountCents,
		m.DepositCents,
		m.WalletAmountCents,
		m.CardAmountCents,
		booking.PaymentMethod(m.PaymentMethod),
		m.ConfirmedAt,
		m.StartedAt,
		m.ReturnedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Notes,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	if err != nil {
		return nil, domain.WrapInternal("failed to find booking", err)
	}
	return toDomain(&model)
}

// FindByNumber retrieves a booking by its human-readable booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*booking.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).First(&model, "booking_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("booking", number)
	}
	if err != nil {
		return nil, domain.WrapInternal("failed to find booking", err)
	}
	return toDomain(&model)
}

// FindByRenterID retrieves a renter's bookings, newest first.
func (r *GormBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	return r.findPaginated(ctx, "renter_id = ?", []interface{}{renterID}, page, limit)
}

// FindByOwnerID retrieves an owner's bookings, newest first.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	return r.findPaginated(ctx, "owner_id = ?", []interface{}{ownerID}, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*booking.Booking, int64, error) {
	return r.findPaginated(ctx, "", nil, page, limit)
}

func (r *GormBookingRepository) findPaginated(ctx context.Context, where string, args []interface{}, page, limit int) ([]*booking.Booking, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if where != "" {
		query = query.Where(where, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domain.WrapInternal("failed to count bookings", err)
	}

	var models []BookingModel
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, domain.WrapInternal("failed to list bookings", err)
	}

	bookings := make([]*booking.Booking, 0, len(models))
	for i := range models {
		b, err := toDomain(&models[i])
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, total, nil
}

// FindStaleUnpaid retrieves pending or pending_payment bookings created before
// the cutoff, oldest first.
func (r *GormBookingRepository) FindStaleUnpaid(ctx context.Context, olderThan time.Time, limit int) ([]*booking.Booking, error) {
	if limit < 1 {
		limit = 100
	}

	var models []BookingModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			booking.StatusPending.String(),
			booking.StatusPendingPayment.String(),
		}).
		Where("created_at < ?", olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, domain.WrapInternal("failed to find stale bookings", err)
	}

	bookings := make([]*booking.Booking, 0, len(models))
	for i := range models {
		b, err := toDomain(&models[i])
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// CountByStatus returns booking counts grouped by status (admin stats).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, domain.WrapInternal("failed to count bookings by status", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	model, err := toModel(b)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.WrapInternal("failed to save booking", err)
	}
	return nil
}

// Update persists changes with optimistic locking: the write only lands if the
// stored version still matches the version the aggregate was loaded at.
func (r *GormBookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	loadedVersion := b.Version()
	b.IncrementVersion()

	model, err := toModel(b)
	if err != nil {
		return err
	}

	// Select("*") forces zero-valued columns (cleared notes, amounts) to be
	// written; struct updates would skip them.
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, loadedVersion).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return domain.WrapInternal("failed to update booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified concurrently")
	}
	return nil
}
