package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autorentar/service-booking/internal/domain"
	"github.com/autorentar/service-booking/internal/domain/booking"
	"github.com/autorentar/service-booking/internal/subscription"
)

// FXRateSource produces an ARS-per-USD snapshot.
type FXRateSource interface {
	Rate(ctx context.Context) (float64, error)
}

// DepositService orchestrates franchise resolution, subscription coverage and
// guarantee calculation for checkout.
type DepositService struct {
	repo            booking.BookingRepository
	coverage        subscription.CoverageClient
	rates           FXRateSource
	logger          *zap.Logger
	coverageTimeout time.Duration
}

// NewDepositService creates a DepositService.
func NewDepositService(
	repo booking.BookingRepository,
	coverage subscription.CoverageClient,
	rates FXRateSource,
	coverageTimeout time.Duration,
	logger *zap.Logger,
) *DepositService {
	if coverageTimeout <= 0 {
		coverageTimeout = 10 * time.Second
	}
	return &DepositService{
		repo:            repo,
		coverage:        coverage,
		rates:           rates,
		logger:          logger,
		coverageTimeout: coverageTimeout,
	}
}

// FranchiseForBooking resolves the franchise figures for a booking's vehicle.
func (s *DepositService) FranchiseForBooking(ctx context.Context, bookingID, userID uuid.UUID, role string) (booking.FranchiseInfo, error) {
	b, err := s.authorizedBooking(ctx, bookingID, userID, role)
	if err != nil {
		return booking.FranchiseInfo{}, err
	}
	return booking.FranchiseForVehicle(b.Vehicle()), nil
}

// DepositWithSubscription resolves the deposit the renter must put down,
// after netting out subscription coverage. Coverage lookups degrade to "no
// coverage" on any failure so checkout never blocks on the ledger.
func (s *DepositService) DepositWithSubscription(ctx context.Context, bookingID, userID uuid.UUID, role string) (booking.DepositWithSubscriptionResult, error) {
	b, err := s.authorizedBooking(ctx, bookingID, userID, role)
	if err != nil {
		return booking.DepositWithSubscriptionResult{}, err
	}

	franchise := booking.FranchiseForVehicle(b.Vehicle())
	coverage := s.checkCoverage(ctx, b.RenterID(), franchise.StandardDeductibleCents())
	return booking.ResolveDeposit(franchise, coverage), nil
}

func (s *DepositService) checkCoverage(ctx context.Context, renterID uuid.UUID, franchiseCents int64) booking.SubscriptionCoverageCheck {
	if s.coverage == nil {
		return booking.NoCoverage(franchiseCents, "unavailable")
	}

	ctx, cancel := context.WithTimeout(ctx, s.coverageTimeout)
	defer cancel()

	check, err := s.coverage.CheckCoverage(ctx, renterID, franchiseCents)
	if err != nil {
		s.logger.Warn("coverage check failed, assuming no coverage",
			zap.String("renter_id", renterID.String()),
			zap.Error(err),
		)
	}
	return booking.ReduceCoverage(franchiseCents, check, err)
}

// GuaranteeQuote is the checkout preview combining the payment-method
// guarantee with the subscription-adjusted deposit.
type GuaranteeQuote struct {
	Guarantee booking.GuaranteeBreakdown            `json:"guarantee"`
	Deposit   booking.DepositWithSubscriptionResult `json:"deposit"`
	FXRate    float64                               `json:"fx_rate_ars_per_usd"`
}

// QuoteGuarantee computes the full checkout quote for a booking, payment
// method and wallet split.
func (s *DepositService) QuoteGuarantee(
	ctx context.Context,
	bookingID, userID uuid.UUID,
	role string,
	method booking.PaymentMethod,
	split booking.WalletSplit,
) (*GuaranteeQuote, error) {
	if !method.IsValid() {
		return nil, domain.NewValidationError("invalid payment method")
	}

	b, err := s.authorizedBooking(ctx, bookingID, userID, role)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.Rate(ctx)
	if err != nil {
		return nil, domain.WrapInternal("failed to resolve fx rate", err)
	}

	franchise := booking.FranchiseForVehicle(b.Vehicle())
	coverage := s.checkCoverage(ctx, b.RenterID(), franchise.StandardDeductibleCents())

	return &GuaranteeQuote{
		Guarantee: booking.CalculateGuarantee(b, franchise, rate, method, split),
		Deposit:   booking.ResolveDeposit(franchise, coverage),
		FXRate:    rate,
	}, nil
}

func (s *DepositService) authorizedBooking(ctx context.Context, bookingID, userID uuid.UUID, role string) (*booking.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(b, userID, role); err != nil {
		return nil, err
	}
	return b, nil
}
