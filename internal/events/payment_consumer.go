package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/autorentar/service-booking/internal/kafka"
)

// BookingPaymentHandler is the slice of the booking application service the
// payment consumer needs.
type BookingPaymentHandler interface {
	// ConfirmFromPayment confirms a booking after its payment was approved.
	ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID, paymentMethod string, depositCents, walletCents, cardCents int64) error

	// FailPayment marks a booking's payment as failed validation.
	FailPayment(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// PaymentEventConsumer reacts to payment outcomes published by the payment
// service and advances the booking lifecycle accordingly.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  BookingPaymentHandler
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a consumer bound to TopicPaymentEvents.
func NewPaymentEventConsumer(brokers []string, groupID string, service BookingPaymentHandler, logger *zap.Logger) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		service:  service,
		logger:   logger,
	}
}

// Start consumes payment events until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	c.logger.Info("payment event consumer started", zap.String("topic", TopicPaymentEvents))
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close shuts the underlying Kafka reader down.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		// Malformed envelope: log and commit, retrying will not help.
		c.logger.Warn("skipping malformed payment event", zap.Error(err))
		return nil
	}

	switch event.Type {
	case TypePaymentApproved:
		return c.handlePaymentApproved(ctx, event)
	case TypePaymentRejected:
		return c.handlePaymentRejected(ctx, event)
	default:
		c.logger.Debug("ignoring payment event type", zap.String("type", event.Type))
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentApproved(ctx context.Context, event kafka.CloudEvent) error {
	var payload PaymentApprovedEvent
	if err := event.ParseData(&payload); err != nil {
		c.logger.Warn("skipping payment.approved with bad payload", zap.Error(err))
		return nil
	}

	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		c.logger.Warn("skipping payment.approved with bad booking id",
			zap.String("booking_id", payload.BookingID))
		return nil
	}

	if err := c.service.ConfirmFromPayment(ctx, bookingID, payload.PaymentMethod,
		payload.DepositCents, payload.WalletAmountCents, payload.CardAmountCents); err != nil {
		c.logger.Error("failed to confirm booking from payment",
			zap.String("booking_id", payload.BookingID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking confirmed from payment",
		zap.String("booking_id", payload.BookingID),
		zap.String("payment_id", payload.PaymentID),
	)
	return nil
}

func (c *PaymentEventConsumer) handlePaymentRejected(ctx context.Context, event kafka.CloudEvent) error {
	var payload PaymentRejectedEvent
	if err := event.ParseData(&payload); err != nil {
		c.logger.Warn("skipping payment.rejected with bad payload", zap.Error(err))
		return nil
	}

	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		c.logger.Warn("skipping payment.rejected with bad booking id",
			zap.String("booking_id", payload.BookingID))
		return nil
	}

	if err := c.service.FailPayment(ctx, bookingID, payload.Reason); err != nil {
		c.logger.Error("failed to mark payment as failed",
			zap.String("booking_id", payload.BookingID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking payment marked failed",
		zap.String("booking_id", payload.BookingID),
		zap.String("payment_id", payload.PaymentID),
	)
	return nil
}
