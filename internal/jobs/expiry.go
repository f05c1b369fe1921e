package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/autorentar/service-booking/internal/application"
	"github.com/autorentar/service-booking/internal/config"
)

// expiryBatchSize caps how many stale bookings one run processes.
const expiryBatchSize = 200

// ExpiryJob periodically expires unpaid bookings that sat in pending or
// pending_payment for too long.
type ExpiryJob struct {
	service  *application.BookingService
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewExpiryJob creates the job from configuration.
func NewExpiryJob(service *application.BookingService, cfg config.JobsConfig, logger *zap.Logger) *ExpiryJob {
	return &ExpiryJob{
		service:  service,
		schedule: cfg.ExpirySchedule,
		maxAge:   cfg.ExpiryMaxAge,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules the job and begins running it.
func (j *ExpiryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.run)
	if err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("booking expiry job scheduled",
		zap.String("schedule", j.schedule),
		zap.Duration("max_age", j.maxAge),
	)
	return nil
}

// Stop halts the scheduler and waits for a running invocation to finish.
func (j *ExpiryJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *ExpiryJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.maxAge)
	expired, err := j.service.ExpireStaleBookings(ctx, cutoff, expiryBatchSize)
	if err != nil {
		j.logger.Error("booking expiry run failed", zap.Error(err))
		return
	}
	if expired > 0 {
		j.logger.Info("expired stale bookings", zap.Int("count", expired))
	}
}
