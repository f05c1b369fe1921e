package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// defaultRateArsPerUsd is the last-resort snapshot when neither the upstream
// source nor the cache can produce a rate.
const defaultRateArsPerUsd = 1000

const cacheKey = "fx:usd_ars:snapshot"

// RateSource produces an ARS-per-USD snapshot for guarantee calculations.
type RateSource interface {
	Rate(ctx context.Context) (float64, error)
}

// dolarAPIResponse matches the upstream quote payload; the sell rate is what
// a renter effectively pays.
type dolarAPIResponse struct {
	Compra float64 `json:"compra"`
	Venta  float64 `json:"venta"`
}

// CachedSource fetches the rate over HTTP and caches it in Redis. When the
// upstream source is unreachable it serves the cached snapshot, stale or not,
// before falling back to the built-in default.
type CachedSource struct {
	rateURL string
	ttl     time.Duration
	client  *http.Client
	redis   *redis.Client
	logger  *zap.Logger
}

// NewCachedSource creates a CachedSource against the given quote URL.
func NewCachedSource(rateURL string, ttl time.Duration, rdb *redis.Client, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		rateURL: rateURL,
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
		redis:   rdb,
		logger:  logger,
	}
}

// Rate returns the current ARS-per-USD snapshot. Never fails hard: checkout
// must not break because a quote provider is down.
func (s *CachedSource) Rate(ctx context.Context) (float64, error) {
	if rate, err := s.cached(ctx); err == nil {
		return rate, nil
	}

	rate, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("fx fetch failed, checking stale cache", zap.Error(err))
		if stale, staleErr := s.staleCached(ctx); staleErr == nil {
			return stale, nil
		}
		s.logger.Warn("no cached fx snapshot, using default rate",
			zap.Float64("rate", defaultRateArsPerUsd))
		return defaultRateArsPerUsd, nil
	}

	s.store(ctx, rate)
	return rate, nil
}

func (s *CachedSource) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.rateURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build fx request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fx request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fx source returned status %d", resp.StatusCode)
	}

	var quote dolarAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return 0, fmt.Errorf("failed to decode fx response: %w", err)
	}
	if quote.Venta <= 0 {
		return 0, errors.New("fx source returned non-positive sell rate")
	}
	return quote.Venta, nil
}

// cached returns the fresh snapshot, if present.
func (s *CachedSource) cached(ctx context.Context) (float64, error) {
	raw, err := s.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(raw, 64)
}

// staleCached returns the backup snapshot kept without a TTL.
func (s *CachedSource) staleCached(ctx context.Context) (float64, error) {
	raw, err := s.redis.Get(ctx, cacheKey+":stale").Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(raw, 64)
}

func (s *CachedSource) store(ctx context.Context, rate float64) {
	raw := strconv.FormatFloat(rate, 'f', -1, 64)
	if err := s.redis.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to cache fx snapshot", zap.Error(err))
	}
	// Backup copy without expiry for outages longer than the TTL.
	if err := s.redis.Set(ctx, cacheKey+":stale", raw, 0).Err(); err != nil {
		s.logger.Warn("failed to store stale fx snapshot", zap.Error(err))
	}
}

// StaticSource serves a fixed rate. Used in tests and local development.
type StaticSource struct {
	rate float64
}

// NewStaticSource creates a RateSource that always returns rate.
func NewStaticSource(rate float64) *StaticSource {
	return &StaticSource{rate: rate}
}

// Rate returns the fixed rate.
func (s *StaticSource) Rate(ctx context.Context) (float64, error) {
	return s.rate, nil
}
