package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autorentar/service-booking/internal/domain/booking"
)

// CoverageClient checks how much of a franchise amount a renter's loyalty
// subscription balance can absorb.
type CoverageClient interface {
	CheckCoverage(ctx context.Context, userID uuid.UUID, franchiseAmountCents int64) (*booking.SubscriptionCoverageCheck, error)
}

// HTTPClient talks to the subscription service over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient creates a CoverageClient against the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type checkCoverageRequest struct {
	UserID               string `json:"user_id"`
	FranchiseAmountCents int64  `json:"franchise_amount_cents"`
}

type checkCoverageResponse struct {
	Data booking.SubscriptionCoverageCheck `json:"data"`
}

// CheckCoverage posts the franchise amount to the subscription service and
// returns its coverage snapshot. Errors are returned as-is; callers decide
// the degradation policy.
func (c *HTTPClient) CheckCoverage(ctx context.Context, userID uuid.UUID, franchiseAmountCents int64) (*booking.SubscriptionCoverageCheck, error) {
	body, err := json.Marshal(checkCoverageRequest{
		UserID:               userID.String(),
		FranchiseAmountCents: franchiseAmountCents,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode coverage request: %w", err)
	}

	url := c.baseURL + "/internal/subscriptions/coverage/check"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build coverage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coverage check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No subscription record for this user.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coverage check returned status %d", resp.StatusCode)
	}

	var out checkCoverageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode coverage response: %w", err)
	}

	c.logger.Debug("subscription coverage checked",
		zap.String("user_id", userID.String()),
		zap.String("coverage_type", string(out.Data.CoverageType)),
	)
	return &out.Data, nil
}
