package collaborator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mkarelin/sales-commission-service/internal/domain"
	"github.com/mkarelin/sales-commission-service/internal/infrastructure/metrics"
)

// HTTPLedgerClient talks to the accounting service. Confirm endpoints
// are idempotent on the ledger side; transient failures are retried
// with capped exponential backoff, validation failures are not.
type HTTPLedgerClient struct {
	Address     string
	MaxAttempts int
	BackoffBase time.Duration
	Metrics     *metrics.CommissionMetrics

	client *http.Client
}

func NewHTTPLedgerClient(address string, timeout time.Duration, maxAttempts int, backoffBase time.Duration, m *metrics.CommissionMetrics) *HTTPLedgerClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &HTTPLedgerClient{
		Address:     address,
		MaxAttempts: maxAttempts,
		BackoffBase: backoffBase,
		Metrics:     m,
		client:      &http.Client{Timeout: timeout},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type fulfillmentResponse struct {
	Complete bool `json:"complete"`
}

func (c *HTTPLedgerClient) ConfirmSalesOrder(ctx context.Context, orderID string) error {
	return c.postWithRetry(ctx, fmt.Sprintf("%s/sales-orders/%s/confirm", c.Address, orderID))
}

func (c *HTTPLedgerClient) ConfirmPayableDocument(ctx context.Context, settlementID string) error {
	return c.postWithRetry(ctx, fmt.Sprintf("%s/payables/%s/confirm", c.Address, settlementID))
}

func (c *HTTPLedgerClient) IsFulfillmentComplete(ctx context.Context, externalDocID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/documents/%s/fulfillment", c.Address, externalDocID), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fulfillment check: %v: %w", err, domain.ErrCollaboratorUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("ledger returned %s: %w", resp.Status, domain.ErrCollaboratorUnavailable)
	}

	var body fulfillmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, err
	}
	return body.Complete, nil
}

// postWithRetry retries 5xx and network failures up to MaxAttempts with
// exponential backoff. 4xx responses are permanent and surface
// immediately.
func (c *HTTPLedgerClient) postWithRetry(ctx context.Context, url string) error {
	var lastErr error

	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.Metrics.RecordCollaboratorRetry("ledger")
			delay := c.BackoffBase << (attempt - 2)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		permanent, err := c.post(ctx, url)
		if err == nil {
			return nil
		}
		if permanent {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%v after %d attempts: %w", lastErr, c.MaxAttempts, domain.ErrCollaboratorUnavailable)
}

func (c *HTTPLedgerClient) post(ctx context.Context, url string) (permanent bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return true, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true, err
		}
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	var body errorResponse
	if jsonErr := json.Unmarshal(bodyBytes, &body); jsonErr == nil && body.Error != "" {
		err = errors.New(body.Error)
	} else {
		err = fmt.Errorf("ledger returned %s", resp.Status)
	}

	// Client errors are validation failures, retrying cannot help.
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return true, err
	}
	return false, err
}
