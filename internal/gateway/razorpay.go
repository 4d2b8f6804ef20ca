package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketplace/internal/apperrors"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Config holds Razorpay connection details.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration // bound on every single call

	FetchRetries    uint64        // extra attempts for reads
	InitialInterval time.Duration // first retry delay
}

// statusError is a non-2xx response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.Code, e.Body)
}

func isClientError(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.Code >= 400 && se.Code < 500
}

// RazorpayClient is a Client for the Razorpay REST API.
type RazorpayClient struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

// NewRazorpayClient creates a new RazorpayClient.
func NewRazorpayClient(cfg Config, logger *zap.Logger) *RazorpayClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.FetchRetries == 0 {
		cfg.FetchRetries = 3
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "razorpay",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Declines and bad requests say nothing about gateway health.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &RazorpayClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// CreateOrder opens a payment intent. It is not retried: a repeated call would open a
// second intent.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w: %w", apperrors.ErrGateway, err)
	}

	body, err := c.do(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		c.logger.Error("gateway create order failed", zap.Int64("amount", req.Amount), zap.Error(err))
		return nil, fmt.Errorf("create gateway order: %w: %w", apperrors.ErrGateway, err)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("decode gateway order: %w: %w", apperrors.ErrGateway, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway order without id: %w", apperrors.ErrGateway)
	}
	return &order, nil
}

// FetchOrder reads a payment intent, retrying transient failures.
func (c *RazorpayClient) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	body, err := c.getWithRetry(ctx, "/orders/"+url.PathEscape(orderID))
	if err != nil {
		return nil, fmt.Errorf("fetch gateway order %s: %w: %w", orderID, apperrors.ErrGateway, err)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("decode gateway order %s: %w: %w", orderID, apperrors.ErrGateway, err)
	}
	return &order, nil
}

// FetchPayment reads a payment, retrying transient failures with exponential backoff.
func (c *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	body, err := c.getWithRetry(ctx, "/payments/"+url.PathEscape(paymentID))
	if err != nil {
		return nil, fmt.Errorf("fetch gateway payment %s: %w: %w", paymentID, apperrors.ErrGateway, err)
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("decode gateway payment %s: %w: %w", paymentID, apperrors.ErrGateway, err)
	}
	return &payment, nil
}

// Refund returns amount minor units of a captured payment. Like CreateOrder it is not
// retried.
func (c *RazorpayClient) Refund(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
	payload, err := json.Marshal(map[string]int64{"amount": amount})
	if err != nil {
		return nil, fmt.Errorf("refund gateway payment %s: %w: %w", paymentID, apperrors.ErrGateway, err)
	}

	body, err := c.do(ctx, http.MethodPost, "/payments/"+url.PathEscape(paymentID)+"/refund", payload)
	if err != nil {
		c.logger.Error("gateway refund failed", zap.String("payment_id", paymentID), zap.Int64("amount", amount), zap.Error(err))
		return nil, fmt.Errorf("refund gateway payment %s: %w: %w", paymentID, apperrors.ErrGateway, err)
	}

	var refund Refund
	if err := json.Unmarshal(body, &refund); err != nil {
		return nil, fmt.Errorf("decode gateway refund %s: %w: %w", paymentID, apperrors.ErrGateway, err)
	}
	return &refund, nil
}

// getWithRetry issues a GET, retrying transport errors and 5xx responses. Client errors
// and an open breaker stop the loop.
func (c *RazorpayClient) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	op := func() error {
		b, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			if isClientError(err) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.InitialInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, c.cfg.FetchRetries), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying gateway read",
			zap.String("path", path),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	if err := backoff.RetryNotify(op, retry, notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *RazorpayClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(callCtx, method, c.cfg.BaseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &statusError{Code: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	})
}
