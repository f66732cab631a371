// Package ingestion pulls the per-source CSV exports from the marketplace API
// and saves them into the snapshot store with the timestamped naming the
// pipeline consumes. Authentication (bearer token, cookie) is produced by the
// external login flow and only consumed here.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"fantasy-hero-lab/internal/config"
	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/table"
)

// Client fetches source tables from the marketplace export API.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewClient creates a client from the API configuration.
func NewClient(cfg config.APIConfig, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.BearerToken).
		SetTimeout(cfg.Timeout.Std()).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(30 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() == http.StatusTooManyRequests
		})
	if cfg.Cookie != "" {
		httpClient.SetHeader("Cookie", cfg.Cookie)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "marketplace",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.Burst),
		breaker: breaker,
		log:     log.With().Str("component", "ingestion").Logger(),
	}
}

// FetchSource downloads the latest export for one source and parses it.
func (c *Client) FetchSource(ctx context.Context, src domain.Source) (*table.Table, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			Get(fmt.Sprintf("/exports/%s.csv", src))
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", src, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch %s: status %d", src, resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		return nil, err
	}

	t, err := table.ReadCSV(bytes.NewReader(body.([]byte)))
	if err != nil {
		return nil, fmt.Errorf("parse %s export: %w", src, err)
	}
	return t, nil
}
