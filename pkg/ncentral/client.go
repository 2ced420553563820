/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ncentral provides the N-central REST API access layer: a resilient
// request executor, a paginated collection fetcher, and typed endpoint
// wrappers. Every remote call in the scan pipeline goes through this package.
package ncentral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/carverauto/patchwatch/pkg/logger"
)

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = time.Second
	defaultMaxPages   = 500
	defaultPageSize   = 50
)

// Client executes requests against one N-central server. It is the single
// HTTP chokepoint; no other component performs HTTP directly.
type Client struct {
	creds      *Credentials
	httpClient HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	limiter    *rate.Limiter
	maxPages   int
	logger     logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.httpClient = doer }
}

// WithMaxRetries bounds the total attempt count for retryable failures.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithBaseDelay sets the first back-off interval. Subsequent intervals
// double. Tests inject a small value here to keep the schedule fast.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithRateLimit paces requests client-side at rps requests per second.
// Zero or negative disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMaxPages overrides the pagination circuit breaker.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// NewClient builds a Client for the given credentials. The credentials are
// immutable for the duration of a run.
func NewClient(creds *Credentials, log logger.Logger, opts ...Option) (*Client, error) {
	if creds == nil || creds.BaseURL == "" {
		return nil, errMissingBaseURL
	}

	if creds.Token == "" {
		return nil, errMissingToken
	}

	c := &Client{
		creds:      creds,
		httpClient: &http.Client{},
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		maxPages:   defaultMaxPages,
		logger:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Get issues one GET request and classifies the outcome. 2xx returns the
// raw body. 404 returns (nil, nil): absence is data, not an error. 401
// fails permanently with ErrUnauthorized. 429 and 5xx are retried with
// exponential back-off until the attempt budget runs out, at which point
// the call fails with ErrRetriesExhausted. Any other status, and any
// transport-level failure, fails immediately without retry.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	reqURL := strings.TrimRight(c.creds.BaseURL, "/") + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var (
		body       json.RawMessage
		attempts   int
		lastStatus int
		retryable  bool
	)

	operation := func() error {
		attempts++

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return backoff.Permanent(err)
		}

		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Unclassified transport failure: fail fast rather than
			// retry blindly on an unknown condition.
			return backoff.Permanent(err)
		}
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				c.logger.Warn().Err(cerr).Msg("Failed to close response body")
			}
		}()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}

		lastStatus = resp.StatusCode
		retryable = resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= http.StatusInternalServerError

		switch {
		case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
			body = data
			return nil
		case resp.StatusCode == http.StatusNotFound:
			body = nil
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(ErrUnauthorized)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Int("attempt", attempts).
				Str("url", reqURL).
				Msg("Retryable API failure")

			return fmt.Errorf("%w: %d", errUnexpectedStatusCode, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("%w: %d, response: %s",
				errUnexpectedStatusCode, resp.StatusCode, string(data)))
		}
	}

	if err := backoff.Retry(operation, c.newBackOff(ctx)); err != nil {
		if retryable && errors.Is(err, errUnexpectedStatusCode) && attempts >= c.maxRetries {
			return nil, fmt.Errorf("%w: last status %d after %d attempts",
				ErrRetriesExhausted, lastStatus, attempts)
		}

		return nil, err
	}

	return body, nil
}

// newBackOff builds the per-call retry schedule: baseDelay, doubling each
// attempt, no jitter, capped at maxRetries total calls.
func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.baseDelay
	expBackoff.Multiplier = 2
	expBackoff.RandomizationFactor = 0
	expBackoff.MaxInterval = time.Hour
	expBackoff.MaxElapsedTime = 0
	expBackoff.Reset()

	capped := backoff.WithMaxRetries(expBackoff, uint64(c.maxRetries-1))

	return backoff.WithContext(capped, ctx)
}
