// Package fx provides currency conversion rates from a free exchange-rate
// API. The full table is fetched once per TTL relative to the portfolio
// base currency; cross rates are derived through the base.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/models"
)

const (
	DefaultBaseURL = "https://api.exchangerate-api.com/v4/latest"
	DefaultTimeout = 10 * time.Second
)

// Client implements interfaces.FXClient.
type Client struct {
	baseURL      string
	baseCurrency string
	httpClient   *http.Client
	logger       *common.Logger

	mu        sync.Mutex
	rates     map[string]float64
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time // injectable clock for testing
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTTL sets the rate-table freshness window
func WithTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// NewClient creates a new exchange-rate client for the given base currency
func NewClient(baseCurrency string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		baseCurrency: strings.ToUpper(baseCurrency),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		ttl:    common.FreshnessFXRates,
		logger: common.NewSilentLogger(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ratesResponse mirrors the /v4/latest/{base} payload.
type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// GetRates returns the full rate table relative to the base currency,
// refetching when the cached table is older than the TTL.
func (c *Client) GetRates(ctx context.Context) (map[string]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rates != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.rates, nil
	}

	rates, err := c.fetchRates(ctx)
	if err != nil {
		// Serve a stale table over failing the whole valuation pass
		if c.rates != nil {
			c.logger.Warn().Err(err).Msg("FX refetch failed, serving stale rate table")
			return c.rates, nil
		}
		return nil, fmt.Errorf("%w: %v", models.ErrFxRateUnavailable, err)
	}

	c.rates = rates
	c.fetchedAt = c.now()
	return c.rates, nil
}

func (c *Client) fetchRates(ctx context.Context) (map[string]float64, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, c.baseCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("base", c.baseCurrency).Msg("FX rate request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fx API status %d: %s", resp.StatusCode, string(body))
	}

	var parsed ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("fx API returned empty rate table")
	}

	parsed.Rates[c.baseCurrency] = 1.0
	return parsed.Rates, nil
}

// GetRate returns the multiplier converting from one currency to another.
// The table is relative to the base currency, so cross rates go through it:
// amount/rates[from] converts to base, ×rates[to] converts onward.
func (c *Client) GetRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return 1.0, nil
	}

	rates, err := c.GetRates(ctx)
	if err != nil {
		return 0, err
	}

	fromRate, okFrom := rates[from]
	toRate, okTo := rates[to]
	if !okFrom || !okTo || fromRate == 0 {
		return 0, fmt.Errorf("%w: %s->%s", models.ErrFxRateUnavailable, from, to)
	}

	return toRate / fromRate, nil
}
