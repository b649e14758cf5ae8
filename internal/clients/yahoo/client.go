// Package yahoo provides a client for the Yahoo Finance chart API,
// used for stock, ETF and fund quotes.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// tickerRemap maps broker tickers that Yahoo doesn't resolve to a listing
// it does. Mostly European ETFs imported from broker statements.
var tickerRemap = map[string]string{
	"LYX0F.DE":     "UST.PA",
	"IE00BYX5NX33": "IE00BYX5NX33.SG",
}

// Client implements interfaces.MarketDataClient for equities, ETFs and funds.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
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

// WithRateLimit sets the rate limit. Non-positive values keep the default.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// mapTicker returns the Yahoo listing for a broker ticker.
func mapTicker(ticker string) string {
	if mapped, ok := tickerRemap[ticker]; ok {
		return mapped
	}
	return ticker
}

// get performs a rate-limited GET request with one retry on throttling or
// server errors before giving up.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(result)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if retryable && attempt == 0 {
			select {
			case <-time.After(500 * time.Millisecond):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: yahoo %s", models.ErrRateLimited, path)
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}
}

// chartResponse mirrors the /v8/finance/chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				Currency           string  `json:"currency"`
				ShortName          string  `json:"shortName"`
				LongName           string  `json:"longName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetQuote retrieves the current price for a ticker
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	mapped := mapTicker(ticker)

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "5d")

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(mapped), params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Chart.Result) == 0 {
		desc := "no data"
		if resp.Chart.Error != nil {
			desc = resp.Chart.Error.Description
		}
		return nil, fmt.Errorf("%w: %s (%s): %s", models.ErrQuoteUnavailable, ticker, mapped, desc)
	}

	meta := resp.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	prevClose := meta.ChartPreviousClose
	if prevClose == 0 {
		prevClose = price
	}

	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}

	quote := &models.Quote{
		Ticker:        ticker,
		Name:          name,
		Price:         price,
		PreviousClose: prevClose,
		Change:        price - prevClose,
		Currency:      meta.Currency,
		FetchedAt:     time.Now(),
	}
	if prevClose != 0 {
		quote.ChangePercent = (price - prevClose) / prevClose * 100
	}

	c.logger.Debug().
		Str("ticker", ticker).
		Float64("price", price).
		Str("currency", quote.Currency).
		Msg("Yahoo quote")

	return quote, nil
}

// periodMap translates Folio history windows to Yahoo range values.
var periodMap = map[string]string{
	"1m":  "1mo",
	"3m":  "3mo",
	"6m":  "6mo",
	"1y":  "1y",
	"5y":  "5y",
	"max": "max",
}

// GetHistory retrieves daily close prices for a period
func (c *Client) GetHistory(ctx context.Context, ticker string, period string) ([]models.PricePoint, error) {
	yahooRange, ok := periodMap[period]
	if !ok {
		yahooRange = "1y"
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", yahooRange)

	var resp chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(mapTicker(ticker)), params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no history for %s", models.ErrQuoteUnavailable, ticker)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no history for %s", models.ErrQuoteUnavailable, ticker)
	}

	closes := result.Indicators.Quote[0].Close
	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // market holiday or missing bar
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *closes[i],
		})
	}

	return points, nil
}
