// Package coingecko provides a client for the CoinGecko API, used for
// cryptocurrency quotes. The free tier allows roughly 50 calls/minute, so
// the limiter defaults are much stricter than the equity source.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://api.coingecko.com/api/v3"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 50 // requests per minute

	vsCurrency = "usd"
)

// coinIDs maps common crypto tickers to CoinGecko coin IDs. Unknown tickers
// fall back to the lowercased ticker, which works for many coins.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"SHIB":  "shiba-inu",
	"PEPE":  "pepe",
	"LTC":   "litecoin",
	"BCH":   "bitcoin-cash",
	"XLM":   "stellar",
	"ALGO":  "algorand",
	"VET":   "vechain",
	"FIL":   "filecoin",
	"AAVE":  "aave",
	"XMR":   "monero",
	"ETC":   "ethereum-classic",
	"NEAR":  "near",
	"ARB":   "arbitrum",
	"OP":    "optimism",
}

// Client implements interfaces.MarketDataClient for cryptocurrencies.
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

// WithRateLimit sets the rate limit in requests per minute. Non-positive
// values keep the default.
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new CoinGecko client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/DefaultRateLimit), 1),
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
	return fmt.Sprintf("coingecko API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// coinID converts a ticker symbol to a CoinGecko coin ID.
func coinID(ticker string) string {
	if id, ok := coinIDs[strings.ToUpper(ticker)]; ok {
		return id
	}
	return strings.ToLower(ticker)
}

// get performs a rate-limited GET request with one retry on throttling or
// server errors.
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

		c.logger.Debug().Str("url", c.baseURL+path).Msg("CoinGecko API request")

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
			case <-time.After(1 * time.Second):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: coingecko %s", models.ErrRateLimited, path)
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}
}

// GetQuote retrieves the current price for a crypto ticker.
// The previous close is derived from the 24h change since CoinGecko trades
// continuously and has no closing bell.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	id := coinID(ticker)

	params := url.Values{}
	params.Set("ids", id)
	params.Set("vs_currencies", vsCurrency)
	params.Set("include_24hr_change", "true")

	var resp map[string]map[string]float64
	if err := c.get(ctx, "/simple/price", params, &resp); err != nil {
		return nil, err
	}

	coin, ok := resp[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s (coin id %s)", models.ErrQuoteUnavailable, ticker, id)
	}

	price := coin[vsCurrency]
	change24h := coin[vsCurrency+"_24h_change"]

	prevClose := price
	if change24h != 0 {
		prevClose = price / (1 + change24h/100)
	}

	quote := &models.Quote{
		Ticker:        strings.ToUpper(ticker),
		Name:          strings.ToUpper(ticker),
		Price:         price,
		PreviousClose: prevClose,
		Change:        price - prevClose,
		ChangePercent: change24h,
		Currency:      strings.ToUpper(vsCurrency),
		FetchedAt:     time.Now(),
	}

	c.logger.Debug().
		Str("ticker", quote.Ticker).
		Float64("price", price).
		Msg("CoinGecko quote")

	return quote, nil
}

// marketChartResponse mirrors the /coins/{id}/market_chart payload:
// prices is a list of [timestamp_ms, price] pairs.
type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// periodDays translates Folio history windows to CoinGecko day counts.
var periodDays = map[string]int{
	"1m":  30,
	"3m":  90,
	"6m":  180,
	"1y":  365,
	"5y":  1825,
	"max": 3650,
}

// GetHistory retrieves daily close prices for a period
func (c *Client) GetHistory(ctx context.Context, ticker string, period string) ([]models.PricePoint, error) {
	days, ok := periodDays[period]
	if !ok {
		days = 365
	}

	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", "daily")

	var resp marketChartResponse
	if err := c.get(ctx, "/coins/"+url.PathEscape(coinID(ticker))+"/market_chart", params, &resp); err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(resp.Prices))
	for _, pair := range resp.Prices {
		points = append(points, models.PricePoint{
			Date:  time.UnixMilli(int64(pair[0])).UTC().Truncate(24 * time.Hour),
			Close: pair[1],
		})
	}

	return points, nil
}
