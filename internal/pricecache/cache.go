// Package pricecache holds recently fetched quotes with a time-to-live,
// shielding the valuation engine and the external sources from excessive
// calls. Concurrent requests for the same ticker share one fetch; fetch
// failures fall back to the last known quote, tagged stale.
package pricecache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/interfaces"
	"github.com/jthierry/folio/internal/models"
)

// Cache implements interfaces.PriceCache. Writes are serialized per key by
// the singleflight group; reads of other keys proceed unblocked under the
// read lock.
type Cache struct {
	equity interfaces.MarketDataClient
	crypto interfaces.MarketDataClient
	ttl    time.Duration
	logger *common.Logger
	now    func() time.Time // injectable clock for testing

	mu      sync.RWMutex
	entries map[string]models.Quote
	group   singleflight.Group
}

// New creates a price cache routing stock/etf/fund tickers to the equity
// client and crypto tickers to the crypto client.
func New(equity, crypto interfaces.MarketDataClient, ttl time.Duration, logger *common.Logger) *Cache {
	if ttl <= 0 {
		ttl = common.FreshnessQuote
	}
	return &Cache{
		equity:  equity,
		crypto:  crypto,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]models.Quote),
	}
}

func key(ticker string, class models.AssetClass) string {
	return ticker + "|" + string(class)
}

// Get returns a cached quote if its age is below the freshness window,
// otherwise fetches from the matching source. On fetch failure the last
// known quote is served tagged stale; with nothing cached the error wraps
// models.ErrQuoteUnavailable.
func (c *Cache) Get(ctx context.Context, ticker string, class models.AssetClass) (*models.Quote, error) {
	k := key(ticker, class)

	if q, ok := c.lookup(k); ok && c.now().Sub(q.FetchedAt) < c.ttl {
		return &q, nil
	}

	return c.fetch(ctx, k, ticker, class, false)
}

// Refresh bypasses the freshness check and always refetches, replacing the
// cache entry. Used by the explicit refresh trigger.
func (c *Cache) Refresh(ctx context.Context, ticker string, class models.AssetClass) (*models.Quote, error) {
	return c.fetch(ctx, key(ticker, class), ticker, class, true)
}

// fetch runs the actual client call under singleflight so concurrent
// requests for the same ticker never trigger redundant fetches.
func (c *Cache) fetch(ctx context.Context, k, ticker string, class models.AssetClass, force bool) (*models.Quote, error) {
	v, err, _ := c.group.Do(k, func() (interface{}, error) {
		// Another waiter may have refreshed the entry while we queued
		if !force {
			if q, ok := c.lookup(k); ok && c.now().Sub(q.FetchedAt) < c.ttl {
				return q, nil
			}
		}

		quote, fetchErr := c.client(class).GetQuote(ctx, ticker)
		if fetchErr != nil {
			// Stale-but-available beats no quote at all
			if prev, ok := c.lookup(k); ok {
				c.logger.Warn().
					Err(fetchErr).
					Str("ticker", ticker).
					Time("fetched_at", prev.FetchedAt).
					Msg("Quote fetch failed, serving stale quote")
				prev.Stale = true
				return prev, nil
			}
			return nil, fmt.Errorf("%w: %s: %v", models.ErrQuoteUnavailable, ticker, fetchErr)
		}

		c.mu.Lock()
		c.entries[k] = *quote
		c.mu.Unlock()

		return *quote, nil
	})
	if err != nil {
		return nil, err
	}

	q := v.(models.Quote)
	return &q, nil
}

func (c *Cache) lookup(k string) (models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.entries[k]
	return q, ok
}

func (c *Cache) client(class models.AssetClass) interfaces.MarketDataClient {
	if class.IsCrypto() {
		return c.crypto
	}
	return c.equity
}

// Ensure Cache implements PriceCache
var _ interfaces.PriceCache = (*Cache)(nil)
