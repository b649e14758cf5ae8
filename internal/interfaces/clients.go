// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/jthierry/folio/internal/models"
)

// MarketDataClient provides current and historical prices for one symbol
// namespace. The equity/ETF source and the crypto source both satisfy it;
// the crypto source carries a stricter rate limit.
type MarketDataClient interface {
	// GetQuote retrieves the current price for a ticker
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetHistory retrieves daily close prices for a period
	// (e.g. "1m", "3m", "6m", "1y", "5y", "max")
	GetHistory(ctx context.Context, ticker string, period string) ([]models.PricePoint, error)
}

// FXClient provides currency conversion rates.
type FXClient interface {
	// GetRate returns the multiplier converting from one currency to another
	GetRate(ctx context.Context, from, to string) (float64, error)

	// GetRates returns the full rate table relative to the base currency
	GetRates(ctx context.Context) (map[string]float64, error)
}

// PriceCache shields the engine and the external sources from excessive
// calls. Expired entries are refetched; fetch failures fall back to the
// last known quote, tagged stale.
type PriceCache interface {
	// Get returns a fresh or stale quote for the ticker
	Get(ctx context.Context, ticker string, class models.AssetClass) (*models.Quote, error)

	// Refresh bypasses the freshness check and always refetches
	Refresh(ctx context.Context, ticker string, class models.AssetClass) (*models.Quote, error)
}
