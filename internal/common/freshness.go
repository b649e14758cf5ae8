// Package common provides shared utilities for Folio
package common

import "time"

// Freshness TTLs for data components
const (
	FreshnessQuote        = 15 * time.Minute    // current prices
	FreshnessAssetHistory = 30 * time.Minute    // per-ticker close series
	FreshnessFXRates      = 4 * time.Hour       // full rate table; FX moves slowly intraday
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
