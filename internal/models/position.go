// Package models defines data structures for Folio
package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetClass is the closed set of supported asset types.
type AssetClass string

const (
	AssetStock  AssetClass = "stock"
	AssetETF    AssetClass = "etf"
	AssetFund   AssetClass = "fund"
	AssetCrypto AssetClass = "crypto"
)

// ParseAssetClass validates and normalizes an asset class string.
func ParseAssetClass(s string) (AssetClass, error) {
	switch AssetClass(strings.ToLower(strings.TrimSpace(s))) {
	case AssetStock:
		return AssetStock, nil
	case AssetETF:
		return AssetETF, nil
	case AssetFund:
		return AssetFund, nil
	case AssetCrypto:
		return AssetCrypto, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", s)
	}
}

// IsCrypto reports whether quotes for this class come from the crypto source.
func (a AssetClass) IsCrypto() bool {
	return a == AssetCrypto
}

// Position represents one holding at one broker. The same ticker held at
// two brokers is two distinct positions; they aggregate together for display.
// Quantities and prices are decimals so transaction math stays exact.
type Position struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
	Type     AssetClass      `json:"type"`
	Currency string          `json:"currency"`
	Broker   string          `json:"broker"`
}

// Key returns the broker+ticker identity of the position.
func (p Position) Key() string {
	return p.Broker + ":" + p.Ticker
}

// Validate checks position invariants for an active position.
func (p Position) Validate() error {
	if strings.TrimSpace(p.Ticker) == "" {
		return fmt.Errorf("position ticker is required")
	}
	if p.Quantity.IsNegative() {
		return fmt.Errorf("position %s: quantity must not be negative", p.Ticker)
	}
	if p.AvgPrice.IsNegative() {
		return fmt.Errorf("position %s: avg price must not be negative", p.Ticker)
	}
	if _, err := ParseAssetClass(string(p.Type)); err != nil {
		return fmt.Errorf("position %s: %w", p.Ticker, err)
	}
	if strings.TrimSpace(p.Broker) == "" {
		return fmt.Errorf("position %s: broker is required", p.Ticker)
	}
	return nil
}
