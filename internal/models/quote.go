package models

import "time"

// Quote is a ticker's current price as served by the price cache.
// Stale is set when the quote is older than the freshness window but was
// served anyway because a refetch failed.
type Quote struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Currency      string    `json:"currency"`
	Stale         bool      `json:"stale,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// PricePoint is one day of an asset's close-price history.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}
