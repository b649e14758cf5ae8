package models

import "time"

// ValuedPosition is a Position enriched with current market data, expressed
// in the portfolio base currency. Derived on every valuation pass; never
// persisted.
type ValuedPosition struct {
	Ticker       string     `json:"ticker"`
	Name         string     `json:"name,omitempty"`
	Type         AssetClass `json:"type"`
	Currency     string     `json:"currency"`
	Broker       string     `json:"broker"`
	Quantity     float64    `json:"quantity"`
	AvgPrice     float64    `json:"avg_price"`
	CurrentPrice float64    `json:"current_price"`

	// Base-currency values
	MarketValue  float64 `json:"market_value"`
	CostBasis    float64 `json:"cost_basis"`
	GainLoss     float64 `json:"gain_loss"`
	GainLossPct  float64 `json:"gain_loss_pct"`
	DayChange    float64 `json:"day_change"`
	DayChangePct float64 `json:"day_change_pct"`
	Weight       float64 `json:"weight"`

	// Failure markers. A position is never dropped because pricing failed.
	Unpriced    bool `json:"unpriced,omitempty"`    // no current or stale quote
	Unconverted bool `json:"unconverted,omitempty"` // FX unavailable; values in native currency
	StaleQuote  bool `json:"stale_quote,omitempty"` // priced from an expired cached quote
}

// Breakdown is one group of a snapshot breakdown (by type, broker or
// currency). Cost/GainLoss are populated for the type breakdown,
// Positions for the broker breakdown, matching what each view needs.
type Breakdown struct {
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Cost        float64 `json:"cost,omitempty"`
	GainLoss    float64 `json:"gain_loss,omitempty"`
	GainLossPct float64 `json:"gain_loss_pct,omitempty"`
	Positions   int     `json:"positions,omitempty"`
}

// PortfolioSnapshot is the unit of output the engine produces per request.
// Fully derived; never persisted.
type PortfolioSnapshot struct {
	TotalValue       float64                  `json:"total_value"`
	TotalCost        float64                  `json:"total_cost"`
	TotalGainLoss    float64                  `json:"total_gain_loss"`
	TotalGainLossPct float64                  `json:"total_gain_loss_pct"`
	DailyChange      float64                  `json:"daily_change"`
	DailyChangePct   float64                  `json:"daily_change_pct"`
	BaseCurrency     string                   `json:"base_currency"`
	Positions        []ValuedPosition         `json:"positions"`
	ByType           map[string]Breakdown     `json:"by_type"`
	ByBroker         map[string]Breakdown     `json:"by_broker"`
	ByCurrency       map[string]Breakdown     `json:"by_currency"`
	LastUpdated      time.Time                `json:"last_updated"`
}

// PortfolioSummary is the snapshot without per-position detail.
type PortfolioSummary struct {
	TotalValue       float64   `json:"total_value"`
	TotalCost        float64   `json:"total_cost"`
	TotalGainLoss    float64   `json:"total_gain_loss"`
	TotalGainLossPct float64   `json:"total_gain_loss_pct"`
	DailyChange      float64   `json:"daily_change"`
	DailyChangePct   float64   `json:"daily_change_pct"`
	BaseCurrency     string    `json:"base_currency"`
	PositionCount    int       `json:"position_count"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Summary reduces a snapshot to its totals.
func (s *PortfolioSnapshot) Summary() PortfolioSummary {
	return PortfolioSummary{
		TotalValue:       s.TotalValue,
		TotalCost:        s.TotalCost,
		TotalGainLoss:    s.TotalGainLoss,
		TotalGainLossPct: s.TotalGainLossPct,
		DailyChange:      s.DailyChange,
		DailyChangePct:   s.DailyChangePct,
		BaseCurrency:     s.BaseCurrency,
		PositionCount:    len(s.Positions),
		LastUpdated:      s.LastUpdated,
	}
}
