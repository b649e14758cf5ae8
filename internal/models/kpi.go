package models

// KPISet holds risk/performance statistics derived from the portfolio value
// time series. All percentage fields are plain decimal percentages (7.5
// means 7.5%). A nil field means "not available" (not computable from the
// series), which is distinct from a computed zero.
type KPISet struct {
	CAGR            *float64 `json:"cagr"`
	MaxDrawdown     *float64 `json:"max_drawdown"`
	MaxDrawdownDate *string  `json:"max_drawdown_date"`
	Volatility      *float64 `json:"volatility"`
	SharpeRatio     *float64 `json:"sharpe_ratio"`
	BestDay         *float64 `json:"best_day"`
	WorstDay        *float64 `json:"worst_day"`
	DaysTracked     int      `json:"days_tracked"`
}

// Available reports whether any KPI could be computed.
func (k KPISet) Available() bool {
	return k.CAGR != nil || k.MaxDrawdown != nil || k.Volatility != nil ||
		k.SharpeRatio != nil || k.BestDay != nil || k.WorstDay != nil
}
