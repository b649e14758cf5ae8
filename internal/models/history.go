package models

import "time"

// HistoryDateFormat is the canonical date layout for history points.
const HistoryDateFormat = "2006-01-02"

// HistoryPoint is one day's total portfolio value in the base currency.
// A date-ascending sequence of points forms the value time series the KPI
// calculator consumes. Appended once per day; re-recording a date replaces
// the existing point.
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// DateKey returns the canonical YYYY-MM-DD form of the point's date.
func (p HistoryPoint) DateKey() string {
	return p.Date.Format(HistoryDateFormat)
}
