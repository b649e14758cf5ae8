// Package kpi derives performance statistics from the portfolio value time
// series. Everything here is stateless and recomputed on demand.
package kpi

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/jthierry/folio/internal/models"
)

// tradingDaysPerYear is the annualization factor for daily returns.
const tradingDaysPerYear = 252

// Compute derives CAGR, max drawdown, volatility, Sharpe ratio and
// best/worst day from a date-ascending value series. riskFreeRate is annual,
// as a decimal (0.03 = 3%).
//
// With fewer than two points every KPI reports nil ("not available"),
// never a zero that could be mistaken for a computed result. The series may
// have uneven spacing; the math works on whatever points exist.
func Compute(points []models.HistoryPoint, riskFreeRate float64) models.KPISet {
	set := models.KPISet{DaysTracked: len(points)}
	if len(points) < 2 {
		return set
	}

	returns := dailyReturns(points)

	if len(returns) > 0 {
		best, worst := returns[0], returns[0]
		for _, r := range returns[1:] {
			if r > best {
				best = r
			}
			if r < worst {
				worst = r
			}
		}
		set.BestDay = fptr(best * 100)
		set.WorstDay = fptr(worst * 100)
	}

	if len(returns) >= 2 {
		stddev := stat.StdDev(returns, nil)
		set.Volatility = fptr(stddev * math.Sqrt(tradingDaysPerYear) * 100)

		if stddev > 0 {
			mean := stat.Mean(returns, nil)
			sharpe := (mean*tradingDaysPerYear - riskFreeRate) / (stddev * math.Sqrt(tradingDaysPerYear))
			set.SharpeRatio = fptr(sharpe)
		}
	}

	if cagr, ok := computeCAGR(points); ok {
		set.CAGR = fptr(cagr)
	}

	dd, trough := maxDrawdown(points)
	set.MaxDrawdown = fptr(dd)
	if dd > 0 {
		date := trough.DateKey()
		set.MaxDrawdownDate = &date
	}

	return set
}

// dailyReturns computes r_i = (v_i − v_{i−1}) / v_{i−1}, skipping points
// whose predecessor value is zero.
func dailyReturns(points []models.HistoryPoint) []float64 {
	returns := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (points[i].Value-prev)/prev)
	}
	return returns
}

// computeCAGR returns the compound annual growth rate as a percentage.
// Not computable when the starting value or the elapsed time is not positive.
func computeCAGR(points []models.HistoryPoint) (float64, bool) {
	first, last := points[0], points[len(points)-1]

	years := last.Date.Sub(first.Date).Hours() / 24 / 365.25
	if first.Value <= 0 || years <= 0 {
		return 0, false
	}

	return (math.Pow(last.Value/first.Value, 1/years) - 1) * 100, true
}

// maxDrawdown scans the series once, tracking the running peak, and returns
// the deepest peak-to-trough decline as a percentage with the trough date.
func maxDrawdown(points []models.HistoryPoint) (float64, models.HistoryPoint) {
	peak := points[0].Value
	maxDD := 0.0
	trough := points[0]

	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - p.Value) / peak; dd > maxDD {
			maxDD = dd
			trough = p
		}
	}

	return maxDD * 100, trough
}

func fptr(v float64) *float64 {
	return &v
}
