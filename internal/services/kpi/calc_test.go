package kpi

import (
	"math"
	"testing"
	"time"

	"github.com/jthierry/folio/internal/models"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func series(values ...float64) []models.HistoryPoint {
	points := make([]models.HistoryPoint, len(values))
	for i, v := range values {
		points[i] = models.HistoryPoint{Date: day(i), Value: v}
	}
	return points
}

func TestCompute_TooFewPoints(t *testing.T) {
	for _, points := range [][]models.HistoryPoint{nil, series(10000)} {
		set := Compute(points, 0)
		if set.CAGR != nil || set.MaxDrawdown != nil || set.Volatility != nil ||
			set.SharpeRatio != nil || set.BestDay != nil || set.WorstDay != nil {
			t.Errorf("expected all nil for %d points: %+v", len(points), set)
		}
		if set.DaysTracked != len(points) {
			t.Errorf("days tracked: got %d", set.DaysTracked)
		}
	}
}

func TestCompute_MaxDrawdown(t *testing.T) {
	set := Compute(series(10000, 11000, 9000, 12000), 0)

	if set.MaxDrawdown == nil {
		t.Fatal("expected max drawdown")
	}
	want := (11000.0 - 9000.0) / 11000.0 * 100
	if math.Abs(*set.MaxDrawdown-want) > 1e-9 {
		t.Errorf("max drawdown: got %v, want %v", *set.MaxDrawdown, want)
	}
	if set.MaxDrawdownDate == nil || *set.MaxDrawdownDate != day(2).Format(models.HistoryDateFormat) {
		t.Errorf("drawdown date: got %v", set.MaxDrawdownDate)
	}
}

func TestCompute_DrawdownUnchangedByNewPeak(t *testing.T) {
	// A later all-time high must not shrink the recorded drawdown
	base := Compute(series(10000, 11000, 9000, 12000), 0)
	extended := Compute(series(10000, 11000, 9000, 12000, 15000), 0)

	if math.Abs(*base.MaxDrawdown-*extended.MaxDrawdown) > 1e-9 {
		t.Errorf("drawdown changed by new peak: %v vs %v", *base.MaxDrawdown, *extended.MaxDrawdown)
	}
}

func TestCompute_MonotonicSeriesZeroDrawdown(t *testing.T) {
	set := Compute(series(100, 110, 120, 130), 0)

	if set.MaxDrawdown == nil || *set.MaxDrawdown != 0 {
		t.Errorf("monotonic drawdown: got %v", set.MaxDrawdown)
	}
	if set.MaxDrawdownDate != nil {
		t.Errorf("no trough date for zero drawdown, got %v", *set.MaxDrawdownDate)
	}
}

func TestCompute_BestWorstDay(t *testing.T) {
	set := Compute(series(100, 110, 99), 0)

	if set.BestDay == nil || math.Abs(*set.BestDay-10) > 1e-9 {
		t.Errorf("best day: got %v", set.BestDay)
	}
	if set.WorstDay == nil || math.Abs(*set.WorstDay-(-10)) > 1e-9 {
		t.Errorf("worst day: got %v", set.WorstDay)
	}
}

func TestCompute_CAGR(t *testing.T) {
	points := []models.HistoryPoint{
		{Date: day(0), Value: 10000},
		{Date: day(0).AddDate(2, 0, 0), Value: 12100},
	}
	set := Compute(points, 0)

	if set.CAGR == nil {
		t.Fatal("expected CAGR")
	}
	years := points[1].Date.Sub(points[0].Date).Hours() / 24 / 365.25
	want := (math.Pow(1.21, 1/years) - 1) * 100
	if math.Abs(*set.CAGR-want) > 1e-9 {
		t.Errorf("CAGR: got %v, want %v", *set.CAGR, want)
	}
}

func TestCompute_CAGRNotComputable(t *testing.T) {
	set := Compute(series(0, 100, 110), 0)
	if set.CAGR != nil {
		t.Errorf("CAGR with zero start: got %v", *set.CAGR)
	}
}

func TestCompute_FlatSeriesNoSharpe(t *testing.T) {
	set := Compute(series(100, 100, 100), 0)

	if set.Volatility == nil || *set.Volatility != 0 {
		t.Errorf("flat volatility: got %v", set.Volatility)
	}
	if set.SharpeRatio != nil {
		t.Errorf("Sharpe with zero stddev must be nil, got %v", *set.SharpeRatio)
	}
}

func TestCompute_VolatilityAnnualized(t *testing.T) {
	set := Compute(series(100, 101, 99, 102), 0.03)

	if set.Volatility == nil || set.SharpeRatio == nil {
		t.Fatal("expected volatility and Sharpe")
	}
	returns := []float64{0.01, -2.0 / 101.0, 3.0 / 99.0}

	mean := (returns[0] + returns[1] + returns[2]) / 3
	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	stddev := math.Sqrt(ss / 2) // sample stddev

	wantVol := stddev * math.Sqrt(252) * 100
	if math.Abs(*set.Volatility-wantVol) > 1e-9 {
		t.Errorf("volatility: got %v, want %v", *set.Volatility, wantVol)
	}

	wantSharpe := (mean*252 - 0.03) / (stddev * math.Sqrt(252))
	if math.Abs(*set.SharpeRatio-wantSharpe) > 1e-9 {
		t.Errorf("sharpe: got %v, want %v", *set.SharpeRatio, wantSharpe)
	}
}

func TestCompute_SkipsZeroPredecessors(t *testing.T) {
	// A zero value mid-series must not produce an infinite return
	set := Compute(series(100, 0, 100, 110), 0)

	if set.BestDay == nil || math.IsInf(*set.BestDay, 0) {
		t.Errorf("best day with zero predecessor: got %v", set.BestDay)
	}
}
