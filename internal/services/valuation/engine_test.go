package valuation

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jthierry/folio/internal/models"
)

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", label, got, want)
	}
}

func TestValuePosition_ForeignCurrency(t *testing.T) {
	pos := models.Position{
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.NewFromInt(145),
		Type:     models.AssetStock,
		Currency: "USD",
		Broker:   "ibkr",
	}
	quote := &models.Quote{Ticker: "AAPL", Price: 150}

	vp := ValuePosition(pos, quote, 0.92)

	approx(t, vp.MarketValue, 1380, "market value")
	approx(t, vp.CostBasis, 1334, "cost basis")
	approx(t, vp.GainLoss, 46, "gain loss")
	approx(t, vp.GainLossPct, 46/1334.0*100, "gain loss pct")
	if vp.Unpriced || vp.Unconverted {
		t.Errorf("unexpected markers: %+v", vp)
	}
}

func TestValuePosition_BaseCurrency(t *testing.T) {
	pos := models.Position{
		Ticker:   "VWCE.DE",
		Quantity: decimal.NewFromInt(25),
		AvgPrice: decimal.NewFromFloat(98.5),
		Type:     models.AssetETF,
		Currency: "EUR",
	}
	quote := &models.Quote{Ticker: "VWCE.DE", Price: 100}

	vp := ValuePosition(pos, quote, 1.0)

	approx(t, vp.MarketValue, 2500, "market value")
	approx(t, vp.CostBasis, 2462.5, "cost basis")
	approx(t, vp.GainLoss, 37.5, "gain loss")
}

func TestValuePosition_GainLossPctExact(t *testing.T) {
	pos := models.Position{
		Ticker:   "TEST",
		Quantity: decimal.NewFromFloat(3.7),
		AvgPrice: decimal.NewFromFloat(41.13),
		Currency: "USD",
	}
	quote := &models.Quote{Price: 55.91}

	vp := ValuePosition(pos, quote, 0.8731)

	// The percentage must be derived from the reported values, not
	// recomputed from intermediate precision.
	want := vp.GainLoss / vp.CostBasis * 100
	if vp.GainLossPct != want {
		t.Errorf("gain loss pct %v not derived from gain %v / cost %v", vp.GainLossPct, vp.GainLoss, vp.CostBasis)
	}
}

func TestValuePosition_NilQuote(t *testing.T) {
	pos := models.Position{
		Ticker:   "GHOST",
		Quantity: decimal.NewFromInt(5),
		AvgPrice: decimal.NewFromInt(20),
		Currency: "EUR",
	}

	vp := ValuePosition(pos, nil, 1.0)

	if !vp.Unpriced {
		t.Fatal("expected unpriced marker")
	}
	approx(t, vp.MarketValue, 0, "market value")
	approx(t, vp.GainLoss, 0, "gain loss")
	approx(t, vp.CostBasis, 100, "cost basis still computed")
}

func TestValuePosition_FXUnavailable(t *testing.T) {
	pos := models.Position{
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.NewFromInt(145),
		Currency: "USD",
	}
	quote := &models.Quote{Price: 150}

	vp := ValuePosition(pos, quote, 0)

	if !vp.Unconverted {
		t.Fatal("expected unconverted marker")
	}
	// Values stay in the native currency at rate 1
	approx(t, vp.MarketValue, 1500, "market value")
	approx(t, vp.CostBasis, 1450, "cost basis")
}

func TestValuePosition_ZeroCostBasis(t *testing.T) {
	pos := models.Position{
		Ticker:   "FREE",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.Zero,
		Currency: "EUR",
	}
	quote := &models.Quote{Price: 5}

	vp := ValuePosition(pos, quote, 1.0)

	approx(t, vp.GainLossPct, 0, "gain loss pct with zero cost")
	approx(t, vp.GainLoss, 50, "gain loss")
}

func TestValuePosition_DayChange(t *testing.T) {
	pos := models.Position{
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.NewFromInt(100),
		Currency: "USD",
	}
	quote := &models.Quote{Price: 150, ChangePercent: 2.0}

	vp := ValuePosition(pos, quote, 0.92)

	approx(t, vp.DayChange, 10*150*0.92*0.02, "day change")
	approx(t, vp.DayChangePct, 2.0, "day change pct")
}

func TestValuePosition_StaleQuoteCarried(t *testing.T) {
	pos := models.Position{
		Ticker:   "BTC",
		Quantity: decimal.NewFromFloat(0.5),
		AvgPrice: decimal.NewFromInt(30000),
		Type:     models.AssetCrypto,
		Currency: "EUR",
	}
	quote := &models.Quote{Price: 40000, Stale: true}

	vp := ValuePosition(pos, quote, 1.0)

	if !vp.StaleQuote {
		t.Fatal("expected stale quote marker")
	}
	approx(t, vp.MarketValue, 20000, "market value from stale quote")
}
