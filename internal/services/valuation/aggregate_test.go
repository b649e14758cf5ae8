package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jthierry/folio/internal/models"
)

func TestAggregate_TwoPositions(t *testing.T) {
	aapl := ValuePosition(models.Position{
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.NewFromInt(145),
		Type:     models.AssetStock,
		Currency: "USD",
		Broker:   "ibkr",
	}, &models.Quote{Price: 150}, 0.92)

	vwce := ValuePosition(models.Position{
		Ticker:   "VWCE.DE",
		Quantity: decimal.NewFromInt(25),
		AvgPrice: decimal.NewFromFloat(98.5),
		Type:     models.AssetETF,
		Currency: "EUR",
		Broker:   "degiro",
	}, &models.Quote{Price: 100}, 1.0)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := Aggregate([]models.ValuedPosition{aapl, vwce}, "EUR", now)

	if math.Abs(snap.TotalValue-3880) > 1e-9 {
		t.Errorf("total value: got %v, want 3880", snap.TotalValue)
	}
	if math.Abs(snap.TotalGainLoss-83.5) > 1e-9 {
		t.Errorf("total gain: got %v, want 83.5", snap.TotalGainLoss)
	}
	if snap.BaseCurrency != "EUR" {
		t.Errorf("base currency: got %s", snap.BaseCurrency)
	}

	// Sorted by market value descending
	if snap.Positions[0].Ticker != "VWCE.DE" {
		t.Errorf("largest position first: got %s", snap.Positions[0].Ticker)
	}

	// Weights sum to 100
	var weightSum float64
	for _, p := range snap.Positions {
		weightSum += p.Weight
	}
	if math.Abs(weightSum-100) > 1e-9 {
		t.Errorf("weights sum: got %v", weightSum)
	}

	// Breakdown by type covers both classes
	if len(snap.ByType) != 2 {
		t.Fatalf("by_type groups: got %d", len(snap.ByType))
	}
	etf := snap.ByType["etf"]
	if math.Abs(etf.Value-2500) > 1e-9 {
		t.Errorf("etf group value: got %v", etf.Value)
	}
	if snap.ByBroker["ibkr"].Positions != 1 {
		t.Errorf("ibkr position count: got %d", snap.ByBroker["ibkr"].Positions)
	}
	if len(snap.ByCurrency) != 2 {
		t.Errorf("by_currency groups: got %d", len(snap.ByCurrency))
	}
}

func TestAggregate_Empty(t *testing.T) {
	snap := Aggregate(nil, "EUR", time.Now())

	if snap.TotalValue != 0 || snap.TotalGainLossPct != 0 {
		t.Errorf("empty snapshot totals: %+v", snap)
	}
	if len(snap.Positions) != 0 {
		t.Errorf("expected no positions, got %d", len(snap.Positions))
	}
}

func TestAggregate_ZeroTotalValue(t *testing.T) {
	// All positions unpriced: weights must stay zero, no division by zero
	unpriced := ValuePosition(models.Position{
		Ticker:   "GHOST",
		Quantity: decimal.NewFromInt(5),
		AvgPrice: decimal.NewFromInt(20),
		Currency: "EUR",
	}, nil, 1.0)

	snap := Aggregate([]models.ValuedPosition{unpriced}, "EUR", time.Now())

	if snap.TotalValue != 0 {
		t.Errorf("total value: got %v", snap.TotalValue)
	}
	if snap.Positions[0].Weight != 0 {
		t.Errorf("weight with zero total: got %v", snap.Positions[0].Weight)
	}
	if snap.TotalCost != 100 {
		t.Errorf("unpriced cost still counted: got %v", snap.TotalCost)
	}
}

func TestAggregate_DailyChangePct(t *testing.T) {
	pos := ValuePosition(models.Position{
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.NewFromInt(100),
		Currency: "EUR",
	}, &models.Quote{Price: 102, ChangePercent: 2.0}, 1.0)

	snap := Aggregate([]models.ValuedPosition{pos}, "EUR", time.Now())

	prev := snap.TotalValue - snap.DailyChange
	want := snap.DailyChange / prev * 100
	if math.Abs(snap.DailyChangePct-want) > 1e-9 {
		t.Errorf("daily change pct: got %v, want %v", snap.DailyChangePct, want)
	}
}

func TestAggregate_TieBreakDeterministic(t *testing.T) {
	a := models.ValuedPosition{Ticker: "AAA", Broker: "x", MarketValue: 100}
	b := models.ValuedPosition{Ticker: "AAA", Broker: "y", MarketValue: 100}
	c := models.ValuedPosition{Ticker: "BBB", Broker: "x", MarketValue: 100}

	snap := Aggregate([]models.ValuedPosition{c, b, a}, "EUR", time.Now())

	order := []string{snap.Positions[0].Broker, snap.Positions[1].Broker}
	if snap.Positions[0].Ticker != "AAA" || order[0] != "x" || order[1] != "y" {
		t.Errorf("tie break order: %+v", snap.Positions)
	}
	if snap.Positions[2].Ticker != "BBB" {
		t.Errorf("ticker tie break: %+v", snap.Positions[2])
	}
}
