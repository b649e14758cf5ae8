package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAssetClass(t *testing.T) {
	for input, want := range map[string]AssetClass{
		"stock":  AssetStock,
		" ETF ":  AssetETF,
		"Fund":   AssetFund,
		"CRYPTO": AssetCrypto,
	} {
		got, err := ParseAssetClass(input)
		if err != nil {
			t.Errorf("parse %q: %v", input, err)
		}
		if got != want {
			t.Errorf("parse %q: got %s, want %s", input, got, want)
		}
	}

	for _, input := range []string{"", "bond", "stocks"} {
		if _, err := ParseAssetClass(input); err == nil {
			t.Errorf("parse %q: expected error", input)
		}
	}
}

func TestPositionValidate(t *testing.T) {
	valid := Position{
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(10),
		AvgPrice: decimal.NewFromInt(145),
		Type:     AssetStock,
		Currency: "USD",
		Broker:   "ibkr",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid position: %v", err)
	}

	cases := map[string]func(p *Position){
		"empty ticker":      func(p *Position) { p.Ticker = "" },
		"negative quantity": func(p *Position) { p.Quantity = decimal.NewFromInt(-1) },
		"negative price":    func(p *Position) { p.AvgPrice = decimal.NewFromInt(-1) },
		"bad asset class":   func(p *Position) { p.Type = "bond" },
		"missing broker":    func(p *Position) { p.Broker = " " },
	}
	for name, mutate := range cases {
		p := valid
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPositionKey(t *testing.T) {
	p := Position{Ticker: "AAPL", Broker: "ibkr"}
	if p.Key() != "ibkr:AAPL" {
		t.Errorf("key: got %s", p.Key())
	}
}
