// Package valuation converts positions into base-currency market values and
// rolls them up into portfolio snapshots.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/jthierry/folio/internal/models"
)

// ValuePosition converts one position's quantity, average price and currency
// into current market value and gain/loss in the portfolio base currency.
//
// The cost basis is converted at the current FX rate, not the rate at
// acquisition, since per-lot historical rates are not tracked.
//
// A nil quote marks the position unpriced rather than dropping it; market
// value and gain/loss are zero but the cost basis stays visible. fxRate <= 0
// marks the position unconverted and leaves values in the native currency.
func ValuePosition(pos models.Position, quote *models.Quote, fxRate float64) models.ValuedPosition {
	vp := models.ValuedPosition{
		Ticker:   pos.Ticker,
		Type:     pos.Type,
		Currency: pos.Currency,
		Broker:   pos.Broker,
		Quantity: pos.Quantity.InexactFloat64(),
		AvgPrice: pos.AvgPrice.InexactFloat64(),
	}

	rate := decimal.NewFromFloat(fxRate)
	if fxRate <= 0 {
		vp.Unconverted = true
		rate = decimal.NewFromInt(1)
	}

	// Cost basis is computable regardless of quote availability
	vp.CostBasis = pos.Quantity.Mul(pos.AvgPrice).Mul(rate).InexactFloat64()

	if quote == nil {
		vp.Unpriced = true
		return vp
	}

	vp.Name = quote.Name
	vp.CurrentPrice = quote.Price
	vp.StaleQuote = quote.Stale

	price := decimal.NewFromFloat(quote.Price)
	vp.MarketValue = pos.Quantity.Mul(price).Mul(rate).InexactFloat64()
	vp.GainLoss = vp.MarketValue - vp.CostBasis
	if vp.CostBasis != 0 {
		vp.GainLossPct = vp.GainLoss / vp.CostBasis * 100
	}

	change := decimal.NewFromFloat(quote.ChangePercent).Div(decimal.NewFromInt(100))
	vp.DayChange = pos.Quantity.Mul(price).Mul(rate).Mul(change).InexactFloat64()
	vp.DayChangePct = quote.ChangePercent

	return vp
}
