package valuation

import (
	"sort"
	"time"

	"github.com/jthierry/folio/internal/models"
)

// Aggregate rolls valued positions up into a portfolio snapshot: totals,
// per-position weights and breakdowns by asset type, broker and currency.
// Group keys are plain strings; the JSON encoder sorts map keys, so
// breakdown output ordering is deterministic.
func Aggregate(valued []models.ValuedPosition, baseCurrency string, now time.Time) *models.PortfolioSnapshot {
	positions := make([]models.ValuedPosition, len(valued))
	copy(positions, valued)

	var totalValue, totalCost, totalGain, dailyChange float64
	for _, vp := range positions {
		totalValue += vp.MarketValue
		totalCost += vp.CostBasis
		totalGain += vp.GainLoss
		dailyChange += vp.DayChange
	}

	for i := range positions {
		if totalValue > 0 {
			positions[i].Weight = positions[i].MarketValue / totalValue * 100
		}
	}

	// Largest positions first; ticker then broker break ties so output
	// ordering is deterministic
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].MarketValue != positions[j].MarketValue {
			return positions[i].MarketValue > positions[j].MarketValue
		}
		if positions[i].Ticker != positions[j].Ticker {
			return positions[i].Ticker < positions[j].Ticker
		}
		return positions[i].Broker < positions[j].Broker
	})

	snapshot := &models.PortfolioSnapshot{
		TotalValue:    totalValue,
		TotalCost:     totalCost,
		TotalGainLoss: totalGain,
		DailyChange:   dailyChange,
		BaseCurrency:  baseCurrency,
		Positions:     positions,
		ByType:        breakdownByType(positions, totalValue),
		ByBroker:      breakdownByBroker(positions, totalValue),
		ByCurrency:    breakdownByCurrency(positions, totalValue),
		LastUpdated:   now,
	}

	if totalCost > 0 {
		snapshot.TotalGainLossPct = totalGain / totalCost * 100
	}

	// Percentage against yesterday's implied value
	if prev := totalValue - dailyChange; prev > 0 {
		snapshot.DailyChangePct = dailyChange / prev * 100
	}

	return snapshot
}

func breakdownByType(positions []models.ValuedPosition, totalValue float64) map[string]models.Breakdown {
	groups := make(map[string]models.Breakdown)
	for _, vp := range positions {
		g := groups[string(vp.Type)]
		g.Value += vp.MarketValue
		g.Cost += vp.CostBasis
		groups[string(vp.Type)] = g
	}
	for k, g := range groups {
		g.GainLoss = g.Value - g.Cost
		if g.Cost > 0 {
			g.GainLossPct = g.GainLoss / g.Cost * 100
		}
		if totalValue > 0 {
			g.Weight = g.Value / totalValue * 100
		}
		groups[k] = g
	}
	return groups
}

func breakdownByBroker(positions []models.ValuedPosition, totalValue float64) map[string]models.Breakdown {
	groups := make(map[string]models.Breakdown)
	for _, vp := range positions {
		g := groups[vp.Broker]
		g.Value += vp.MarketValue
		g.Positions++
		groups[vp.Broker] = g
	}
	for k, g := range groups {
		if totalValue > 0 {
			g.Weight = g.Value / totalValue * 100
		}
		groups[k] = g
	}
	return groups
}

func breakdownByCurrency(positions []models.ValuedPosition, totalValue float64) map[string]models.Breakdown {
	groups := make(map[string]models.Breakdown)
	for _, vp := range positions {
		g := groups[vp.Currency]
		g.Value += vp.MarketValue
		groups[vp.Currency] = g
	}
	for k, g := range groups {
		if totalValue > 0 {
			g.Weight = g.Value / totalValue * 100
		}
		groups[k] = g
	}
	return groups
}
