package positions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jthierry/folio/internal/models"
)

// Apply records a transaction in the journal and folds its effect into the
// matching position. Buys recompute the weighted average cost, sells reduce
// the quantity, and dividends leave the holding untouched.
func (s *Service) Apply(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	tx.Ticker = strings.ToUpper(strings.TrimSpace(tx.Ticker))
	if tx.Ticker == "" {
		return nil, fmt.Errorf("transaction: ticker is required")
	}
	parsed, err := models.ParseTransactionType(string(tx.Type))
	if err != nil {
		return nil, err
	}
	tx.Type = parsed
	if tx.Price.IsNegative() {
		return nil, fmt.Errorf("transaction %s: price cannot be negative", tx.Ticker)
	}
	if tx.Type != models.TransactionDividend && !tx.Quantity.IsPositive() {
		return nil, fmt.Errorf("transaction %s: quantity must be positive", tx.Ticker)
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}

	positions, err := s.storage.Positions().Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, p := range positions {
		if p.Ticker == tx.Ticker && p.Broker == tx.Broker {
			idx = i
			break
		}
	}

	switch tx.Type {
	case models.TransactionBuy:
		if idx < 0 {
			positions = append(positions, models.Position{
				Ticker:   tx.Ticker,
				Quantity: tx.Quantity,
				AvgPrice: tx.Price,
				Type:     models.AssetStock,
				Currency: s.config.Portfolio.BaseCurrency,
				Broker:   tx.Broker,
			})
		} else {
			pos := &positions[idx]
			pos.AvgPrice = weightedAvgCost(pos.Quantity, pos.AvgPrice, tx.Quantity, tx.Price)
			pos.Quantity = pos.Quantity.Add(tx.Quantity)
		}

	case models.TransactionSell:
		if idx < 0 {
			return nil, fmt.Errorf("sell %s: no position held", tx.Ticker)
		}
		pos := &positions[idx]
		if tx.Quantity.GreaterThan(pos.Quantity) {
			return nil, fmt.Errorf("sell %s: quantity %s exceeds holding %s",
				tx.Ticker, tx.Quantity, pos.Quantity)
		}
		pos.Quantity = pos.Quantity.Sub(tx.Quantity)
		if pos.Quantity.IsZero() {
			positions = append(positions[:idx], positions[idx+1:]...)
		}

	case models.TransactionDividend:
		// Journal only. No change to quantity or average cost.
	}

	if tx.Type != models.TransactionDividend {
		if err := s.storage.Positions().Save(ctx, positions); err != nil {
			return nil, err
		}
	}
	if err := s.storage.Transactions().Append(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("type", string(tx.Type)).
		Str("ticker", tx.Ticker).
		Str("quantity", tx.Quantity.String()).
		Msg("Transaction applied")

	return &tx, nil
}

// weightedAvgCost returns the blended average cost after buying addQty units
// at addPrice on top of an existing holding.
func weightedAvgCost(qty, avg, addQty, addPrice decimal.Decimal) decimal.Decimal {
	totalQty := qty.Add(addQty)
	if totalQty.IsZero() {
		return decimal.Zero
	}
	totalCost := qty.Mul(avg).Add(addQty.Mul(addPrice))
	return totalCost.Div(totalQty)
}
