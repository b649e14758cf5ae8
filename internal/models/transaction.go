package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of position mutation a transaction applies.
type TransactionType string

const (
	TransactionBuy      TransactionType = "buy"
	TransactionSell     TransactionType = "sell"
	TransactionDividend TransactionType = "dividend"
)

// ParseTransactionType validates and normalizes a transaction type string.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TransactionBuy:
		return TransactionBuy, nil
	case TransactionSell:
		return TransactionSell, nil
	case TransactionDividend:
		return TransactionDividend, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one entry of the position journal. A buy increases
// quantity and recomputes the weighted-average cost, a sell decreases
// quantity, a dividend leaves quantity unchanged.
type Transaction struct {
	ID       string          `json:"id"`
	Type     TransactionType `json:"type"`
	Ticker   string          `json:"ticker"`
	Broker   string          `json:"broker"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`  // per unit; for dividends the total amount received
	Date     time.Time       `json:"date"`
	Note     string          `json:"note,omitempty"`
}
