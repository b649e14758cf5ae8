package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jthierry/folio/internal/models"
)

// positionHeader is the CSV column layout for the position file, kept
// compatible with hand-edited files and broker exports.
var positionHeader = []string{"ticker", "quantity", "avg_price", "type", "currency", "broker"}

// PositionStore persists positions as a CSV file.
type PositionStore struct {
	mu   sync.Mutex
	path string
}

// Load reads all positions. A missing file is an empty portfolio, not an
// error.
func (s *PositionStore) Load(_ context.Context) ([]models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read positions file: %w", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse positions file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	positions := make([]models.Position, 0, len(records)-1)
	for i, rec := range records {
		if i == 0 && strings.EqualFold(rec[0], "ticker") {
			continue // header row
		}
		if len(rec) < len(positionHeader) {
			return nil, fmt.Errorf("positions file row %d: expected %d columns, got %d", i+1, len(positionHeader), len(rec))
		}

		quantity, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("positions file row %d: bad quantity %q: %w", i+1, rec[1], err)
		}
		avgPrice, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("positions file row %d: bad avg price %q: %w", i+1, rec[2], err)
		}
		class, err := models.ParseAssetClass(rec[3])
		if err != nil {
			return nil, fmt.Errorf("positions file row %d: %w", i+1, err)
		}

		positions = append(positions, models.Position{
			Ticker:   strings.ToUpper(strings.TrimSpace(rec[0])),
			Quantity: quantity,
			AvgPrice: avgPrice,
			Type:     class,
			Currency: strings.ToUpper(strings.TrimSpace(rec[4])),
			Broker:   strings.TrimSpace(rec[5]),
		})
	}

	return positions, nil
}

// Save replaces the position file atomically.
func (s *PositionStore) Save(_ context.Context, positions []models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(positionHeader); err != nil {
		return fmt.Errorf("failed to write positions header: %w", err)
	}
	for _, p := range positions {
		row := []string{
			p.Ticker,
			p.Quantity.String(),
			p.AvgPrice.String(),
			string(p.Type),
			p.Currency,
			p.Broker,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write position %s: %w", p.Ticker, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode positions: %w", err)
	}

	return writeAtomic(s.path, buf.Bytes())
}
