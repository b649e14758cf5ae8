// Package positions owns position records and the transaction journal.
// The valuation pipeline only ever reads snapshots from here.
package positions

import (
	"context"
	"fmt"
	"strings"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/interfaces"
	"github.com/jthierry/folio/internal/models"
)

// Service implements PositionService on top of the position store.
type Service struct {
	config  *common.Config
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new position service
func NewService(config *common.Config, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		config:  config,
		storage: storage,
		logger:  logger,
	}
}

// List returns all active positions.
func (s *Service) List(ctx context.Context) ([]models.Position, error) {
	return s.storage.Positions().Load(ctx)
}

// Get returns the position for a broker+ticker pair.
func (s *Service) Get(ctx context.Context, broker, ticker string) (*models.Position, error) {
	positions, err := s.storage.Positions().Load(ctx)
	if err != nil {
		return nil, err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, p := range positions {
		if p.Ticker == ticker && (broker == "" || p.Broker == broker) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("position %s not found", ticker)
}

// Add creates a new position. The broker+ticker pair must be unique;
// the same ticker at another broker is a separate position.
func (s *Service) Add(ctx context.Context, pos models.Position) error {
	pos.Ticker = strings.ToUpper(strings.TrimSpace(pos.Ticker))
	pos.Currency = strings.ToUpper(strings.TrimSpace(pos.Currency))

	if err := pos.Validate(); err != nil {
		return err
	}
	if pos.Quantity.IsZero() {
		return fmt.Errorf("position %s: quantity must be positive", pos.Ticker)
	}

	positions, err := s.storage.Positions().Load(ctx)
	if err != nil {
		return err
	}

	for _, existing := range positions {
		if existing.Key() == pos.Key() {
			return fmt.Errorf("position %s already exists at broker %s", pos.Ticker, pos.Broker)
		}
	}

	positions = append(positions, pos)
	if err := s.storage.Positions().Save(ctx, positions); err != nil {
		return err
	}

	s.logger.Info().Str("ticker", pos.Ticker).Str("broker", pos.Broker).Msg("Position added")
	return nil
}

// Update replaces the stored position matching broker+ticker. Updating to a
// zero quantity removes the position.
func (s *Service) Update(ctx context.Context, pos models.Position) error {
	pos.Ticker = strings.ToUpper(strings.TrimSpace(pos.Ticker))

	if err := pos.Validate(); err != nil {
		return err
	}

	positions, err := s.storage.Positions().Load(ctx)
	if err != nil {
		return err
	}

	found := false
	updated := positions[:0]
	for _, existing := range positions {
		if existing.Key() == pos.Key() {
			found = true
			if pos.Quantity.IsZero() {
				continue // zero quantity removes the position
			}
			existing = pos
		}
		updated = append(updated, existing)
	}
	if !found {
		return fmt.Errorf("position %s not found at broker %s", pos.Ticker, pos.Broker)
	}

	return s.storage.Positions().Save(ctx, updated)
}

// Delete removes a position explicitly.
func (s *Service) Delete(ctx context.Context, broker, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	positions, err := s.storage.Positions().Load(ctx)
	if err != nil {
		return err
	}

	found := false
	remaining := positions[:0]
	for _, existing := range positions {
		if existing.Ticker == ticker && (broker == "" || existing.Broker == broker) {
			found = true
			continue
		}
		remaining = append(remaining, existing)
	}
	if !found {
		return fmt.Errorf("position %s not found", ticker)
	}

	if err := s.storage.Positions().Save(ctx, remaining); err != nil {
		return err
	}

	s.logger.Info().Str("ticker", ticker).Str("broker", broker).Msg("Position deleted")
	return nil
}

// Transactions returns the journal in append order.
func (s *Service) Transactions(ctx context.Context) ([]models.Transaction, error) {
	return s.storage.Transactions().Load(ctx)
}

// Ensure Service implements PositionService
var _ interfaces.PositionService = (*Service)(nil)
