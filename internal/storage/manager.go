// Package storage implements file-based persistence for positions, the
// portfolio value history and the transaction journal.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/interfaces"
)

// Manager coordinates the file-backed stores under one data directory.
type Manager struct {
	basePath     string
	positions    *PositionStore
	history      *HistoryStore
	transactions *TransactionStore
	logger       *common.Logger
}

// NewManager creates the data directory and opens the stores.
func NewManager(logger *common.Logger, path string) (*Manager, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data path %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("Storage opened")

	return &Manager{
		basePath:     path,
		positions:    &PositionStore{path: filepath.Join(path, "positions.csv")},
		history:      &HistoryStore{path: filepath.Join(path, "historical_values.json")},
		transactions: &TransactionStore{path: filepath.Join(path, "transactions.json")},
		logger:       logger,
	}, nil
}

// Positions returns the position store.
func (m *Manager) Positions() interfaces.PositionStore {
	return m.positions
}

// History returns the history store.
func (m *Manager) History() interfaces.HistoryStore {
	return m.history
}

// Transactions returns the transaction journal store.
func (m *Manager) Transactions() interfaces.TransactionStore {
	return m.transactions
}

// DataPath returns the base data directory path.
func (m *Manager) DataPath() string {
	return m.basePath
}

// Close is a no-op for file-based storage.
func (m *Manager) Close() error {
	return nil
}

// writeAtomic writes data to path via a temp file and rename so a crash
// mid-write never leaves a truncated file behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
