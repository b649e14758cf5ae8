package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jthierry/folio/internal/models"
)

// TransactionStore persists the transaction journal as a JSON file.
type TransactionStore struct {
	mu   sync.Mutex
	path string
}

// Load reads the full journal in append order.
func (s *TransactionStore) Load(_ context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *TransactionStore) load() ([]models.Transaction, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions file: %w", err)
	}

	var txs []models.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("failed to parse transactions file: %w", err)
	}
	return txs, nil
}

// Append adds one transaction to the journal atomically.
func (s *TransactionStore) Append(_ context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.load()
	if err != nil {
		return err
	}
	txs = append(txs, tx)

	data, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}

	return writeAtomic(s.path, data)
}
