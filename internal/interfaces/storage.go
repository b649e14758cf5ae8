package interfaces

import (
	"context"

	"github.com/jthierry/folio/internal/models"
)

// PositionStore persists position records. The store owns positions
// exclusively; the valuation engine only reads snapshots of them.
type PositionStore interface {
	Load(ctx context.Context) ([]models.Position, error)
	Save(ctx context.Context, positions []models.Position) error
}

// HistoryStore persists the daily portfolio value series.
type HistoryStore interface {
	Load(ctx context.Context) ([]models.HistoryPoint, error)
	Save(ctx context.Context, points []models.HistoryPoint) error
}

// TransactionStore persists the transaction journal.
type TransactionStore interface {
	Load(ctx context.Context) ([]models.Transaction, error)
	Append(ctx context.Context, tx models.Transaction) error
}

// StorageManager coordinates the file-backed stores.
type StorageManager interface {
	Positions() PositionStore
	History() HistoryStore
	Transactions() TransactionStore

	// DataPath returns the base data directory path.
	DataPath() string

	Close() error
}
