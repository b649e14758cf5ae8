package interfaces

import (
	"context"

	"github.com/jthierry/folio/internal/models"
)

// PortfolioService runs the valuation pipeline: positions → quotes →
// valuation → aggregation → history → KPIs.
type PortfolioService interface {
	// Snapshot values all positions and returns the aggregated snapshot.
	// force bypasses the quote cache freshness window.
	Snapshot(ctx context.Context, force bool) (*models.PortfolioSnapshot, error)

	// History returns the recorded value series for a window
	// ("all" or a day count such as "30", "90", "365").
	History(ctx context.Context, window string) ([]models.HistoryPoint, error)

	// KPIs computes performance statistics over a history window.
	KPIs(ctx context.Context, window string) (*models.KPISet, error)

	// AssetHistory returns close prices for a single asset from the
	// source matching its class.
	AssetHistory(ctx context.Context, ticker string, class models.AssetClass, period string) ([]models.PricePoint, error)
}

// PositionService owns position records and the transaction journal.
type PositionService interface {
	List(ctx context.Context) ([]models.Position, error)
	Get(ctx context.Context, broker, ticker string) (*models.Position, error)
	Add(ctx context.Context, pos models.Position) error
	Update(ctx context.Context, pos models.Position) error
	Delete(ctx context.Context, broker, ticker string) error

	// Apply mutates the matching position per the transaction type and
	// appends the transaction to the journal.
	Apply(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
	Transactions(ctx context.Context) ([]models.Transaction, error)
}

// HistoryService maintains the daily portfolio value time series.
type HistoryService interface {
	// Record upserts the point for a date; re-recording a date replaces it.
	Record(ctx context.Context, point models.HistoryPoint) error

	// Range returns the most recent N days ascending, or the full series
	// when days <= 0. No synthetic points are invented for gaps.
	Range(ctx context.Context, days int) ([]models.HistoryPoint, error)
}
