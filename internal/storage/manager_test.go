package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	return m
}

func TestPositionStore_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	positions := []models.Position{
		{
			Ticker:   "AAPL",
			Quantity: decimal.NewFromFloat(10.5),
			AvgPrice: decimal.NewFromFloat(145.33),
			Type:     models.AssetStock,
			Currency: "USD",
			Broker:   "ibkr",
		},
		{
			Ticker:   "BTC",
			Quantity: decimal.NewFromFloat(0.25),
			AvgPrice: decimal.NewFromInt(30000),
			Type:     models.AssetCrypto,
			Currency: "EUR",
			Broker:   "kraken",
		},
	}

	require.NoError(t, m.Positions().Save(ctx, positions))

	loaded, err := m.Positions().Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	require.Equal(t, "AAPL", loaded[0].Ticker)
	require.True(t, loaded[0].Quantity.Equal(decimal.NewFromFloat(10.5)))
	require.True(t, loaded[0].AvgPrice.Equal(decimal.NewFromFloat(145.33)))
	require.Equal(t, models.AssetCrypto, loaded[1].Type)
}

func TestPositionStore_MissingFileIsEmpty(t *testing.T) {
	m := newTestManager(t)

	positions, err := m.Positions().Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, positions)
}

func TestPositionStore_MalformedRow(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(common.NewSilentLogger(), dir)
	require.NoError(t, err)

	csv := "ticker,quantity,avg_price,type,currency,broker\nAAPL,notanumber,145,stock,USD,ibkr\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "positions.csv"), []byte(csv), 0o644))

	_, err = m.Positions().Load(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "row")
}

func TestHistoryStore_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	points := []models.HistoryPoint{
		{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Value: 10000},
		{Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Value: 10150.55},
	}

	require.NoError(t, m.History().Save(ctx, points))

	loaded, err := m.History().Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "2026-02-01", loaded[0].DateKey())
	require.Equal(t, 10150.55, loaded[1].Value)
}

func TestTransactionStore_Append(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	tx := models.Transaction{
		ID:       "tx-1",
		Type:     models.TransactionBuy,
		Ticker:   "AAPL",
		Quantity: decimal.NewFromInt(5),
		Price:    decimal.NewFromInt(150),
		Date:     time.Now().UTC(),
	}
	require.NoError(t, m.Transactions().Append(ctx, tx))

	tx.ID = "tx-2"
	tx.Type = models.TransactionSell
	require.NoError(t, m.Transactions().Append(ctx, tx))

	loaded, err := m.Transactions().Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "tx-1", loaded[0].ID)
	require.Equal(t, models.TransactionSell, loaded[1].Type)
}

func TestManager_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	m, err := NewManager(common.NewSilentLogger(), dir)
	require.NoError(t, err)
	require.Equal(t, dir, m.DataPath())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
