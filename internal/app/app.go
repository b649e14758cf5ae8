// Package app wires configuration, storage, clients and services into a
// single application core shared by the server entrypoint and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jthierry/folio/internal/clients/coingecko"
	"github.com/jthierry/folio/internal/clients/fx"
	"github.com/jthierry/folio/internal/clients/yahoo"
	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/interfaces"
	"github.com/jthierry/folio/internal/pricecache"
	"github.com/jthierry/folio/internal/services/history"
	"github.com/jthierry/folio/internal/services/portfolio"
	"github.com/jthierry/folio/internal/services/positions"
	"github.com/jthierry/folio/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	EquityClient     interfaces.MarketDataClient
	CryptoClient     interfaces.MarketDataClient
	FXClient         interfaces.FXClient
	PriceCache       interfaces.PriceCache
	PositionService  interfaces.PositionService
	HistoryService   interfaces.HistoryService
	PortfolioService interfaces.PortfolioService
	StartupTime      time.Time

	scheduler *Scheduler
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, API clients and services.
// configPath may be empty, in which case FOLIO_CONFIG and the binary
// directory are checked before falling back to defaults.
func NewApp(configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	if !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(getBinaryDir(), config.Storage.Path)
	}

	storageManager, err := storage.NewManager(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	equityClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
		yahoo.WithLogger(logger),
	)

	cryptoClient := coingecko.NewClient(
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
		coingecko.WithLogger(logger),
	)

	fxClient := fx.NewClient(config.Portfolio.BaseCurrency,
		fx.WithBaseURL(config.Clients.FX.BaseURL),
		fx.WithTimeout(config.Clients.FX.GetTimeout()),
		fx.WithLogger(logger),
	)

	cache := pricecache.New(equityClient, cryptoClient, config.Portfolio.GetQuoteTTL(), logger)

	positionService := positions.NewService(config, storageManager, logger)
	historyService := history.NewService(storageManager, logger)
	portfolioService := portfolio.NewService(
		config, logger,
		positionService, historyService,
		cache, fxClient,
		equityClient, cryptoClient,
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		EquityClient:     equityClient,
		CryptoClient:     cryptoClient,
		FXClient:         fxClient,
		PriceCache:       cache,
		PositionService:  positionService,
		HistoryService:   historyService,
		PortfolioService: portfolioService,
		StartupTime:      time.Now(),
	}

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Str("base_currency", config.Portfolio.BaseCurrency).
		Str("data_path", config.Storage.Path).
		Msg("Folio initialized")

	return a, nil
}

// StartScheduler begins the daily snapshot job.
func (a *App) StartScheduler() {
	a.scheduler = NewScheduler(a.PortfolioService, a.Logger)
	a.scheduler.Start()
}

// Close releases storage and stops background jobs.
func (a *App) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("closing storage: %w", err)
		}
	}
	return nil
}

// Snapshot is a convenience wrapper used by the scheduler and entrypoints.
func (a *App) Snapshot(ctx context.Context, force bool) error {
	_, err := a.PortfolioService.Snapshot(ctx, force)
	return err
}
