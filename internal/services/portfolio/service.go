// Package portfolio runs the valuation pipeline: positions are priced
// through the quote cache, converted to the base currency, aggregated into
// a snapshot, and the snapshot total feeds the daily history series.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/interfaces"
	"github.com/jthierry/folio/internal/models"
	"github.com/jthierry/folio/internal/services/history"
	"github.com/jthierry/folio/internal/services/kpi"
	"github.com/jthierry/folio/internal/services/valuation"
)

// Service implements PortfolioService.
type Service struct {
	config    *common.Config
	logger    *common.Logger
	positions interfaces.PositionService
	history   interfaces.HistoryService
	cache     interfaces.PriceCache
	fx        interfaces.FXClient
	equity    interfaces.MarketDataClient
	crypto    interfaces.MarketDataClient

	now func() time.Time

	histMu    sync.Mutex
	histCache map[string]assetHistory
}

// assetHistory memoizes one ticker's close series.
type assetHistory struct {
	points    []models.PricePoint
	fetchedAt time.Time
}

// NewService creates a new portfolio service
func NewService(
	config *common.Config,
	logger *common.Logger,
	positions interfaces.PositionService,
	hist interfaces.HistoryService,
	cache interfaces.PriceCache,
	fx interfaces.FXClient,
	equity, crypto interfaces.MarketDataClient,
) *Service {
	return &Service{
		config:    config,
		logger:    logger,
		positions: positions,
		history:   hist,
		cache:     cache,
		fx:        fx,
		equity:    equity,
		crypto:    crypto,
		now:       time.Now,
		histCache: make(map[string]assetHistory),
	}
}

type quoteKey struct {
	ticker string
	class  models.AssetClass
}

func hasUnpriced(positions []models.ValuedPosition) bool {
	for _, vp := range positions {
		if vp.Unpriced {
			return true
		}
	}
	return false
}

// Snapshot values every position and returns the aggregated portfolio.
// A quote or FX failure for one position never fails the snapshot; the
// position is carried at zero market value with the matching marker set.
// A position store failure is a hard error.
func (s *Service) Snapshot(ctx context.Context, force bool) (*models.PortfolioSnapshot, error) {
	started := s.now()

	positions, err := s.positions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading positions: %w", err)
	}
	if len(positions) == 0 {
		return valuation.Aggregate(nil, s.config.Portfolio.BaseCurrency, s.now()), nil
	}

	quotes := s.fetchQuotes(ctx, positions, force)

	base := strings.ToUpper(s.config.Portfolio.BaseCurrency)
	rates := s.fetchRates(ctx, positions, base)

	valued := make([]models.ValuedPosition, 0, len(positions))
	for _, pos := range positions {
		quote := quotes[quoteKey{pos.Ticker, pos.Type}]
		rate := 1.0
		if cur := strings.ToUpper(pos.Currency); cur != "" && cur != base {
			rate = rates[cur] // zero when missing, flags Unconverted
		}
		valued = append(valued, valuation.ValuePosition(pos, quote, rate))
	}

	snapshot := valuation.Aggregate(valued, base, s.now())

	// A total quote outage would write a zero into the permanent series and
	// poison every drawdown after it. Skip recording until pricing recovers.
	if snapshot.TotalValue == 0 && hasUnpriced(snapshot.Positions) {
		s.logger.Warn().Int("positions", len(positions)).Msg("All positions unpriced, history point skipped")
	} else if err := s.history.Record(ctx, models.HistoryPoint{
		Date:  snapshot.LastUpdated,
		Value: snapshot.TotalValue,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record history point")
	}

	s.logger.Info().
		Int("positions", len(positions)).
		Float64("total_value", snapshot.TotalValue).
		Dur("elapsed", s.now().Sub(started)).
		Msg("Portfolio snapshot built")

	return snapshot, nil
}

// fetchQuotes resolves quotes for the unique ticker+class pairs in the
// position set. Fan-out is bounded so the crypto source's rate limit is
// never hammered by a wide portfolio.
func (s *Service) fetchQuotes(ctx context.Context, positions []models.Position, force bool) map[quoteKey]*models.Quote {
	unique := make(map[quoteKey]struct{})
	for _, pos := range positions {
		unique[quoteKey{pos.Ticker, pos.Type}] = struct{}{}
	}

	var mu sync.Mutex
	quotes := make(map[quoteKey]*models.Quote, len(unique))

	limit := s.config.Portfolio.MaxParallelQuotes
	if limit <= 0 {
		limit = 5
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for k := range unique {
		k := k
		g.Go(func() error {
			var quote *models.Quote
			var err error
			if force {
				quote, err = s.cache.Refresh(gctx, k.ticker, k.class)
			} else {
				quote, err = s.cache.Get(gctx, k.ticker, k.class)
			}
			if err != nil {
				s.logger.Warn().Err(err).Str("ticker", k.ticker).Msg("Quote unavailable")
				return nil // position is carried unpriced
			}
			mu.Lock()
			quotes[k] = quote
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return quotes
}

// fetchRates resolves the native-to-base conversion rate for every foreign
// currency in the position set. A missing rate stays at zero so the
// valuation flags those positions unconverted instead of failing the pass.
func (s *Service) fetchRates(ctx context.Context, positions []models.Position, base string) map[string]float64 {
	rates := make(map[string]float64)
	for _, pos := range positions {
		cur := strings.ToUpper(pos.Currency)
		if cur == "" || cur == base {
			continue
		}
		if _, seen := rates[cur]; seen {
			continue
		}
		rate, err := s.fx.GetRate(ctx, cur, base)
		if err != nil {
			s.logger.Warn().Err(err).Str("currency", cur).Msg("FX rate unavailable, positions unconverted")
			rate = 0
		}
		rates[cur] = rate
	}
	return rates
}

// History returns the recorded daily value series for a window.
func (s *Service) History(ctx context.Context, window string) ([]models.HistoryPoint, error) {
	days, err := history.ParseWindow(window)
	if err != nil {
		return nil, err
	}
	return s.history.Range(ctx, days)
}

// KPIs computes performance statistics over a history window. An
// unsatisfiable window yields an empty "not available" set, not an error.
func (s *Service) KPIs(ctx context.Context, window string) (*models.KPISet, error) {
	points, err := s.History(ctx, window)
	if err != nil {
		if errors.Is(err, models.ErrInvalidWindow) {
			s.logger.Warn().Str("window", window).Msg("Invalid KPI window")
			return &models.KPISet{}, nil
		}
		return nil, err
	}
	set := kpi.Compute(points, s.config.Portfolio.RiskFreeRate)
	if !set.Available() {
		s.logger.Debug().Int("points", len(points)).Msg("Series too short for KPIs")
	}
	return &set, nil
}

// AssetHistory returns close prices for one asset from the source matching
// its class. Series are memoized per ticker and period so repeated chart
// requests don't hit the upstream sources.
func (s *Service) AssetHistory(ctx context.Context, ticker string, class models.AssetClass, period string) ([]models.PricePoint, error) {
	ticker = strings.ToUpper(ticker)
	cacheKey := ticker + "|" + string(class) + "|" + period

	s.histMu.Lock()
	cached, ok := s.histCache[cacheKey]
	s.histMu.Unlock()
	if ok && common.IsFresh(cached.fetchedAt, common.FreshnessAssetHistory) {
		return cached.points, nil
	}

	client := s.equity
	if class.IsCrypto() {
		client = s.crypto
	}
	points, err := client.GetHistory(ctx, ticker, period)
	if err != nil {
		return nil, err
	}

	s.histMu.Lock()
	s.histCache[cacheKey] = assetHistory{points: points, fetchedAt: s.now()}
	s.histMu.Unlock()

	return points, nil
}

// Ensure Service implements PortfolioService
var _ interfaces.PortfolioService = (*Service)(nil)
