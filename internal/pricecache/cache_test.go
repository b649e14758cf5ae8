package pricecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/models"
)

// fakeClient counts calls and returns a canned quote or error.
type fakeClient struct {
	mu    sync.Mutex
	calls int32
	quote *models.Quote
	err   error
	delay time.Duration
}

func (f *fakeClient) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Ticker = ticker
	return &q, nil
}

func (f *fakeClient) GetHistory(ctx context.Context, ticker, period string) ([]models.PricePoint, error) {
	return nil, nil
}

func (f *fakeClient) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func newTestCache(equity, crypto *fakeClient, ttl time.Duration) *Cache {
	return New(equity, crypto, ttl, common.NewSilentLogger())
}

func TestGet_CachesWithinTTL(t *testing.T) {
	now := time.Now()
	equity := &fakeClient{quote: &models.Quote{Price: 100, FetchedAt: now}}
	cache := newTestCache(equity, &fakeClient{}, 15*time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		q, err := cache.Get(ctx, "AAPL", models.AssetStock)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if q.Price != 100 {
			t.Fatalf("price: got %v", q.Price)
		}
	}

	if equity.callCount() != 1 {
		t.Errorf("expected 1 upstream call, got %d", equity.callCount())
	}
}

func TestGet_RefetchesAfterTTL(t *testing.T) {
	start := time.Now()
	equity := &fakeClient{quote: &models.Quote{Price: 100, FetchedAt: start}}
	cache := newTestCache(equity, &fakeClient{}, 15*time.Minute)
	cache.now = func() time.Time { return start }

	ctx := context.Background()
	if _, err := cache.Get(ctx, "AAPL", models.AssetStock); err != nil {
		t.Fatalf("get: %v", err)
	}

	// Advance past the freshness window
	cache.now = func() time.Time { return start.Add(16 * time.Minute) }
	if _, err := cache.Get(ctx, "AAPL", models.AssetStock); err != nil {
		t.Fatalf("get after expiry: %v", err)
	}

	if equity.callCount() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", equity.callCount())
	}
}

func TestGet_ServesStaleOnFailure(t *testing.T) {
	start := time.Now()
	equity := &fakeClient{quote: &models.Quote{Price: 100, FetchedAt: start}}
	cache := newTestCache(equity, &fakeClient{}, 15*time.Minute)
	cache.now = func() time.Time { return start }

	ctx := context.Background()
	if _, err := cache.Get(ctx, "AAPL", models.AssetStock); err != nil {
		t.Fatalf("warm: %v", err)
	}

	equity.mu.Lock()
	equity.err = errors.New("upstream down")
	equity.mu.Unlock()
	cache.now = func() time.Time { return start.Add(time.Hour) }

	q, err := cache.Get(ctx, "AAPL", models.AssetStock)
	if err != nil {
		t.Fatalf("expected stale serve, got error: %v", err)
	}
	if !q.Stale {
		t.Error("expected stale marker")
	}
	if q.Price != 100 {
		t.Errorf("stale price: got %v", q.Price)
	}
}

func TestGet_ErrorWithNothingCached(t *testing.T) {
	equity := &fakeClient{err: errors.New("upstream down")}
	cache := newTestCache(equity, &fakeClient{}, 15*time.Minute)

	_, err := cache.Get(context.Background(), "AAPL", models.AssetStock)
	if !errors.Is(err, models.ErrQuoteUnavailable) {
		t.Errorf("expected ErrQuoteUnavailable, got %v", err)
	}
}

func TestRefresh_BypassesFreshEntry(t *testing.T) {
	now := time.Now()
	equity := &fakeClient{quote: &models.Quote{Price: 100, FetchedAt: now}}
	cache := newTestCache(equity, &fakeClient{}, 15*time.Minute)

	ctx := context.Background()
	if _, err := cache.Get(ctx, "AAPL", models.AssetStock); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if _, err := cache.Refresh(ctx, "AAPL", models.AssetStock); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if equity.callCount() != 2 {
		t.Errorf("refresh must refetch, got %d calls", equity.callCount())
	}
}

func TestGet_ConcurrentRequestsShareOneFetch(t *testing.T) {
	equity := &fakeClient{
		quote: &models.Quote{Price: 100, FetchedAt: time.Now()},
		delay: 50 * time.Millisecond,
	}
	cache := newTestCache(equity, &fakeClient{}, 15*time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(context.Background(), "AAPL", models.AssetStock); err != nil {
				t.Errorf("concurrent get: %v", err)
			}
		}()
	}
	wg.Wait()

	if equity.callCount() != 1 {
		t.Errorf("expected 1 shared fetch, got %d", equity.callCount())
	}
}

func TestGet_RoutesCryptoToCryptoClient(t *testing.T) {
	equity := &fakeClient{quote: &models.Quote{Price: 100, FetchedAt: time.Now()}}
	crypto := &fakeClient{quote: &models.Quote{Price: 40000, FetchedAt: time.Now()}}
	cache := newTestCache(equity, crypto, 15*time.Minute)

	q, err := cache.Get(context.Background(), "BTC", models.AssetCrypto)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.Price != 40000 {
		t.Errorf("crypto price: got %v", q.Price)
	}
	if equity.callCount() != 0 || crypto.callCount() != 1 {
		t.Errorf("routing: equity %d calls, crypto %d calls", equity.callCount(), crypto.callCount())
	}
}
