// Package history maintains the daily portfolio value series used for
// charting and KPI computation.
package history

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jthierry/folio/internal/common"
	"github.com/jthierry/folio/internal/interfaces"
	"github.com/jthierry/folio/internal/models"
)

// Service implements HistoryService. Recording is idempotent per calendar
// date: re-recording a date replaces its value.
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new history service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Record upserts the portfolio value for the point's calendar date.
func (s *Service) Record(ctx context.Context, point models.HistoryPoint) error {
	points, err := s.storage.History().Load(ctx)
	if err != nil {
		return err
	}

	key := point.DateKey()
	replaced := false
	for i, existing := range points {
		if existing.DateKey() == key {
			points[i] = point
			replaced = true
			break
		}
	}
	if !replaced {
		points = append(points, point)
		sort.Slice(points, func(i, j int) bool {
			return points[i].Date.Before(points[j].Date)
		})
	}

	if err := s.storage.History().Save(ctx, points); err != nil {
		return err
	}

	s.logger.Debug().
		Str("date", key).
		Float64("value", point.Value).
		Bool("replaced", replaced).
		Msg("History point recorded")
	return nil
}

// Range returns the points recorded within the last N calendar days, in
// ascending date order. The series may be sparse, so the window is a date
// cutoff, not a point count. A non-positive days value returns the full
// series.
func (s *Service) Range(ctx context.Context, days int) ([]models.HistoryPoint, error) {
	points, err := s.storage.History().Load(ctx)
	if err != nil {
		return nil, err
	}

	if days > 0 {
		cutoff := s.now().UTC().AddDate(0, 0, -days)
		start := sort.Search(len(points), func(i int) bool {
			return !points[i].Date.Before(cutoff)
		})
		points = points[start:]
	}
	return points, nil
}

// ParseWindow converts a window parameter into a day count for Range.
// Accepted values are "all" (or empty) and a positive day count such as
// "30", "90" or "365".
func ParseWindow(window string) (int, error) {
	window = strings.ToLower(strings.TrimSpace(window))
	if window == "" || window == "all" {
		return 0, nil
	}
	days, err := strconv.Atoi(window)
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidWindow, window)
	}
	return days, nil
}

// Ensure Service implements HistoryService
var _ interfaces.HistoryService = (*Service)(nil)
