package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jthierry/folio/internal/models"
)

// historyFile is the on-disk shape of the value series. Dates are stored as
// YYYY-MM-DD strings so the file stays hand-readable.
type historyFile struct {
	Values      []historyEntry `json:"values"`
	LastUpdated time.Time      `json:"last_updated"`
}

type historyEntry struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// HistoryStore persists the daily portfolio value series as a JSON file.
type HistoryStore struct {
	mu   sync.Mutex
	path string
}

// Load reads the full series in file order. A missing file is an empty
// series.
func (s *HistoryStore) Load(_ context.Context) ([]models.HistoryPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	points := make([]models.HistoryPoint, 0, len(file.Values))
	for _, entry := range file.Values {
		date, err := time.Parse(models.HistoryDateFormat, entry.Date)
		if err != nil {
			return nil, fmt.Errorf("history file: bad date %q: %w", entry.Date, err)
		}
		points = append(points, models.HistoryPoint{Date: date, Value: entry.Value})
	}

	return points, nil
}

// Save replaces the history file atomically.
func (s *HistoryStore) Save(_ context.Context, points []models.HistoryPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := historyFile{
		Values:      make([]historyEntry, len(points)),
		LastUpdated: time.Now(),
	}
	for i, p := range points {
		file.Values[i] = historyEntry{Date: p.DateKey(), Value: p.Value}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	return writeAtomic(s.path, data)
}
