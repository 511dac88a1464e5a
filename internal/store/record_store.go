package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"watercare/internal/models"
)

// Fetcher loads the full record set from the remote API
type Fetcher interface {
	List(ctx context.Context) ([]models.CustomerRecord, error)
}

// snapshot is an immutable view of the record set. It is never modified after it is published.
type snapshot struct {
	records  []models.CustomerRecord
	index    map[string]int
	loadedAt time.Time
}

func newSnapshot(records []models.CustomerRecord, loadedAt time.Time) *snapshot {
	index := make(map[string]int, len(records))
	for i := range records {
		index[records[i].ID] = i
	}
	return &snapshot{records: records, index: index, loadedAt: loadedAt}
}

// RecordStore caches every customer record fetched from the remote API.
// Readers always see a complete snapshot; writers replace it under a mutex.
type RecordStore struct {
	fetcher Fetcher
	logger  zerolog.Logger
	now     func() time.Time

	current atomic.Pointer[snapshot]
	mu      sync.Mutex

	errMu   sync.RWMutex
	lastErr error

	cron *cron.Cron
}

// NewRecordStore creates an empty store. Call Refresh to load it.
func NewRecordStore(fetcher Fetcher, logger zerolog.Logger) *RecordStore {
	s := &RecordStore{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "record_store").Logger(),
		now:     time.Now,
	}
	s.current.Store(newSnapshot([]models.CustomerRecord{}, time.Time{}))
	return s
}

// Refresh fetches the full record set and swaps it in.
// On failure the previous snapshot is kept and the error is remembered.
func (s *RecordStore) Refresh(ctx context.Context) error {
	start := s.now()
	records, err := s.fetcher.List(ctx)
	if err != nil {
		s.setLastError(err)
		s.logger.Error().Err(err).Int("kept", s.Len()).Msg("Refresh failed, keeping last snapshot")
		return fmt.Errorf("failed to refresh records: %w", err)
	}

	// Copy so the caller cannot mutate the published backing array
	owned := make([]models.CustomerRecord, len(records))
	copy(owned, records)

	s.mu.Lock()
	s.current.Store(newSnapshot(owned, s.now()))
	s.mu.Unlock()
	s.setLastError(nil)

	s.logger.Debug().
		Int("records", len(owned)).
		Dur("took", s.now().Sub(start)).
		Msg("Record store refreshed")
	return nil
}

// All returns the current snapshot. The returned slice must not be modified.
func (s *RecordStore) All() []models.CustomerRecord {
	return s.current.Load().records
}

// Get looks up one record by id in the current snapshot
func (s *RecordStore) Get(id string) (models.CustomerRecord, bool) {
	snap := s.current.Load()
	i, ok := snap.index[id]
	if !ok {
		return models.CustomerRecord{}, false
	}
	return snap.records[i], true
}

// Upsert publishes a new snapshot with record replacing the one sharing its id,
// or appended when no such record exists.
func (s *RecordStore) Upsert(record models.CustomerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	records := make([]models.CustomerRecord, len(old.records), len(old.records)+1)
	copy(records, old.records)

	if i, ok := old.index[record.ID]; ok {
		records[i] = record
	} else {
		records = append(records, record)
	}

	s.current.Store(newSnapshot(records, old.loadedAt))
}

// Len returns the number of records in the current snapshot
func (s *RecordStore) Len() int {
	return len(s.current.Load().records)
}

// LoadedAt returns when the current snapshot was fetched. Zero until the first successful refresh.
func (s *RecordStore) LoadedAt() time.Time {
	return s.current.Load().loadedAt
}

// LastError returns the error of the most recent refresh, or nil if it succeeded
func (s *RecordStore) LastError() error {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.lastErr
}

func (s *RecordStore) setLastError(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// StartAutoRefresh refreshes the store on a cron schedule (standard 5-field expression or descriptors
// like "@every 5m"). An empty schedule disables it.
func (s *RecordStore) StartAutoRefresh(schedule string, timeout time.Duration) error {
	if schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		// Refresh already logs failures
		_ = s.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid auto refresh schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info().Str("schedule", schedule).Msg("Auto refresh started")
	return nil
}

// Stop halts the auto refresh scheduler and waits for a running refresh to finish
func (s *RecordStore) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
