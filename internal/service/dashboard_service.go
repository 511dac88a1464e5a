package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"watercare/internal/models"
)

// RecordStore is the cached record set the services read from and refresh
type RecordStore interface {
	Refresh(ctx context.Context) error
	All() []models.CustomerRecord
	Get(id string) (models.CustomerRecord, bool)
	Upsert(record models.CustomerRecord)
	LoadedAt() time.Time
	LastError() error
}

// List modes
const (
	ModeSearch = "search"
	ModeFilter = "filter"
)

// ListQuery selects one derivation mode. Search wins when set; Criteria is ignored then.
type ListQuery struct {
	Search   *string
	Criteria models.FilterCriteria
}

// ListResult is the dashboard list view
type ListResult struct {
	Mode      string                  `json:"mode"`
	Query     *string                 `json:"query,omitempty"`
	Criteria  *models.FilterCriteria  `json:"criteria,omitempty"`
	Records   []models.CustomerRecord `json:"records"`
	Count     int                     `json:"count"`
	Total     int                     `json:"total"`
	LoadedAt  *time.Time              `json:"loadedAt,omitempty"`
	Stale     bool                    `json:"stale"`
	LoadError string                  `json:"loadError,omitempty"`
}

// ServiceVisit is one numbered entry of a service history
type ServiceVisit struct {
	Number int    `json:"number"`
	Date   string `json:"date"`
}

// CustomerDetail is the detail view of one record
type CustomerDetail struct {
	Record            models.CustomerRecord `json:"record"`
	RemainingServices int                   `json:"remainingServices"`
	CanAddService     bool                  `json:"canAddService"`
	Visits            []ServiceVisit        `json:"visits"`
}

// DashboardService derives the list and detail views from the record store
type DashboardService struct {
	store  RecordStore
	loc    *time.Location
	logger zerolog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store RecordStore, loc *time.Location, logger zerolog.Logger) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		store:  store,
		loc:    loc,
		logger: logger.With().Str("service", "dashboard").Logger(),
	}
}

// List applies either the free-text search or the structured filter to the current snapshot
func (s *DashboardService) List(query ListQuery) (*ListResult, error) {
	snapshot := s.store.All()

	result := &ListResult{Total: len(snapshot)}

	if query.Search != nil {
		q := *query.Search
		result.Mode = ModeSearch
		result.Query = &q
		result.Records = Search(snapshot, q)
	} else {
		criteria, err := normalizeCriteria(query.Criteria)
		if err != nil {
			return nil, err
		}
		result.Mode = ModeFilter
		result.Criteria = &criteria
		result.Records = ApplyFilters(snapshot, criteria, s.loc)
	}

	result.Count = len(result.Records)
	if loadedAt := s.store.LoadedAt(); !loadedAt.IsZero() {
		result.LoadedAt = &loadedAt
	}
	if err := s.store.LastError(); err != nil {
		result.Stale = true
		result.LoadError = err.Error()
	}

	return result, nil
}

// Detail returns one record with its derived ledger values
func (s *DashboardService) Detail(id string) (*CustomerDetail, error) {
	record, ok := s.store.Get(id)
	if !ok {
		return nil, &NotFoundError{Resource: "customer record", ID: id}
	}
	return NewCustomerDetail(record), nil
}

// Refresh reloads the record store on demand
func (s *DashboardService) Refresh(ctx context.Context) error {
	return refreshStore(ctx, s.store)
}

// NewCustomerDetail builds the detail view of record
func NewCustomerDetail(record models.CustomerRecord) *CustomerDetail {
	visits := make([]ServiceVisit, 0, len(record.ServiceHistory))
	for i, date := range record.ServiceHistory {
		visits = append(visits, ServiceVisit{Number: i + 1, Date: date})
	}

	return &CustomerDetail{
		Record:            record,
		RemainingServices: record.RemainingServices(),
		CanAddService:     record.CanAddService(),
		Visits:            visits,
	}
}

func normalizeCriteria(c models.FilterCriteria) (models.FilterCriteria, error) {
	status, ok := ParseInstallationStatus(string(c.InstallationStatus))
	if !ok {
		return c, &ValidationError{
			Message: "invalid installation status",
			Fields:  map[string]string{"installed": "Must be one of: all true false"},
		}
	}
	c.InstallationStatus = status

	if c.Date != "" {
		if _, err := time.Parse(models.DateLayout, c.Date); err != nil {
			return c, &ValidationError{
				Message: "invalid date filter",
				Fields:  map[string]string{"date": "Must be a date in YYYY-MM-DD format"},
			}
		}
	}
	return c, nil
}

// refreshStore reloads the store and classifies a failure as FetchFailed
func refreshStore(ctx context.Context, store RecordStore) error {
	if err := store.Refresh(ctx); err != nil {
		return &RemoteError{Kind: FetchFailed, Op: "refresh records", Err: err}
	}
	return nil
}
