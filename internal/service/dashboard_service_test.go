package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watercare/internal/models"
)

func newDashboard(repo *MockWaterTestRepository) *DashboardService {
	return NewDashboardService(newLoadedStore(repo), time.UTC, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestDashboardService_ListFilterMode(t *testing.T) {
	dashboard := newDashboard(NewMockWaterTestRepository(sampleRecords()...))

	result, err := dashboard.List(ListQuery{
		Criteria: models.FilterCriteria{InstallationStatus: "true"},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeFilter, result.Mode)
	assert.Nil(t, result.Query)
	require.NotNil(t, result.Criteria)
	assert.Equal(t, models.InstallationInstalled, result.Criteria.InstallationStatus)
	assert.Equal(t, []string{"1", "3"}, ids(result.Records))
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 3, result.Total)
	assert.NotNil(t, result.LoadedAt)
	assert.False(t, result.Stale)
}

func TestDashboardService_ListDefaultReturnsEverything(t *testing.T) {
	dashboard := newDashboard(NewMockWaterTestRepository(sampleRecords()...))

	result, err := dashboard.List(ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, models.InstallationAll, result.Criteria.InstallationStatus)
	assert.Equal(t, 3, result.Count)
}

func TestDashboardService_ListSearchModeIgnoresCriteria(t *testing.T) {
	dashboard := newDashboard(NewMockWaterTestRepository(sampleRecords()...))

	result, err := dashboard.List(ListQuery{
		Search:   strPtr("madurai"),
		Criteria: models.FilterCriteria{InstallationStatus: models.InstallationInstalled},
	})
	require.NoError(t, err)

	assert.Equal(t, ModeSearch, result.Mode)
	assert.Nil(t, result.Criteria)
	assert.Equal(t, "madurai", *result.Query)
	assert.Equal(t, []string{"2"}, ids(result.Records))
}

func TestDashboardService_ListInvalidCriteria(t *testing.T) {
	dashboard := newDashboard(NewMockWaterTestRepository())

	_, err := dashboard.List(ListQuery{Criteria: models.FilterCriteria{InstallationStatus: "maybe"}})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "installed")

	_, err = dashboard.List(ListQuery{Criteria: models.FilterCriteria{Date: "15-01-2024"}})
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "date")
}

func TestDashboardService_ListFlagsStaleSnapshot(t *testing.T) {
	repo := NewMockWaterTestRepository(sampleRecords()...)
	dashboard := newDashboard(repo)

	repo.ListFunc = func(ctx context.Context) ([]models.CustomerRecord, error) {
		return nil, errors.New("connection refused")
	}
	err := dashboard.Refresh(context.Background())

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, FetchFailed, remoteErr.Kind)

	result, err := dashboard.List(ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count, "last good snapshot still listed")
	assert.True(t, result.Stale)
	assert.Contains(t, result.LoadError, "connection refused")
}

func TestDashboardService_ListReflectsNewSnapshot(t *testing.T) {
	repo := NewMockWaterTestRepository(sampleRecords()...)
	dashboard := newDashboard(repo)
	criteria := models.FilterCriteria{Place: "chen"}

	first, err := dashboard.List(ListQuery{Criteria: criteria})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)

	extra := NewTestRecord("4")
	extra.Place = "Chengalpattu"
	repo.Records = append(repo.Records, extra)
	require.NoError(t, dashboard.Refresh(context.Background()))

	second, err := dashboard.List(ListQuery{Criteria: criteria})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(second.Records))
}

func TestDashboardService_Detail(t *testing.T) {
	record := NewTestRecord("r1")
	record.ServicesDone = 2
	record.ServiceHistory = []string{"2024-02-01", "2024-03-01"}
	dashboard := newDashboard(NewMockWaterTestRepository(record))

	detail, err := dashboard.Detail("r1")
	require.NoError(t, err)

	assert.Equal(t, 1, detail.RemainingServices)
	assert.True(t, detail.CanAddService)
	assert.Equal(t, []ServiceVisit{
		{Number: 1, Date: "2024-02-01"},
		{Number: 2, Date: "2024-03-01"},
	}, detail.Visits)

	_, err = dashboard.Detail("nope")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestNewCustomerDetail_NoFilter(t *testing.T) {
	record := NewTestRecord("r1")
	record.FilterInstalled = false
	record.FreeServicesTotal = 0

	detail := NewCustomerDetail(record)
	assert.Equal(t, 0, detail.RemainingServices)
	assert.False(t, detail.CanAddService)
	assert.NotNil(t, detail.Visits)
}
