package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"watercare/internal/models"
	"watercare/internal/queue"
	"watercare/internal/repository"
	"watercare/internal/store"
)

// MockWaterTestRepository behaves like the remote API over an in-memory list
// unless a Func field overrides a method
type MockWaterTestRepository struct {
	ListFunc           func(ctx context.Context) ([]models.CustomerRecord, error)
	CreateFunc         func(ctx context.Context, record *models.CustomerRecord) (*models.CustomerRecord, error)
	UpdateServicesFunc func(ctx context.Context, id string, update models.ServiceUpdate) (*models.CustomerRecord, error)
	PingFunc           func(ctx context.Context) error

	mu      sync.Mutex
	Records []models.CustomerRecord
	Calls   map[string]int
}

func NewMockWaterTestRepository(records ...models.CustomerRecord) *MockWaterTestRepository {
	return &MockWaterTestRepository{
		Records: records,
		Calls:   make(map[string]int),
	}
}

func (m *MockWaterTestRepository) call(name string) {
	m.mu.Lock()
	m.Calls[name]++
	m.mu.Unlock()
}

func (m *MockWaterTestRepository) List(ctx context.Context) ([]models.CustomerRecord, error) {
	m.call("List")
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CustomerRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

func (m *MockWaterTestRepository) Create(ctx context.Context, record *models.CustomerRecord) (*models.CustomerRecord, error) {
	m.call("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, *record)
	created := *record
	return &created, nil
}

func (m *MockWaterTestRepository) UpdateServices(ctx context.Context, id string, update models.ServiceUpdate) (*models.CustomerRecord, error) {
	m.call("UpdateServices")
	if m.UpdateServicesFunc != nil {
		return m.UpdateServicesFunc(ctx, id, update)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Records {
		if m.Records[i].ID == id {
			m.Records[i].ServicesDone = update.ServicesDone
			m.Records[i].ServiceHistory = append([]string(nil), update.ServiceHistory...)
			updated := m.Records[i]
			return &updated, nil
		}
	}
	return nil, &repository.StatusError{Method: "PATCH", Path: "/watertests/" + id, StatusCode: 404}
}

func (m *MockWaterTestRepository) Ping(ctx context.Context) error {
	m.call("Ping")
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// MockDispatcher mocks Dispatcher
type MockDispatcher struct {
	DispatchFunc func(ctx context.Context, record *models.CustomerRecord) error
	Dispatched   []models.CustomerRecord
}

func (m *MockDispatcher) Dispatch(ctx context.Context, record *models.CustomerRecord) error {
	m.Dispatched = append(m.Dispatched, *record)
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, record)
	}
	return nil
}

// MockNotificationGateway mocks repository.NotificationGateway
type MockNotificationGateway struct {
	SendFunc func(ctx context.Context, n *models.Notification) error
	Sent     []models.Notification
}

func (m *MockNotificationGateway) SendWhatsApp(ctx context.Context, n *models.Notification) error {
	m.Sent = append(m.Sent, *n)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, n)
	}
	return nil
}

// MockPublisher mocks JobPublisher
type MockPublisher struct {
	PublishFunc func(ctx context.Context, job *queue.NotificationJob) error
	Jobs        []queue.NotificationJob
}

func (m *MockPublisher) Publish(ctx context.Context, job *queue.NotificationJob) error {
	m.Jobs = append(m.Jobs, *job)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, job)
	}
	return nil
}

// MockWhatsAppSender mocks repository.WhatsAppSender
type MockWhatsAppSender struct {
	SendTextFunc func(ctx context.Context, to, body string) (string, error)
	To           []string
	Bodies       []string
}

func (m *MockWhatsAppSender) SendText(ctx context.Context, to, body string) (string, error) {
	m.To = append(m.To, to)
	m.Bodies = append(m.Bodies, body)
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, to, body)
	}
	return "SM123", nil
}

// MockDispatchRepository mocks repository.DispatchRepository
type MockDispatchRepository struct {
	CreateFunc       func(ctx context.Context, d *models.NotificationDispatch) error
	UpdateStatusFunc func(ctx context.Context, id int, status models.DispatchStatus, lastError *string) error
	ListByRecordFunc func(ctx context.Context, recordID string) ([]*models.NotificationDispatch, error)

	Created  []models.NotificationDispatch
	Statuses map[int]models.DispatchStatus
	Errors   map[int]string
	Calls    map[string]int
}

func NewMockDispatchRepository() *MockDispatchRepository {
	return &MockDispatchRepository{
		Statuses: make(map[int]models.DispatchStatus),
		Errors:   make(map[int]string),
		Calls:    make(map[string]int),
	}
}

func (m *MockDispatchRepository) Create(ctx context.Context, d *models.NotificationDispatch) error {
	m.Calls["Create"]++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	d.ID = len(m.Created) + 1
	m.Created = append(m.Created, *d)
	m.Statuses[d.ID] = d.Status
	return nil
}

func (m *MockDispatchRepository) UpdateStatus(ctx context.Context, id int, status models.DispatchStatus, lastError *string) error {
	m.Calls["UpdateStatus"]++
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, lastError)
	}
	m.Statuses[id] = status
	if lastError != nil {
		m.Errors[id] = *lastError
	}
	return nil
}

func (m *MockDispatchRepository) ListByRecord(ctx context.Context, recordID string) ([]*models.NotificationDispatch, error) {
	m.Calls["ListByRecord"]++
	if m.ListByRecordFunc != nil {
		return m.ListByRecordFunc(ctx, recordID)
	}
	return nil, nil
}

// newLoadedStore returns a record store already refreshed from repo
func newLoadedStore(repo *MockWaterTestRepository) *store.RecordStore {
	s := store.NewRecordStore(repo, zerolog.Nop())
	if err := s.Refresh(context.Background()); err != nil {
		panic(err)
	}
	return s
}

// NewTestRecord creates an installed-filter record with no services used
func NewTestRecord(id string) models.CustomerRecord {
	return models.CustomerRecord{
		ID:                id,
		CustomerName:      "Customer " + id,
		Mobile:            "9876543210",
		Place:             "Chennai",
		WaterSource:       models.WaterSourceBorewell,
		TDS:               "450",
		IronPPM:           "0.3",
		PipelineType:      models.PipelineTypePVC,
		FilterInstalled:   true,
		FreeServicesTotal: models.FreeServicesPerInstall,
		ServicesDone:      0,
		ServiceHistory:    []string{},
		CreatedAt:         time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
