package repository

import (
	"context"
	"database/sql"

	"watercare/internal/models"
)

// WaterTestRepository defines access to the remote water test records
type WaterTestRepository interface {
	List(ctx context.Context) ([]models.CustomerRecord, error)
	Create(ctx context.Context, record *models.CustomerRecord) (*models.CustomerRecord, error)
	UpdateServices(ctx context.Context, id string, update models.ServiceUpdate) (*models.CustomerRecord, error)
	Ping(ctx context.Context) error
}

// NotificationGateway defines the remote WhatsApp dispatch endpoint
type NotificationGateway interface {
	SendWhatsApp(ctx context.Context, notification *models.Notification) error
}

// DispatchRepository defines notification dispatch log operations
type DispatchRepository interface {
	Create(ctx context.Context, dispatch *models.NotificationDispatch) error
	UpdateStatus(ctx context.Context, id int, status models.DispatchStatus, lastError *string) error
	ListByRecord(ctx context.Context, recordID string) ([]*models.NotificationDispatch, error)
}

// DB is a wrapper around *sql.DB to allow passing in transaction
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
