package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watercare/internal/models"
)

func newMockDB(t *testing.T) (DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDispatchRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO notification_dispatches").
		WithArgs("job-1", "rec-1", "9999999999", models.ChannelWhatsApp, models.DispatchStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	dispatch := &models.NotificationDispatch{
		JobID:    "job-1",
		RecordID: "rec-1",
		Mobile:   "9999999999",
		Channel:  models.ChannelWhatsApp,
		Status:   models.DispatchStatusPending,
	}
	require.NoError(t, NewDispatchRepository(db).Create(context.Background(), dispatch))

	assert.Equal(t, 7, dispatch.ID)
	assert.Equal(t, now, dispatch.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchRepository_CreateError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO notification_dispatches").
		WillReturnError(errors.New("duplicate key"))

	err := NewDispatchRepository(db).Create(context.Background(), &models.NotificationDispatch{JobID: "job-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create dispatch")
}

func TestDispatchRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	lastError := "twilio: 21211 invalid number"

	mock.ExpectExec("UPDATE notification_dispatches").
		WithArgs(models.DispatchStatusFailed, &lastError, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewDispatchRepository(db).UpdateStatus(context.Background(), 7, models.DispatchStatusFailed, &lastError)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchRepository_UpdateStatusNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE notification_dispatches").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewDispatchRepository(db).UpdateStatus(context.Background(), 99, models.DispatchStatusSent, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDispatchRepository_ListByRecord(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	failure := "timeout"

	rows := sqlmock.NewRows([]string{
		"id", "job_id", "record_id", "mobile", "channel", "status", "last_error", "created_at", "updated_at",
	}).
		AddRow(2, "job-2", "rec-1", "9999999999", "whatsapp", "failed", failure, now, now).
		AddRow(1, "job-1", "rec-1", "9999999999", "api", "sent", nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM notification_dispatches").
		WithArgs("rec-1").
		WillReturnRows(rows)

	dispatches, err := NewDispatchRepository(db).ListByRecord(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, dispatches, 2)

	assert.Equal(t, models.DispatchStatusFailed, dispatches[0].Status)
	require.NotNil(t, dispatches[0].LastError)
	assert.Equal(t, failure, *dispatches[0].LastError)
	assert.Nil(t, dispatches[1].LastError)
	assert.Equal(t, models.ChannelAPI, dispatches[1].Channel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
