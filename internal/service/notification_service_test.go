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
	"watercare/internal/queue"
)

func TestAPIDispatcher(t *testing.T) {
	gateway := &MockNotificationGateway{}
	record := NewTestRecord("r1")

	require.NoError(t, NewAPIDispatcher(gateway).Dispatch(context.Background(), &record))
	require.Len(t, gateway.Sent, 1)

	assert.Equal(t, models.Notification{
		CustomerName: "Customer r1",
		Mobile:       "9876543210",
		Place:        "Chennai",
		WaterSource:  models.WaterSourceBorewell,
		TDS:          "450",
		IronPPM:      "0.3",
		PipelineType: models.PipelineTypePVC,
	}, gateway.Sent[0])
}

func TestQueueDispatcher(t *testing.T) {
	publisher := &MockPublisher{}
	d := NewQueueDispatcher(publisher)
	d.newID = func() string { return "job-1" }
	d.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	record := NewTestRecord("r1")
	require.NoError(t, d.Dispatch(context.Background(), &record))

	require.Len(t, publisher.Jobs, 1)
	job := publisher.Jobs[0]
	assert.Equal(t, "job-1", job.JobID)
	assert.Equal(t, "r1", job.RecordID)
	assert.Equal(t, "9876543210", job.Notification.Mobile)

	publisher.PublishFunc = func(ctx context.Context, job *queue.NotificationJob) error {
		return errors.New("channel closed")
	}
	assert.Error(t, d.Dispatch(context.Background(), &record))
}

func TestTwilioDispatcher(t *testing.T) {
	sender := &MockWhatsAppSender{}
	templates, err := NewTemplateService("")
	require.NoError(t, err)

	d := NewTwilioDispatcher(sender, templates, "+919000000000", zerolog.Nop())
	record := NewTestRecord("r1")
	require.NoError(t, d.Dispatch(context.Background(), &record))

	require.Len(t, sender.To, 1)
	assert.Equal(t, "+919000000000", sender.To[0])
	assert.Contains(t, sender.Bodies[0], "Customer: Customer r1")
	assert.Contains(t, sender.Bodies[0], "TDS: 450 ppm")
}

func TestDeliveryService_Success(t *testing.T) {
	gateway := &MockNotificationGateway{}
	dispatches := NewMockDispatchRepository()
	delivery := NewAPIDelivery(gateway, dispatches, zerolog.Nop())

	job := &queue.NotificationJob{
		JobID:        "job-1",
		RecordID:     "r1",
		Notification: models.Notification{Mobile: "9999999999"},
	}
	require.NoError(t, delivery.Handle(context.Background(), job))

	require.Len(t, gateway.Sent, 1)
	require.Len(t, dispatches.Created, 1)
	assert.Equal(t, models.ChannelAPI, dispatches.Created[0].Channel)
	assert.Equal(t, models.DispatchStatusPending, dispatches.Created[0].Status)
	assert.Equal(t, models.DispatchStatusSent, dispatches.Statuses[1])
}

func TestDeliveryService_Failure(t *testing.T) {
	sender := &MockWhatsAppSender{SendTextFunc: func(ctx context.Context, to, body string) (string, error) {
		return "", errors.New("21211 invalid 'To' number")
	}}
	templates, err := NewTemplateService("")
	require.NoError(t, err)
	dispatches := NewMockDispatchRepository()

	delivery := NewTwilioDelivery(NewTwilioDispatcher(sender, templates, "+91900", zerolog.Nop()), dispatches, zerolog.Nop())

	err = delivery.Handle(context.Background(), &queue.NotificationJob{JobID: "job-2", RecordID: "r2"})
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, NotificationFailed, remoteErr.Kind)

	assert.Equal(t, models.ChannelWhatsApp, dispatches.Created[0].Channel)
	assert.Equal(t, models.DispatchStatusFailed, dispatches.Statuses[1])
	assert.Contains(t, dispatches.Errors[1], "21211")
	assert.Len(t, sender.To, 1, "delivered once, no retry")
}

func TestDeliveryService_WithoutDispatchLog(t *testing.T) {
	gateway := &MockNotificationGateway{}
	delivery := NewAPIDelivery(gateway, nil, zerolog.Nop())

	require.NoError(t, delivery.Handle(context.Background(), &queue.NotificationJob{JobID: "job-3"}))
	assert.Len(t, gateway.Sent, 1)
}

func TestDeliveryService_DispatchLogFailureStillDelivers(t *testing.T) {
	gateway := &MockNotificationGateway{}
	dispatches := NewMockDispatchRepository()
	dispatches.CreateFunc = func(ctx context.Context, d *models.NotificationDispatch) error {
		return errors.New("db down")
	}
	delivery := NewAPIDelivery(gateway, dispatches, zerolog.Nop())

	require.NoError(t, delivery.Handle(context.Background(), &queue.NotificationJob{JobID: "job-4"}))
	assert.Len(t, gateway.Sent, 1)
	assert.Equal(t, 0, dispatches.Calls["UpdateStatus"])
}

func TestNotificationHistory_List(t *testing.T) {
	dispatches := NewMockDispatchRepository()
	history := NewNotificationHistory(dispatches)

	list, err := history.List(context.Background(), "r1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	dispatches.ListByRecordFunc = func(ctx context.Context, recordID string) ([]*models.NotificationDispatch, error) {
		return nil, errors.New("relation does not exist")
	}
	_, err = history.List(context.Background(), "r1")
	assert.Error(t, err)
}
