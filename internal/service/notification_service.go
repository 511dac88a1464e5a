package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"watercare/internal/models"
	"watercare/internal/queue"
	"watercare/internal/repository"
)

// Dispatcher requests the admin notification for a newly created record
type Dispatcher interface {
	Dispatch(ctx context.Context, record *models.CustomerRecord) error
}

// JobPublisher enqueues notification jobs
type JobPublisher interface {
	Publish(ctx context.Context, job *queue.NotificationJob) error
}

// APIDispatcher asks the remote API to send the WhatsApp notification
type APIDispatcher struct {
	gateway repository.NotificationGateway
}

// NewAPIDispatcher creates a dispatcher that calls POST /send-whatsapp
func NewAPIDispatcher(gateway repository.NotificationGateway) *APIDispatcher {
	return &APIDispatcher{gateway: gateway}
}

func (d *APIDispatcher) Dispatch(ctx context.Context, record *models.CustomerRecord) error {
	return d.gateway.SendWhatsApp(ctx, models.NewNotification(record))
}

// QueueDispatcher hands the notification to the worker through RabbitMQ.
// Success means the job was enqueued, not delivered.
type QueueDispatcher struct {
	publisher JobPublisher
	newID     func() string
	now       func() time.Time
}

// NewQueueDispatcher creates a dispatcher that publishes notification jobs
func NewQueueDispatcher(publisher JobPublisher) *QueueDispatcher {
	return &QueueDispatcher{
		publisher: publisher,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, record *models.CustomerRecord) error {
	job := &queue.NotificationJob{
		JobID:        d.newID(),
		RecordID:     record.ID,
		Notification: *models.NewNotification(record),
		EnqueuedAt:   d.now().UTC(),
	}
	return d.publisher.Publish(ctx, job)
}

// TwilioDispatcher renders the admin message and sends it directly through Twilio
type TwilioDispatcher struct {
	sender      repository.WhatsAppSender
	templates   *TemplateService
	adminNumber string
	logger      zerolog.Logger
}

// NewTwilioDispatcher creates a dispatcher that messages adminNumber
func NewTwilioDispatcher(sender repository.WhatsAppSender, templates *TemplateService, adminNumber string, logger zerolog.Logger) *TwilioDispatcher {
	return &TwilioDispatcher{
		sender:      sender,
		templates:   templates,
		adminNumber: adminNumber,
		logger:      logger.With().Str("dispatcher", "twilio").Logger(),
	}
}

func (d *TwilioDispatcher) Dispatch(ctx context.Context, record *models.CustomerRecord) error {
	return d.send(ctx, models.NewNotification(record))
}

func (d *TwilioDispatcher) send(ctx context.Context, n *models.Notification) error {
	body, err := d.templates.Render(n)
	if err != nil {
		return fmt.Errorf("failed to render notification: %w", err)
	}

	sid, err := d.sender.SendText(ctx, d.adminNumber, body)
	if err != nil {
		return err
	}

	d.logger.Debug().Str("sid", sid).Str("customer_mobile", n.Mobile).Msg("WhatsApp message sent")
	return nil
}

// DeliveryService delivers queued notification jobs and records each attempt
type DeliveryService struct {
	channel    models.Channel
	deliver    func(ctx context.Context, n *models.Notification) error
	dispatches repository.DispatchRepository
	logger     zerolog.Logger
}

// NewAPIDelivery delivers queued jobs through POST /send-whatsapp.
// dispatches may be nil when no dispatch log database is configured.
func NewAPIDelivery(gateway repository.NotificationGateway, dispatches repository.DispatchRepository, logger zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		channel:    models.ChannelAPI,
		deliver:    gateway.SendWhatsApp,
		dispatches: dispatches,
		logger:     logger.With().Str("service", "delivery").Logger(),
	}
}

// NewTwilioDelivery delivers queued jobs directly through Twilio
func NewTwilioDelivery(dispatcher *TwilioDispatcher, dispatches repository.DispatchRepository, logger zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		channel:    models.ChannelWhatsApp,
		deliver:    dispatcher.send,
		dispatches: dispatches,
		logger:     logger.With().Str("service", "delivery").Logger(),
	}
}

// Handle delivers one job once. A failed delivery is recorded and returned; it is never retried here.
func (s *DeliveryService) Handle(ctx context.Context, job *queue.NotificationJob) error {
	log := s.logger.With().Str("job_id", job.JobID).Str("record_id", job.RecordID).Logger()
	log.Info().Msg("Processing notification job")

	dispatch := &models.NotificationDispatch{
		JobID:    job.JobID,
		RecordID: job.RecordID,
		Mobile:   job.Notification.Mobile,
		Channel:  s.channel,
		Status:   models.DispatchStatusPending,
	}
	logged := false
	if s.dispatches != nil {
		if err := s.dispatches.Create(ctx, dispatch); err != nil {
			log.Error().Err(err).Msg("Failed to record dispatch, delivering anyway")
		} else {
			logged = true
		}
	}

	deliverErr := s.deliver(ctx, &job.Notification)

	status := models.DispatchStatusSent
	var lastError *string
	if deliverErr != nil {
		status = models.DispatchStatusFailed
		msg := deliverErr.Error()
		lastError = &msg
		log.Error().Err(deliverErr).Msg("Notification delivery failed")
	} else {
		log.Info().Msg("Notification delivered")
	}

	if logged {
		if err := s.dispatches.UpdateStatus(ctx, dispatch.ID, status, lastError); err != nil {
			log.Error().Err(err).Msg("Failed to update dispatch status")
		}
	}

	if deliverErr != nil {
		return &RemoteError{Kind: NotificationFailed, Op: "deliver notification", Err: deliverErr}
	}
	return nil
}

// NotificationHistory lists the dispatch log of one record
type NotificationHistory struct {
	dispatches repository.DispatchRepository
}

// NewNotificationHistory creates a reader over the dispatch log
func NewNotificationHistory(dispatches repository.DispatchRepository) *NotificationHistory {
	return &NotificationHistory{dispatches: dispatches}
}

// List returns the dispatch attempts for recordID, newest first
func (h *NotificationHistory) List(ctx context.Context, recordID string) ([]*models.NotificationDispatch, error) {
	dispatches, err := h.dispatches.ListByRecord(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", recordID, err)
	}
	if dispatches == nil {
		dispatches = []*models.NotificationDispatch{}
	}
	return dispatches, nil
}
