package repository

import (
	"context"
	"fmt"
	"net/http"

	"watercare/internal/models"
)

const sendWhatsAppPath = "/send-whatsapp"

type notificationGateway struct {
	client *APIClient
}

// NewNotificationGateway creates a gateway to the remote WhatsApp dispatch endpoint
func NewNotificationGateway(client *APIClient) NotificationGateway {
	return &notificationGateway{client: client}
}

// SendWhatsApp asks the remote API to notify the admin about a new water test.
// The response body is ignored; only success or failure matters to the caller.
func (g *notificationGateway) SendWhatsApp(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return fmt.Errorf("notification cannot be nil")
	}

	if err := g.client.Do(ctx, http.MethodPost, sendWhatsAppPath, notification, nil); err != nil {
		return fmt.Errorf("failed to send whatsapp notification to %s: %w", notification.Mobile, err)
	}
	return nil
}
