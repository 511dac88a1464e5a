package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const whatsAppPrefix = "whatsapp:"

// WhatsAppSender delivers a plain text WhatsApp message and returns the provider message id
type WhatsAppSender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

type twilioGateway struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioGateway creates a WhatsApp sender backed by the Twilio messaging API
func NewTwilioGateway(accountSID, authToken, fromNumber string) WhatsAppSender {
	return &twilioGateway{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: WhatsAppAddress(fromNumber),
	}
}

// SendText sends body to the given number. The Twilio client has no context support,
// so ctx is only checked before the call.
func (g *twilioGateway) SendText(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(WhatsAppAddress(to))
	params.SetFrom(g.from)
	params.SetBody(body)

	resp, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message to %s: %w", to, err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

// WhatsAppAddress prefixes a phone number with the Twilio WhatsApp scheme
func WhatsAppAddress(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, whatsAppPrefix) {
		return number
	}
	return whatsAppPrefix + number
}
