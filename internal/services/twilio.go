package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

// TwilioGateway sends through Twilio's WhatsApp API. Twilio has no reply
// buttons here, so interactive payloads go out as numbered text.
type TwilioGateway struct {
	client *twilio.RestClient
	from   string // Format: "whatsapp:+14155238886"
}

// NewTwilioGateway creates a new Twilio gateway instance
func NewTwilioGateway(accountSid, authToken, from string) (*TwilioGateway, error) {
	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioGateway{client: client, from: from}, nil
}

// Send sends a WhatsApp message via Twilio
func (t *TwilioGateway) Send(_ context.Context, to string, p whatsapp.Payload) error {
	body := whatsapp.PlainText(p)
	if body == "" {
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", strings.TrimPrefix(to, "whatsapp:")))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}

	if resp.Sid != nil {
		log.Printf("✅ WhatsApp message sent via Twilio! SID: %s", *resp.Sid)
	}
	return nil
}

// MarkRead is a no-op: Twilio does not expose read receipts for inbound messages
func (t *TwilioGateway) MarkRead(context.Context, string) error {
	return nil
}
