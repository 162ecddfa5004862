package whatsapp

import (
	"strconv"
	"strings"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// TwilioWebhookPayload is an inbound WhatsApp message posted by Twilio
// as application/x-www-form-urlencoded
type TwilioWebhookPayload struct {
	MessageSid        string `form:"MessageSid"`
	AccountSid        string `form:"AccountSid"`
	From              string `form:"From"` // whatsapp:+255754000111
	To                string `form:"To"`
	Body              string `form:"Body"`
	ProfileName       string `form:"ProfileName"`
	ButtonPayload     string `form:"ButtonPayload"`
	ButtonText        string `form:"ButtonText"`
	Latitude          string `form:"Latitude"`
	Longitude         string `form:"Longitude"`
	Address           string `form:"Address"`
	Label             string `form:"Label"`
	NumMedia          string `form:"NumMedia"`
	MediaUrl0         string `form:"MediaUrl0"`
	MediaContentType0 string `form:"MediaContentType0"`
}

// TwilioSender strips the channel prefix and the plus sign so Twilio
// senders share session keys with Cloud API wa_ids
func TwilioSender(from string) string {
	from = strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
	return strings.TrimPrefix(from, "+")
}

// detach copies every field so nothing aliases the request buffer, which
// fasthttp reuses once the handler returns
func (p TwilioWebhookPayload) detach() TwilioWebhookPayload {
	for _, f := range []*string{
		&p.MessageSid, &p.AccountSid, &p.From, &p.To, &p.Body, &p.ProfileName,
		&p.ButtonPayload, &p.ButtonText, &p.Latitude, &p.Longitude, &p.Address,
		&p.Label, &p.NumMedia, &p.MediaUrl0, &p.MediaContentType0,
	} {
		*f = strings.Clone(*f)
	}
	return p
}

// NormalizeTwilio maps a Twilio delivery onto the inbound event union.
// Images carry the media URL as MediaID.
func NormalizeTwilio(p TwilioWebhookPayload) Incoming {
	p = p.detach()
	in := Incoming{
		Event: models.InboundEvent{
			CustomerID:  TwilioSender(p.From),
			MessageID:   p.MessageSid,
			ProfileName: p.ProfileName,
			ReceivedAt:  time.Now(),
		},
	}

	if n, _ := strconv.Atoi(p.NumMedia); n > 0 {
		in.Type = "unsupported"
		if strings.HasPrefix(p.MediaContentType0, "image/") {
			in.Type = "image"
			in.MediaID = p.MediaUrl0
			in.Caption = strings.TrimSpace(p.Body)
		}
		return in
	}

	if p.ButtonPayload != "" {
		in.Type = "button"
		in.Supported = true
		in.Event.Kind = models.EventInteractive
		in.Event.ReplyID = p.ButtonPayload
		in.Event.ReplyTitle = p.ButtonText
		return in
	}

	if p.Latitude != "" && p.Longitude != "" {
		lat, errLat := strconv.ParseFloat(p.Latitude, 64)
		lon, errLon := strconv.ParseFloat(p.Longitude, 64)
		in.Type = "location"
		if errLat != nil || errLon != nil {
			return in
		}
		in.Supported = true
		in.Event.Kind = models.EventLocation
		in.Event.Pin = &models.LocationPin{Lat: lat, Lon: lon, Name: p.Label, Address: p.Address}
		return in
	}

	in.Type = "text"
	in.Supported = true
	in.Event.Kind = models.EventText
	in.Event.Text = strings.TrimSpace(p.Body)
	return in
}
