package whatsapp

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
)

// Incoming is one provider message after normalization. Event is only
// meaningful when Supported is true; images carry MediaID instead.
type Incoming struct {
	Event     models.InboundEvent
	Type      string
	MediaID   string
	Caption   string
	Supported bool
}

// Summary renders the message for the conversation log
func (in Incoming) Summary() string {
	switch {
	case in.Type == "image":
		if in.Caption != "" {
			return "[image] " + in.Caption
		}
		return "[image]"
	case !in.Supported:
		return "[" + in.Type + "]"
	}
	switch in.Event.Kind {
	case models.EventInteractive:
		if in.Event.ReplyTitle != "" {
			return in.Event.ReplyTitle
		}
		return in.Event.ReplyID
	case models.EventLocation:
		pin := in.Event.Pin
		return fmt.Sprintf("[location] %.6f,%.6f", pin.Lat, pin.Lon)
	default:
		return in.Event.Text
	}
}

// ParseWebhook decodes a webhook body into normalized messages. A body that
// is not JSON fails as a whole; a bad entry is reported and skipped.
// Status updates are dropped.
func ParseWebhook(body []byte) ([]Incoming, []error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, []error{fmt.Errorf("decode webhook: %w", err)}
	}

	var (
		out  []Incoming
		errs []error
	)
	for i, raw := range payload.Entry {
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			errs = append(errs, fmt.Errorf("decode entry %d: %w", i, err))
			continue
		}
		for _, change := range entry.Changes {
			if change.Field != "" && change.Field != "messages" {
				continue
			}
			names := make(map[string]string, len(change.Value.Contacts))
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}
			for _, msg := range change.Value.Messages {
				if msg.From == "" {
					errs = append(errs, fmt.Errorf("entry %d: message %q has no sender", i, msg.ID))
					continue
				}
				in := Normalize(msg)
				in.Event.ProfileName = names[msg.From]
				out = append(out, in)
			}
		}
	}
	return out, errs
}

// Normalize maps a provider message onto the inbound event union
func Normalize(msg InboundMessage) Incoming {
	in := Incoming{
		Type: msg.Type,
		Event: models.InboundEvent{
			CustomerID: msg.From,
			MessageID:  msg.ID,
			ReceivedAt: parseTimestamp(msg.Timestamp),
		},
	}

	switch msg.Type {
	case "text":
		in.Supported = true
		in.Event.Kind = models.EventText
		if msg.Text != nil {
			in.Event.Text = strings.TrimSpace(msg.Text.Body)
		}
	case "interactive":
		reply := interactiveReply(msg.Interactive)
		if reply == nil || reply.ID == "" {
			return in
		}
		in.Supported = true
		in.Event.Kind = models.EventInteractive
		in.Event.ReplyID = reply.ID
		in.Event.ReplyTitle = reply.Title
	case "button":
		if msg.Button == nil || msg.Button.Payload == "" {
			return in
		}
		in.Supported = true
		in.Event.Kind = models.EventInteractive
		in.Event.ReplyID = msg.Button.Payload
		in.Event.ReplyTitle = msg.Button.Text
	case "location":
		if msg.Location == nil {
			return in
		}
		in.Supported = true
		in.Event.Kind = models.EventLocation
		in.Event.Pin = &models.LocationPin{
			Lat:     msg.Location.Latitude,
			Lon:     msg.Location.Longitude,
			Name:    msg.Location.Name,
			Address: msg.Location.Address,
		}
	case "image":
		if msg.Image != nil {
			in.MediaID = msg.Image.ID
			in.Caption = msg.Image.Caption
		}
	}
	return in
}

func interactiveReply(ic *InteractiveContent) *ReplyContent {
	if ic == nil {
		return nil
	}
	if ic.ButtonReply != nil {
		return ic.ButtonReply
	}
	return ic.ListReply
}

func parseTimestamp(ts string) time.Time {
	if secs, err := strconv.ParseInt(ts, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0)
	}
	return time.Now()
}
