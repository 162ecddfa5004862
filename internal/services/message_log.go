package services

import (
	"context"
	"log"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/storage"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

// MessageLog persists every inbound and outbound message and mirrors it to
// real-time subscribers.
type MessageLog struct {
	store    storage.Store
	notifier Notifier
}

// NewMessageLog creates a message log; a nil notifier disables push
func NewMessageLog(store storage.Store, notifier Notifier) *MessageLog {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MessageLog{store: store, notifier: notifier}
}

// Inbound records a received message. It reports false when the channel
// message id was already logged.
func (l *MessageLog) Inbound(ctx context.Context, in whatsapp.Incoming) (bool, error) {
	rec := &models.MessageRecord{
		ConversationID: in.Event.CustomerID,
		Direction:      models.DirectionInbound,
		Type:           in.Type,
		Body:           in.Summary(),
	}
	if id := in.Event.MessageID; id != "" {
		rec.WAMessageID = &id
	}

	inserted, err := l.store.SaveMessage(ctx, rec)
	if err != nil {
		return false, err
	}
	if inserted {
		l.notify(ctx, rec)
	}
	return inserted, nil
}

// Outbound records a sent (or attempted) payload. Failures are only logged.
func (l *MessageLog) Outbound(ctx context.Context, to string, p whatsapp.Payload) {
	msgType := p.Type
	if p.Interactive != nil {
		msgType = p.Interactive.Type
	}
	rec := &models.MessageRecord{
		ConversationID: to,
		Direction:      models.DirectionOutbound,
		Type:           msgType,
		Body:           whatsapp.PlainText(p),
	}
	if _, err := l.store.SaveMessage(ctx, rec); err != nil {
		log.Printf("save outbound message for %s: %v", to, err)
		return
	}
	l.notify(ctx, rec)
}

func (l *MessageLog) notify(ctx context.Context, rec *models.MessageRecord) {
	at := rec.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	err := l.notifier.Notify(ctx, MessageEvent{
		Type:           "message",
		ConversationID: rec.ConversationID,
		Direction:      rec.Direction,
		MessageType:    rec.Type,
		Body:           rec.Body,
		At:             at,
	})
	if err != nil {
		log.Printf("notify %s message for %s: %v", rec.Direction, rec.ConversationID, err)
	}
}
