package services

import (
	"context"
	"log"
	"sync"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/session"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

// Dispatcher runs normalized inbound messages through the engine: dedupe,
// log, mark read, then lock > handle > store session > send replies.
type Dispatcher struct {
	sessions *session.Manager
	engine   *Engine
	gateway  Gateway
	messages *MessageLog
	seen     sync.Map
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(sessions *session.Manager, engine *Engine, gateway Gateway, messages *MessageLog) *Dispatcher {
	return &Dispatcher{
		sessions: sessions,
		engine:   engine,
		gateway:  gateway,
		messages: messages,
	}
}

// MarkSeen records a channel message id and reports whether it was new
func (d *Dispatcher) MarkSeen(messageID string) bool {
	if messageID == "" {
		return true
	}
	_, loaded := d.seen.LoadOrStore(messageID, struct{}{})
	return !loaded
}

// ResetSeen clears the in-memory dedupe set; the message log still rejects
// ids it has stored.
func (d *Dispatcher) ResetSeen() int {
	n := 0
	d.seen.Range(func(key, _ any) bool {
		d.seen.Delete(key)
		n++
		return true
	})
	return n
}

// HandleIncoming processes one message from a webhook delivery. It never
// fails: every error is logged and the next message proceeds.
func (d *Dispatcher) HandleIncoming(ctx context.Context, in whatsapp.Incoming) {
	ev := in.Event
	if !d.MarkSeen(ev.MessageID) {
		log.Printf("skipping duplicate message %s from %s", ev.MessageID, ev.CustomerID)
		return
	}

	inserted, err := d.messages.Inbound(ctx, in)
	switch {
	case err != nil:
		log.Printf("save inbound message %s from %s: %v", ev.MessageID, ev.CustomerID, err)
	case !inserted:
		log.Printf("skipping redelivered message %s from %s", ev.MessageID, ev.CustomerID)
		return
	}

	if ev.MessageID != "" {
		if err := d.gateway.MarkRead(ctx, ev.MessageID); err != nil {
			log.Printf("mark read %s: %v", ev.MessageID, err)
		}
	}

	switch {
	case in.Supported:
		d.Dispatch(ctx, ev)
	case in.Type == "image":
		d.imageReceived(ctx, ev.CustomerID, in.MediaID)
	default:
		log.Printf("unsupported %s message from %s", in.Type, ev.CustomerID)
		d.run(ctx, ev.CustomerID, func(s *models.Session) []whatsapp.Message {
			return d.engine.Unsupported(ctx, s)
		})
	}
}

// Dispatch applies one event to the customer's session and sends the replies
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.InboundEvent) {
	d.run(ctx, ev.CustomerID, func(s *models.Session) []whatsapp.Message {
		return d.engine.Handle(ctx, s, ev)
	})
}

// ProofReceived attaches an external proof of payment (a receipt image) to
// the customer's pending order. It reports false when nothing was pending.
func (d *Dispatcher) ProofReceived(ctx context.Context, customerID, mediaID string) bool {
	accepted := false
	d.run(ctx, customerID, func(s *models.Session) []whatsapp.Message {
		if !s.AwaitingProof {
			return nil
		}
		accepted = true
		return d.engine.AcceptProof(ctx, s, "", mediaID)
	})
	return accepted
}

func (d *Dispatcher) imageReceived(ctx context.Context, customerID, mediaID string) {
	d.run(ctx, customerID, func(s *models.Session) []whatsapp.Message {
		if s.AwaitingProof && s.Step == models.StepIdle {
			return d.engine.AcceptProof(ctx, s, "", mediaID)
		}
		return d.engine.Unsupported(ctx, s)
	})
}

// run updates the session under the customer's lock, then sends the replies
// while still holding it so replies keep the order of their events.
func (d *Dispatcher) run(ctx context.Context, customerID string, fn func(*models.Session) []whatsapp.Message) {
	var replies []whatsapp.Message
	err := d.sessions.UpdateThen(ctx, customerID, func(s *models.Session) error {
		replies = fn(s)
		return nil
	}, func(*models.Session) {
		d.send(ctx, customerID, replies)
	})
	if err != nil {
		log.Printf("session update for %s: %v", customerID, err)
	}
}

func (d *Dispatcher) send(ctx context.Context, to string, replies []whatsapp.Message) {
	for _, p := range whatsapp.ComposeAll(replies) {
		if err := d.gateway.Send(ctx, to, p); err != nil {
			log.Printf("send %s to %s: %v", p.Type, to, err)
		}
		d.messages.Outbound(ctx, to, p)
	}
}
