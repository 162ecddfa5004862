package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/utils"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

// TrackResultLimit caps how many orders a name lookup lists
const TrackResultLimit = 5

// proofText accepts two or more words as the payer's name. There is no
// check against real payment records.
func (e *Engine) proofText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	fields := strings.Fields(ev.Text)
	if len(fields) < 2 {
		return e.reprompt(ctx, s, ev)
	}
	return e.acceptProof(ctx, s, strings.Join(fields, " "), "")
}

func (e *Engine) proofReply(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	prefix, arg := splitReply(ev.ReplyID)
	if prefix != prefixPay {
		return e.reprompt(ctx, s, ev)
	}
	for _, p := range e.settings.Payments {
		if p.ID == arg {
			e.recordPaymentMethod(ctx, s, p.ID)
			return one(whatsapp.Text("*" + p.Label + "*\n" + p.Instructions.For(s.Language) + "\n\n" + tr(s.Language, "proof")))
		}
	}
	return e.reprompt(ctx, s, ev)
}

func (e *Engine) recordPaymentMethod(ctx context.Context, s *models.Session, method string) {
	order, err := e.store.GetOrder(ctx, s.LastOrderRef)
	if err != nil {
		log.Printf("payment method %s from %s: no order %q: %v", method, s.CustomerID, s.LastOrderRef, err)
		return
	}
	order.PaymentMethod = method
	if err := e.store.UpdateOrder(ctx, order); err != nil {
		log.Printf("update order %s with payment method: %v", order.Ref, err)
	}
}

// AcceptProof marks the customer's pending order as paid-for and closes the
// purchase. It is also reached from receipt images and the proof API.
func (e *Engine) AcceptProof(ctx context.Context, s *models.Session, payerName, mediaID string) []whatsapp.Message {
	return e.remember(s, e.acceptProof(ctx, s, payerName, mediaID))
}

func (e *Engine) acceptProof(ctx context.Context, s *models.Session, payerName, mediaID string) []whatsapp.Message {
	ref := s.LastOrderRef
	order, err := e.store.GetOrder(ctx, ref)
	if err != nil {
		order, err = e.store.LatestOrder(ctx, s.CustomerID)
	}
	if err != nil {
		log.Printf("proof from %s: no order to attach it to: %v", s.CustomerID, err)
	} else {
		now := e.now()
		order.Status = models.OrderStatusProofSubmitted
		if payerName != "" {
			order.PayerName = payerName
		}
		if mediaID != "" {
			order.ProofMediaID = mediaID
		}
		order.ProofAt = &now
		if err := e.store.UpdateOrder(ctx, order); err != nil {
			log.Printf("update order %s with proof: %v", order.Ref, err)
		}
		ref = order.Ref
	}

	s.CompletePurchase()
	return one(whatsapp.Text(tr(s.Language, "proof_thanks", ref)))
}

func (e *Engine) trackText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	name := strings.Join(strings.Fields(ev.Text), " ")
	if name == "" {
		return e.reprompt(ctx, s, ev)
	}
	s.Step = models.StepIdle

	lang := s.Language
	orders, err := e.store.FindOrdersByCustomerName(ctx, name, TrackResultLimit)
	if err != nil {
		log.Printf("track orders for %q: %v", name, err)
	}
	if len(orders) == 0 {
		return one(whatsapp.Text(tr(lang, "track_none", name)))
	}

	lines := []string{tr(lang, "track_found", name)}
	for _, o := range orders {
		status := o.Status
		if l, ok := statusLabels[o.Status]; ok {
			status = l.For(lang)
		}
		lines = append(lines, fmt.Sprintf("• %s (%s): %s, %s", o.Ref, o.CreatedAt.Format("02 Jan"), utils.FormatMoney(o.Total), status))
	}
	return one(whatsapp.Text(strings.Join(lines, "\n")))
}
