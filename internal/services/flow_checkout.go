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

func (e *Engine) startCheckout(ctx context.Context, s *models.Session) []whatsapp.Message {
	if len(s.CheckoutItems()) == 0 {
		return append(one(whatsapp.Text(tr(s.Language, "cart_empty"))), e.mainMenu(ctx, s)...)
	}
	s.Step = models.StepAskDeliveryArea
	return one(areaButtons(s.Language))
}

func areaButtons(lang models.Language) whatsapp.Message {
	return whatsapp.Buttons(tr(lang, "ask_area"),
		whatsapp.Button{ID: replyID(prefixArea, string(models.AreaInside)), Title: tr(lang, "btn_inside")},
		whatsapp.Button{ID: replyID(prefixArea, string(models.AreaOutside)), Title: tr(lang, "btn_outside")},
	)
}

func modeButtons(lang models.Language) whatsapp.Message {
	return whatsapp.Buttons(tr(lang, "ask_mode"),
		whatsapp.Button{ID: replyID(prefixMode, models.DeliveryModeDelivery), Title: tr(lang, "btn_delivery")},
		whatsapp.Button{ID: replyID(prefixMode, models.DeliveryModePickup), Title: tr(lang, "btn_pickup")},
	)
}

func (e *Engine) areaText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	switch key := keyword(ev.Text); {
	case insideWords[key]:
		return e.chooseArea(ctx, s, models.AreaInside)
	case outsideWords[key]:
		return e.chooseArea(ctx, s, models.AreaOutside)
	}
	return e.reprompt(ctx, s, ev)
}

func (e *Engine) areaReply(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	if prefix, arg := splitReply(ev.ReplyID); prefix == prefixArea {
		return e.chooseArea(ctx, s, models.DeliveryArea(arg))
	}
	return e.reprompt(ctx, s, ev)
}

func (e *Engine) chooseArea(ctx context.Context, s *models.Session, area models.DeliveryArea) []whatsapp.Message {
	switch area {
	case models.AreaInside:
		s.Area = area
		s.Step = models.StepAskDeliveryMode
		return one(modeButtons(s.Language))
	case models.AreaOutside:
		s.Area = area
		s.Step = models.StepOutsideName
		return one(whatsapp.Text(tr(s.Language, "ask_name")))
	}
	return e.prompt(ctx, s, s.CurrentStep())
}

func (e *Engine) modeText(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	switch key := keyword(ev.Text); {
	case deliveryWords[key]:
		return e.chooseMode(ctx, s, models.DeliveryModeDelivery)
	case pickupWords[key]:
		return e.chooseMode(ctx, s, models.DeliveryModePickup)
	}
	return e.reprompt(ctx, s, ev)
}

func (e *Engine) modeReply(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	if prefix, arg := splitReply(ev.ReplyID); prefix == prefixMode {
		return e.chooseMode(ctx, s, arg)
	}
	return e.reprompt(ctx, s, ev)
}

func (e *Engine) chooseMode(ctx context.Context, s *models.Session, mode string) []whatsapp.Message {
	switch mode {
	case models.DeliveryModePickup:
		return e.completePickup(ctx, s)
	case models.DeliveryModeDelivery:
		s.Step = models.StepDeliveryName
		return one(whatsapp.Text(tr(s.Language, "ask_name")))
	}
	return e.prompt(ctx, s, s.CurrentStep())
}

func (e *Engine) captureName(next models.FlowStep) stepHandler {
	return func(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
		name := strings.Join(strings.Fields(ev.Text), " ")
		if name == "" {
			return e.reprompt(ctx, s, ev)
		}
		s.Contact.Name = name
		s.Step = next
		return one(whatsapp.Text(tr(s.Language, "ask_phone")))
	}
}

// capturePhone stores the number and moves on; the delivery branch continues
// with location capture, which starts at GPS when there is no index to pick from.
func (e *Engine) capturePhone(next models.FlowStep) stepHandler {
	return func(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
		if strings.TrimSpace(ev.Text) == "" {
			return e.reprompt(ctx, s, ev)
		}
		if !utils.ValidPhone(ev.Text) {
			return one(whatsapp.Text(tr(s.Language, "bad_phone") + " " + tr(s.Language, "ask_phone")))
		}
		s.Contact.Phone = utils.NormalizePhone(ev.Text)
		s.Step = next
		if next == models.StepSelectDistrict && e.resolver.Index().Empty() {
			s.Step = models.StepAwaitGPS
		}
		return e.prompt(ctx, s, s.Step)
	}
}

func (e *Engine) captureRegion(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	region := strings.Join(strings.Fields(ev.Text), " ")
	if region == "" {
		return e.reprompt(ctx, s, ev)
	}
	s.Contact.Region = region
	quote := models.DeliveryQuote{
		Method:     models.MethodFlatRate,
		Confidence: 1,
		Fee:        e.settings.OutsideAreaFee,
	}
	return e.placeOrder(ctx, s, models.DeliveryModeOutside, quote, region)
}

// completePickup records the order and ends the flow with the pickup instructions
func (e *Engine) completePickup(ctx context.Context, s *models.Session) []whatsapp.Message {
	lang := s.Language
	order, ok := e.createOrder(ctx, s, models.DeliveryModePickup, models.DeliveryQuote{Method: models.MethodNone}, "")
	if !ok {
		s.ResetFlow()
		return append(one(whatsapp.Text(tr(lang, "cart_empty"))), e.mainMenu(ctx, s)...)
	}
	s.CompletePurchase()
	s.LastOrderRef = order.Ref

	summary := itemLines(order.Items) + "\n" + tr(lang, "total", utils.FormatMoney(order.Total))
	return one(whatsapp.Text(tr(lang, "pickup", order.Ref, e.settings.PickupInstructions.For(lang), summary)))
}

// placeOrder is the terminal step of both paid branches: summary, payment
// options, then Idle with proof of payment pending.
func (e *Engine) placeOrder(ctx context.Context, s *models.Session, mode string, quote models.DeliveryQuote, where string) []whatsapp.Message {
	lang := s.Language
	order, ok := e.createOrder(ctx, s, mode, quote, where)
	if !ok {
		s.ResetFlow()
		return append(one(whatsapp.Text(tr(lang, "cart_empty"))), e.mainMenu(ctx, s)...)
	}
	s.AwaitProof(order.Ref)
	return []whatsapp.Message{
		whatsapp.Text(e.orderSummary(lang, order, quote)),
		e.paymentOptions(lang),
	}
}

func (e *Engine) createOrder(ctx context.Context, s *models.Session, mode string, quote models.DeliveryQuote, where string) (*models.Order, bool) {
	items := s.CheckoutItems()
	if len(items) == 0 {
		return nil, false
	}
	subtotal := models.CartSubtotal(items)
	status := models.OrderStatusAwaitingPayment
	if mode == models.DeliveryModePickup {
		status = models.OrderStatusPickupPending
	}

	order := &models.Order{
		Ref:             e.newRef(),
		CustomerID:      s.CustomerID,
		CustomerName:    s.Contact.Name,
		Phone:           s.Contact.Phone,
		Region:          s.Contact.Region,
		DeliveryMode:    mode,
		Location:        where,
		Items:           append([]models.CartItem(nil), items...),
		Subtotal:        subtotal,
		Fee:             quote.Fee,
		Total:           subtotal + quote.Fee,
		DistanceKm:      quote.DistanceKm,
		QuoteMethod:     string(quote.Method),
		QuoteConfidence: quote.Confidence,
		Status:          status,
	}
	if order.Phone == "" {
		order.Phone = s.CustomerID
	}
	if err := e.store.CreateOrder(ctx, order); err != nil {
		log.Printf("save order %s for %s: %v", order.Ref, s.CustomerID, err)
	} else {
		log.Printf("order %s placed by %s: %s total=%d fee=%d method=%s", order.Ref, s.CustomerID, mode, order.Total, order.Fee, quote.Method)
	}
	return order, true
}

func (e *Engine) orderSummary(lang models.Language, order *models.Order, quote models.DeliveryQuote) string {
	var b strings.Builder
	b.WriteString(tr(lang, "order", order.Ref) + "\n")
	b.WriteString(itemLines(order.Items) + "\n\n")
	b.WriteString(tr(lang, "subtotal", utils.FormatMoney(order.Subtotal)) + "\n")
	if order.Location != "" {
		b.WriteString(tr(lang, "deliver_to", order.Location) + "\n")
	}
	b.WriteString(tr(lang, "fee", quoteLabel(lang, quote), utils.FormatMoney(order.Fee)) + "\n")
	b.WriteString(tr(lang, "total", utils.FormatMoney(order.Total)))
	return b.String()
}

func quoteLabel(lang models.Language, q models.DeliveryQuote) string {
	l, ok := quoteLabels[q.Method]
	if !ok {
		l = quoteLabels[models.MethodNone]
	}
	label := l.For(lang)
	if strings.Contains(label, "%s") {
		label = fmt.Sprintf(label, q.ResolvedStreet)
	}
	if q.DistanceKm > 0 {
		label = fmt.Sprintf("%s, %.1f km", label, q.DistanceKm)
	}
	return label
}

func (e *Engine) paymentOptions(lang models.Language) whatsapp.Message {
	body := tr(lang, "pay_prompt") + "\n\n" + tr(lang, "proof")
	if len(e.settings.Payments) == 0 {
		return whatsapp.Text(tr(lang, "pay_none") + "\n\n" + tr(lang, "proof"))
	}
	if len(e.settings.Payments) > whatsapp.MaxButtons {
		rows := make([]whatsapp.Row, 0, len(e.settings.Payments))
		for _, p := range e.settings.Payments {
			rows = append(rows, whatsapp.Row{ID: replyID(prefixPay, p.ID), Title: p.Label})
		}
		return whatsapp.List(body, tr(lang, "pay_label"), whatsapp.Section{Rows: rows}).WithHeader(tr(lang, "pay_header"))
	}
	buttons := make([]whatsapp.Button, 0, len(e.settings.Payments))
	for _, p := range e.settings.Payments {
		buttons = append(buttons, whatsapp.Button{ID: replyID(prefixPay, p.ID), Title: p.Label})
	}
	return whatsapp.Buttons(body, buttons...).WithHeader(tr(lang, "pay_header"))
}
