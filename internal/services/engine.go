package services

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Ananth-NQI/dukachat-backend/internal/delivery"
	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/storage"
	"github.com/Ananth-NQI/dukachat-backend/internal/utils"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

// DefaultStreetPageSize leaves room for the navigation row in a 10-row list
const DefaultStreetPageSize = 9

// Settings is the shop configuration the flow needs
type Settings struct {
	ShopName           string
	PickupInstructions models.Localized
	OutsideAreaFee     int64
	StreetPageSize     int
	Payments           []models.PaymentMethod
}

// stepHandler runs one transition. It mutates the session and returns the replies.
type stepHandler func(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message

type transitionKey struct {
	step models.FlowStep
	kind models.EventKind
}

// Engine is the checkout state machine. Handle is only safe for one event
// per customer at a time; Dispatcher serializes through session.Manager.
type Engine struct {
	store    storage.Store
	resolver *delivery.Resolver
	settings Settings
	newRef   func() string
	now      func() time.Time
	routes   map[transitionKey]stepHandler
}

// NewEngine creates a new flow engine
func NewEngine(store storage.Store, resolver *delivery.Resolver, settings Settings) *Engine {
	if settings.StreetPageSize <= 0 || settings.StreetPageSize > whatsapp.MaxRows-1 {
		settings.StreetPageSize = DefaultStreetPageSize
	}
	if settings.ShopName == "" {
		settings.ShopName = "our shop"
	}
	if resolver == nil {
		fees, _ := delivery.NewFeeTable(delivery.DefaultBands(), nil)
		resolver = delivery.NewResolver(nil, fees)
	}

	e := &Engine{
		store:    store,
		resolver: resolver,
		settings: settings,
		newRef:   utils.GenerateOrderRef,
		now:      time.Now,
	}
	e.routes = e.transitions()
	return e
}

// transitions is the (step, event kind) table. Every pair must be present;
// an entry of e.reprompt means the event is not expected in that step.
func (e *Engine) transitions() map[transitionKey]stepHandler {
	const (
		text  = models.EventText
		reply = models.EventInteractive
		pin   = models.EventLocation
	)
	return map[transitionKey]stepHandler{
		{models.StepIdle, text}:  e.idleText,
		{models.StepIdle, reply}: e.idleReply,
		{models.StepIdle, pin}:   e.reprompt,

		{models.StepAskDeliveryArea, text}:  e.areaText,
		{models.StepAskDeliveryArea, reply}: e.areaReply,
		{models.StepAskDeliveryArea, pin}:   e.reprompt,

		{models.StepAskDeliveryMode, text}:  e.modeText,
		{models.StepAskDeliveryMode, reply}: e.modeReply,
		{models.StepAskDeliveryMode, pin}:   e.reprompt,

		{models.StepOutsideName, text}:  e.captureName(models.StepOutsidePhone),
		{models.StepOutsideName, reply}: e.reprompt,
		{models.StepOutsideName, pin}:   e.reprompt,

		{models.StepOutsidePhone, text}:  e.capturePhone(models.StepOutsideRegion),
		{models.StepOutsidePhone, reply}: e.reprompt,
		{models.StepOutsidePhone, pin}:   e.reprompt,

		{models.StepOutsideRegion, text}:  e.captureRegion,
		{models.StepOutsideRegion, reply}: e.reprompt,
		{models.StepOutsideRegion, pin}:   e.reprompt,

		{models.StepDeliveryName, text}:  e.captureName(models.StepDeliveryPhone),
		{models.StepDeliveryName, reply}: e.reprompt,
		{models.StepDeliveryName, pin}:   e.reprompt,

		{models.StepDeliveryPhone, text}:  e.capturePhone(models.StepSelectDistrict),
		{models.StepDeliveryPhone, reply}: e.reprompt,
		{models.StepDeliveryPhone, pin}:   e.reprompt,

		{models.StepSelectDistrict, text}:  e.districtText,
		{models.StepSelectDistrict, reply}: e.locationReply,
		{models.StepSelectDistrict, pin}:   e.locationPin,

		{models.StepSelectWard, text}:  e.wardText,
		{models.StepSelectWard, reply}: e.locationReply,
		{models.StepSelectWard, pin}:   e.locationPin,

		{models.StepSelectStreet, text}:  e.streetText,
		{models.StepSelectStreet, reply}: e.locationReply,
		{models.StepSelectStreet, pin}:   e.locationPin,

		{models.StepAwaitGPS, text}:  e.gpsText,
		{models.StepAwaitGPS, reply}: e.locationReply,
		{models.StepAwaitGPS, pin}:   e.locationPin,

		{models.StepWaitProof, text}:  e.proofText,
		{models.StepWaitProof, reply}: e.proofReply,
		{models.StepWaitProof, pin}:   e.reprompt,

		{models.StepTrackByName, text}:  e.trackText,
		{models.StepTrackByName, reply}: e.reprompt,
		{models.StepTrackByName, pin}:   e.reprompt,
	}
}

// Handle applies one inbound event to the session and returns the replies.
// A typed option number counts as tapping the choice shown at that position.
func (e *Engine) Handle(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	if ev.Kind == models.EventText {
		if id, ok := s.Choice(ev.Text); ok {
			ev.Kind, ev.ReplyID = models.EventInteractive, id
		}
	}
	return e.remember(s, e.handle(ctx, s, ev))
}

func (e *Engine) handle(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	step := s.CurrentStep()

	if step != models.StepIdle && e.isEscape(ev) {
		log.Printf("customer %s left %s", s.CustomerID, step)
		s.ResetFlow()
		return append([]whatsapp.Message{whatsapp.Text(tr(s.Language, "cancelled"))}, e.mainMenu(ctx, s)...)
	}

	handler, ok := e.routes[transitionKey{step, ev.Kind}]
	if !ok {
		log.Printf("no transition for step=%s kind=%s, re-prompting", step, ev.Kind)
		return e.prompt(ctx, s, step)
	}
	return handler(ctx, s, ev)
}

// Prompt re-renders the question for the customer's current step
func (e *Engine) Prompt(ctx context.Context, s *models.Session) []whatsapp.Message {
	return e.remember(s, e.prompt(ctx, s, s.CurrentStep()))
}

// Unsupported answers a message the flow cannot read with the current prompt
func (e *Engine) Unsupported(ctx context.Context, s *models.Session) []whatsapp.Message {
	return e.remember(s, append(one(whatsapp.Text(tr(s.Language, "unsupported"))), e.prompt(ctx, s, s.CurrentStep())...))
}

// remember keeps the reply ids of the outgoing choices, numbered the way
// plain-text channels show them
func (e *Engine) remember(s *models.Session, msgs []whatsapp.Message) []whatsapp.Message {
	var ids []string
	for _, p := range whatsapp.ComposeAll(msgs) {
		ids = append(ids, whatsapp.ChoiceIDs(p)...)
	}
	s.LastChoices = ids
	return msgs
}

// reprompt repeats the current question. An option number that matched
// nothing on screen is answered with a hint first.
func (e *Engine) reprompt(ctx context.Context, s *models.Session, ev models.InboundEvent) []whatsapp.Message {
	msgs := e.prompt(ctx, s, s.CurrentStep())
	if ev.Kind == models.EventText && isNumber(ev.Text) {
		return append(one(whatsapp.Text(tr(s.Language, "invalid_choice"))), msgs...)
	}
	return msgs
}

func isNumber(text string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(text))
	return err == nil
}

func (e *Engine) prompt(ctx context.Context, s *models.Session, step models.FlowStep) []whatsapp.Message {
	lang := s.Language
	switch step {
	case models.StepAskDeliveryArea:
		return one(areaButtons(lang))
	case models.StepAskDeliveryMode:
		return one(modeButtons(lang))
	case models.StepOutsideName, models.StepDeliveryName:
		return one(whatsapp.Text(tr(lang, "ask_name")))
	case models.StepOutsidePhone, models.StepDeliveryPhone:
		return one(whatsapp.Text(tr(lang, "ask_phone")))
	case models.StepOutsideRegion:
		return one(whatsapp.Text(tr(lang, "ask_region")))
	case models.StepSelectDistrict:
		return one(e.districtList(s))
	case models.StepSelectWard:
		return one(e.wardList(s))
	case models.StepSelectStreet:
		return one(e.streetPage(s))
	case models.StepAwaitGPS:
		return one(gpsPrompt(lang))
	case models.StepWaitProof:
		return one(whatsapp.Text(tr(lang, "proof")))
	case models.StepTrackByName:
		return one(whatsapp.Text(tr(lang, "ask_track")))
	default:
		return e.mainMenu(ctx, s)
	}
}

func (e *Engine) isEscape(ev models.InboundEvent) bool {
	switch ev.Kind {
	case models.EventText:
		return cancelWords[keyword(ev.Text)]
	case models.EventInteractive:
		return ev.ReplyID == actionMenu || ev.ReplyID == actionCancel
	}
	return false
}

// Reply ids carried on buttons and list rows
const (
	actionMenu     = "menu"
	actionCancel   = "cancel"
	actionCart     = "cart"
	actionClear    = "clear_cart"
	actionCheckout = "checkout"
	actionTrack    = "track"
	actionLang     = "lang"

	prefixProduct = "prod"
	prefixAdd     = "add"
	prefixBuy     = "buy"
	prefixInfo    = "info"
	prefixVariant = "var"
	prefixArea    = "area"
	prefixMode    = "mode"
	prefixDist    = "dist"
	prefixWard    = "ward"
	prefixStreet  = "street"
	prefixPay     = "pay"

	streetNext = "next"
	streetSkip = "skip"
	streetGPS  = "gps"
)

func replyID(prefix, arg string) string {
	return prefix + ":" + arg
}

// splitReply separates "prefix:arg"; ids without a colon come back as the prefix
func splitReply(id string) (string, string) {
	prefix, arg, _ := strings.Cut(strings.TrimSpace(id), ":")
	return prefix, arg
}

func one(m whatsapp.Message) []whatsapp.Message {
	return []whatsapp.Message{m}
}
