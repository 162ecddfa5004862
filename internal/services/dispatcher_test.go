package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/dukachat-backend/internal/models"
	"github.com/Ananth-NQI/dukachat-backend/internal/session"
	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

type sentPayload struct {
	to      string
	payload whatsapp.Payload
}

type recordingGateway struct {
	mu   sync.Mutex
	sent []sentPayload
	read []string
	err  error
}

func (g *recordingGateway) Send(_ context.Context, to string, p whatsapp.Payload) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentPayload{to: to, payload: p})
	return g.err
}

func (g *recordingGateway) MarkRead(_ context.Context, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.read = append(g.read, messageID)
	return g.err
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []MessageEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev MessageEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

type dispatcherEnv struct {
	*testEnv
	sessions   *session.Manager
	gateway    *recordingGateway
	notifier   *recordingNotifier
	dispatcher *Dispatcher
}

func newDispatcherEnv(t *testing.T) *dispatcherEnv {
	env := &dispatcherEnv{
		testEnv:  newTestEnv(t),
		sessions: session.NewManager(session.NewMemoryStore()),
		gateway:  &recordingGateway{},
		notifier: &recordingNotifier{},
	}
	env.dispatcher = NewDispatcher(env.sessions, env.engine, env.gateway, NewMessageLog(env.store, env.notifier))
	return env
}

func textMessage(from, id, body string) whatsapp.Incoming {
	ev := models.TextEvent(from, body)
	ev.MessageID = id
	return whatsapp.Incoming{Event: ev, Type: "text", Supported: true}
}

func imageMessage(from, id, mediaID string) whatsapp.Incoming {
	return whatsapp.Incoming{
		Event:   models.InboundEvent{CustomerID: from, MessageID: id},
		Type:    "image",
		MediaID: mediaID,
	}
}

const customer = "255700000001"

func TestHandleIncomingRepliesAndLogs(t *testing.T) {
	env := newDispatcherEnv(t)
	ctx := context.Background()

	env.dispatcher.HandleIncoming(ctx, textMessage(customer, "wamid.1", "hi"))

	require.Len(t, env.gateway.sent, 2)
	assert.Equal(t, customer, env.gateway.sent[0].to)
	assert.Equal(t, "interactive", env.gateway.sent[0].payload.Type)
	assert.Equal(t, "list", env.gateway.sent[0].payload.Interactive.Type)
	assert.Equal(t, "button", env.gateway.sent[1].payload.Interactive.Type)
	assert.Equal(t, []string{"wamid.1"}, env.gateway.read)

	msgs, err := env.store.ListMessages(ctx, customer, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, models.DirectionInbound, msgs[0].Direction)
	assert.Equal(t, "hi", msgs[0].Body)
	assert.Equal(t, models.DirectionOutbound, msgs[1].Direction)
	assert.Len(t, env.notifier.events, 3)
}

func TestHandleIncomingDropsDuplicates(t *testing.T) {
	env := newDispatcherEnv(t)
	ctx := context.Background()

	env.dispatcher.HandleIncoming(ctx, textMessage(customer, "wamid.1", "track"))
	sent := env.gateway.count()
	require.Equal(t, 1, sent)

	env.dispatcher.HandleIncoming(ctx, textMessage(customer, "wamid.1", "track"))
	assert.Equal(t, sent, env.gateway.count())

	// the message log still rejects it after the in-memory set is cleared
	assert.Equal(t, 1, env.dispatcher.ResetSeen())
	env.dispatcher.HandleIncoming(ctx, textMessage(customer, "wamid.1", "track"))
	assert.Equal(t, sent, env.gateway.count())

	s, err := env.sessions.Get(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, models.StepTrackByName, s.Step)
}

func TestSendFailureKeepsSessionProgress(t *testing.T) {
	env := newDispatcherEnv(t)
	env.gateway.err = errors.New("channel down")
	ctx := context.Background()

	env.dispatcher.HandleIncoming(ctx, textMessage(customer, "wamid.1", "track"))

	s, err := env.sessions.Get(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, models.StepTrackByName, s.Step)

	msgs, err := env.store.ListMessages(ctx, customer, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestImageCompletesPendingProof(t *testing.T) {
	env := newDispatcherEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.CreateOrder(ctx, &models.Order{Ref: "ORD-1", CustomerID: customer, Status: models.OrderStatusAwaitingPayment}))

	s := models.NewSession(customer)
	s.Cart = []models.CartItem{{SKU: "sofa", Name: "Sofa", Qty: 1, UnitPrice: 120000}}
	s.AwaitProof("ORD-1")
	require.NoError(t, env.sessions.Put(ctx, customer, s))

	env.dispatcher.HandleIncoming(ctx, imageMessage(customer, "wamid.2", "media-1"))

	order, err := env.store.GetOrder(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProofSubmitted, order.Status)
	assert.Equal(t, "media-1", order.ProofMediaID)

	s, err = env.sessions.Get(ctx, customer)
	require.NoError(t, err)
	assert.False(t, s.AwaitingProof)
	assert.Empty(t, s.Cart)
	require.Equal(t, 1, env.gateway.count())
	assert.Contains(t, env.gateway.sent[0].payload.Text.Body, "ORD-1")

	msgs, err := env.store.ListMessages(ctx, customer, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.DirectionOutbound, msgs[0].Direction)
}

func TestImageWithoutPendingOrderIsUnsupported(t *testing.T) {
	env := newDispatcherEnv(t)
	ctx := context.Background()

	env.dispatcher.HandleIncoming(ctx, imageMessage(customer, "wamid.3", "media-1"))

	require.Equal(t, 3, env.gateway.count())
	assert.Equal(t, tr(models.LanguageEnglish, "unsupported"), env.gateway.sent[0].payload.Text.Body)

	msgs, err := env.store.ListMessages(ctx, customer, 10)
	require.NoError(t, err)
	assert.Equal(t, "[image]", msgs[0].Body)
}

func TestUnsupportedMessageRepromptsCurrentStep(t *testing.T) {
	env := newDispatcherEnv(t)
	ctx := context.Background()

	s := models.NewSession(customer)
	s.Step = models.StepDeliveryName
	s.PendingItem = &models.CartItem{SKU: "sofa", Name: "Sofa", Qty: 1, UnitPrice: 120000}
	require.NoError(t, env.sessions.Put(ctx, customer, s))

	env.dispatcher.HandleIncoming(ctx, whatsapp.Incoming{
		Event: models.InboundEvent{CustomerID: customer, MessageID: "wamid.4"},
		Type:  "sticker",
	})

	require.Equal(t, 2, env.gateway.count())
	assert.Equal(t, tr(models.LanguageEnglish, "ask_name"), env.gateway.sent[1].payload.Text.Body)

	after, err := env.sessions.Get(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, models.StepDeliveryName, after.Step)
}

func TestProofReceived(t *testing.T) {
	env := newDispatcherEnv(t)
	ctx := context.Background()

	assert.False(t, env.dispatcher.ProofReceived(ctx, customer, "media-9"))
	assert.Zero(t, env.gateway.count())

	require.NoError(t, env.store.CreateOrder(ctx, &models.Order{Ref: "ORD-7", CustomerID: customer, Status: models.OrderStatusAwaitingPayment}))
	s := models.NewSession(customer)
	s.AwaitProof("ORD-7")
	require.NoError(t, env.sessions.Put(ctx, customer, s))

	assert.True(t, env.dispatcher.ProofReceived(ctx, customer, "media-9"))
	order, err := env.store.GetOrder(ctx, "ORD-7")
	require.NoError(t, err)
	assert.Equal(t, "media-9", order.ProofMediaID)
}

func TestDispatchSerializesSameCustomer(t *testing.T) {
	env := newDispatcherEnv(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev := models.ReplyEvent(customer, "add:sofa")
			ev.MessageID = fmt.Sprintf("wamid.%d", i)
			env.dispatcher.HandleIncoming(ctx, whatsapp.Incoming{Event: ev, Type: "interactive", Supported: true})
		}(i)
	}
	wg.Wait()

	s, err := env.sessions.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, s.Cart, 1)
	assert.Equal(t, n, s.Cart[0].Qty)
	assert.Equal(t, n, env.gateway.count())
}
