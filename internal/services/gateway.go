package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Ananth-NQI/dukachat-backend/internal/whatsapp"
)

// Gateway delivers composed payloads to the messaging channel
type Gateway interface {
	Send(ctx context.Context, to string, p whatsapp.Payload) error
	MarkRead(ctx context.Context, messageID string) error
}

// LogGateway prints payloads instead of sending them (local development)
type LogGateway struct{}

func (LogGateway) Send(_ context.Context, to string, p whatsapp.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	log.Printf("📤 [log gateway] to=%s %s", to, body)
	return nil
}

func (LogGateway) MarkRead(_ context.Context, messageID string) error {
	log.Printf("👀 [log gateway] read %s", messageID)
	return nil
}

// BreakerGateway stops calling the channel after repeated send failures
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerGateway wraps next; five consecutive failures open the breaker for 30s
func NewBreakerGateway(name string, next Gateway) *BreakerGateway {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚡ gateway breaker %s: %s -> %s", name, from, to)
		},
	}
	return &BreakerGateway{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *BreakerGateway) Send(ctx context.Context, to string, p whatsapp.Payload) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, to, p)
	})
	return breakerErr(err)
}

// MarkRead is not counted by the breaker but is skipped while it is open
func (b *BreakerGateway) MarkRead(ctx context.Context, messageID string) error {
	if b.cb.State() == gobreaker.StateOpen {
		return breakerErr(gobreaker.ErrOpenState)
	}
	return b.next.MarkRead(ctx, messageID)
}

// State reports closed, half-open or open
func (b *BreakerGateway) State() string {
	return b.cb.State().String()
}

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("gateway unavailable: %w", err)
	}
	return err
}
