package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/nats-io/nats.go"
)

// defaultFlushTimeout bounds a flush when the caller's context has no deadline
const defaultFlushTimeout = 5 * time.Second

// NatsEventPublisher broadcasts ledger events on NATS subjects <prefix>.<event type>
type NatsEventPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNatsEventPublisher creates a publisher on an established connection
func NewNatsEventPublisher(conn *nats.Conn, prefix string) repository.EventPublisher {
	return &NatsEventPublisher{
		conn:   conn,
		prefix: prefix,
	}
}

// Subject returns the subject an event type is published on
func (p *NatsEventPublisher) Subject(eventType entity.EventType) string {
	return fmt.Sprintf("%s.%s", p.prefix, eventType)
}

// Publish sends each event as JSON and flushes the connection
func (p *NatsEventPublisher) Publish(ctx context.Context, events []entity.Event) error {
	if p.conn == nil {
		return fmt.Errorf("not connected")
	}

	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", e.ID, err)
		}

		msg := nats.NewMsg(p.Subject(e.Type))
		msg.Header.Set(nats.MsgIdHdr, e.ID)
		msg.Data = payload
		if err := p.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("failed to publish event %s: %w", e.ID, err)
		}
	}

	flushCtx, cancel := withFlushDeadline(ctx)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("failed to flush events: %w", err)
	}
	return nil
}

// withFlushDeadline returns ctx unchanged if it already has a deadline; FlushWithContext
// rejects contexts without one.
func withFlushDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultFlushTimeout)
}
