package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/middleground/internal/core/domain"
)

// Subscriber consumes search lifecycle events from JetStream. It backs the
// memory-learning worker, which updates user preferences from completed
// searches.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber sharing a NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeSearchCompleted delivers every completed search to handler with
// at-least-once semantics.
func (s *Subscriber) SubscribeSearchCompleted(ctx context.Context, handler func(ctx context.Context, record *domain.SearchRecord) error) error {
	sub, err := s.js.Subscribe("meeting.search.completed.>", func(msg *nats.Msg) {
		var rec domain.SearchRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &rec); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("memory-learner"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeRankFallbacks delivers ranking fallback alerts to handler.
func (s *Subscriber) SubscribeRankFallbacks(ctx context.Context, handler func(ctx context.Context, reason string) error) error {
	sub, err := s.js.Subscribe("meeting.alerts.rank_fallback", func(msg *nats.Msg) {
		if err := handler(ctx, string(msg.Data)); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("fallback-monitor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
