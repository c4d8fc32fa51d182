package natsadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Subscriber consumes logistics events from JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// InvalidatorGroup is the durable consumer and queue group shared by every replica.
const InvalidatorGroup = "reco-invalidator"

// SubscribeOrderUpdates calls handler with the order ID of every order-updated event.
// Replicas join one queue group, so each event is handled by a single replica.
// Failed handlers are redelivered up to three times.
func (s *Subscriber) SubscribeOrderUpdates(ctx context.Context, handler func(ctx context.Context, orderID string) error) error {
	sub, err := s.js.QueueSubscribe(SubjectOrderUpdatedAll, InvalidatorGroup, orderUpdatedHandler(ctx, handler),
		nats.Durable(InvalidatorGroup),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func orderUpdatedHandler(ctx context.Context, handler func(ctx context.Context, orderID string) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		orderID := strings.TrimPrefix(msg.Subject, SubjectOrderUpdatedPrefix)
		if orderID == "" {
			orderID = string(msg.Data)
		}
		if err := handler(ctx, orderID); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
