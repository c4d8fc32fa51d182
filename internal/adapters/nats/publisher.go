package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/shipquote/internal/core/domain"
)

// Subjects and streams used by the service.
const (
	SubjectRecommendationPrefix = "logistics.recommendation."
	SubjectRecommendationAll    = "logistics.recommendation.>"
	SubjectOrderUpdatedPrefix   = "logistics.order.updated."
	SubjectOrderUpdatedAll      = "logistics.order.updated.>"

	StreamRecommendations = "LOGISTICS"
	StreamOrderUpdates    = "LOGISTICS_ORDERS"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      StreamRecommendations,
			Subjects:  []string{SubjectRecommendationAll},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      StreamOrderUpdates,
			Subjects:  []string{SubjectOrderUpdatedAll},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		cfg := cfg
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishRecommendation publishes to logistics.recommendation.<priority>.
func (p *Publisher) PublishRecommendation(ctx context.Context, event *domain.RecommendationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	subject := SubjectRecommendationPrefix + strings.ToLower(string(event.Priority))
	_, err = p.js.Publish(subject, data, nats.Context(ctx), nats.MsgId(event.EventID))
	return err
}

// PublishOrderUpdated announces that an order changed and its cached results are stale.
func (p *Publisher) PublishOrderUpdated(ctx context.Context, orderID string) error {
	_, err := p.js.Publish(SubjectOrderUpdatedPrefix+orderID, []byte(orderID), nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("shipquote"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
