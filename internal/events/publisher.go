// Package events publishes finalized turns to Kafka for downstream
// consumers (analytics, transcript archival). The sink is optional: with
// no brokers configured it degrades to log-only mode.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/parleyvoice/parley/internal/logging"
)

// FinalizedTurn is the event emitted once per completed user turn.
type FinalizedTurn struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes finalized-turn events to a Kafka topic.
type Publisher struct {
	writer  *kafka.Writer
	enabled bool
	log     *zap.SugaredLogger
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers []string
	Topic   string
}

// New creates a publisher. With no brokers it stays in log-only mode.
func New(cfg Config) *Publisher {
	log := logging.Named("events")
	if len(cfg.Brokers) == 0 {
		log.Infow("kafka disabled, finalized turns will only be logged")
		return &Publisher{log: log}
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
		},
		enabled: true,
		log:     log,
	}
}

// Publish emits one finalized turn. Failures are logged, never propagated;
// the conversation must not depend on the event sink.
func (p *Publisher) Publish(ctx context.Context, text string) {
	ev := FinalizedTurn{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	if !p.enabled {
		p.log.Debugw("finalized turn", "id", ev.ID, "chars", len(ev.Text))
		return
	}

	value, err := json.Marshal(ev)
	if err != nil {
		p.log.Errorw("marshal finalized turn failed", "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.ID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Errorw("kafka publish failed", "error", err, "id", ev.ID)
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
