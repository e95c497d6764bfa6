// Package redpanda publishes evaluation lifecycle events to Redpanda/Kafka
// and consumes them to wake the sweeper early.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

const (
	// DefaultEventsTopic carries interview.* lifecycle events keyed by interview id.
	DefaultEventsTopic = "interview-evaluation-events"
	eventsPartitions   = 3
)

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher implements domain.EventPublisher.
type Publisher struct {
	client producer
	admin  requester
	topic  string
}

// NewPublisher constructs a Publisher. It does not contact the brokers;
// call EnsureTopic once at startup.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		topic = DefaultEventsTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.WithHooks(tracingHooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}
	slog.Info("redpanda publisher created", slog.Any("brokers", brokers), slog.String("topic", topic))
	return &Publisher{client: client, admin: client, topic: topic}, nil
}

// EnsureTopic creates the events topic when missing.
func (p *Publisher) EnsureTopic(ctx context.Context) error {
	return ensureTopic(ctx, p.admin, p.topic, eventsPartitions, 1)
}

// Publish writes ev synchronously so callers see broker errors.
func (p *Publisher) Publish(ctx domain.Context, ev domain.EvaluationEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("op=events.publish: marshal: %w", err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.InterviewID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "interview_id", Value: []byte(ev.InterviewID)},
		},
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("op=events.publish: %w", err)
	}
	return nil
}

// Ping asks the cluster for metadata; used by readiness probes.
func (p *Publisher) Ping(ctx context.Context) error {
	if p.admin == nil {
		return fmt.Errorf("redpanda publisher not connected")
	}
	req := kmsg.NewPtrMetadataRequest()
	if _, err := p.admin.Request(ctx, req); err != nil {
		return fmt.Errorf("op=events.ping: %w", err)
	}
	return nil
}

// Close flushes and closes the client.
func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}

func tracingHooks() []kgo.Hook {
	tracer := kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))
	return kotel.NewKotel(kotel.WithTracer(tracer)).Hooks()
}
