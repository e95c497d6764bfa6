package redpanda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

type poller interface {
	PollFetches(ctx context.Context) kgo.Fetches
	Close()
}

// WakeConsumer listens for interview.queued events and nudges the
// sweeper. Events only shorten the wait until the next sweep; a lost
// event costs one sweep interval.
type WakeConsumer struct {
	client  poller
	groupID string
	topic   string
	nudge   func(interviewID string)
	retry   backoff.BackOff
}

// NewWakeConsumer constructs a consumer group member on topic.
func NewWakeConsumer(brokers []string, groupID, topic string, nudge func(interviewID string)) (*WakeConsumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if nudge == nil {
		return nil, fmt.Errorf("nudge callback required")
	}
	if topic == "" {
		topic = DefaultEventsTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.WithHooks(tracingHooks()...),
		kgo.SessionTimeout(30*time.Second),
		kgo.HeartbeatInterval(3*time.Second),
		kgo.FetchMaxWait(10*time.Second),
		kgo.AutoCommitInterval(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda consumer: %w", err)
	}
	return newWakeConsumer(client, groupID, topic, nudge), nil
}

func newWakeConsumer(client poller, groupID, topic string, nudge func(string)) *WakeConsumer {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return &WakeConsumer{client: client, groupID: groupID, topic: topic, nudge: nudge, retry: b}
}

// Run polls until ctx is done or the client is closed.
func (c *WakeConsumer) Run(ctx context.Context) error {
	slog.Info("wake consumer started", slog.String("topic", c.topic), slog.String("group_id", c.groupID))
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var fetchErr error
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			fetchErr = err
			slog.Warn("wake consumer fetch error", slog.String("topic", topic), slog.Int("partition", int(partition)), slog.Any("error", err))
		})
		if fetchErr != nil {
			wait := c.retry.NextBackOff()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		c.retry.Reset()
		fetches.EachRecord(c.handleRecord)
	}
}

// handleRecord nudges for queued events and ignores everything else,
// including records it cannot decode.
func (c *WakeConsumer) handleRecord(r *kgo.Record) {
	var ev domain.EvaluationEvent
	if err := json.Unmarshal(r.Value, &ev); err != nil {
		slog.Warn("wake consumer skipped undecodable record", slog.Int64("offset", r.Offset), slog.Any("error", err))
		return
	}
	if ev.Type != domain.EventInterviewQueued {
		return
	}
	c.nudge(ev.InterviewID)
}

// Close leaves the group and closes the client.
func (c *WakeConsumer) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
