// Package notify publishes moderation events to an external channel. Delivery
// is best effort: callers hand a message to a Sink and never see the outcome.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
)

const DefaultTopic = "ai-notification-topic"

const (
	AggregateFeedback = models.AggregateFeedback
	AggregateReport   = models.AggregateReport

	ActionDeleted          = "DELETED"
	ActionEvidenceVerified = "EVIDENCE_VERIFIED"
)

// Message is the JSON payload published for each significant change.
type Message struct {
	Topic          string     `json:"topic"`
	AggregateType  string     `json:"aggregate_type"`
	AggregateID    uuid.UUID  `json:"aggregate_id"`
	Action         string     `json:"action"`
	PreviousStatus string     `json:"previous_status,omitempty"`
	NewStatus      string     `json:"new_status,omitempty"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

type Sink interface {
	Publish(msg Message)
}

// Transport delivers one message. Dispatcher owns the call timeout.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

type discard struct{}

func (discard) Publish(Message) {}

// Discard drops every message.
var Discard Sink = discard{}

// Dispatcher queues messages in a bounded buffer and sends them from a single
// worker. A full queue or failed send drops the message and logs it.
type Dispatcher struct {
	transport Transport
	topic     string
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	done   chan struct{}
}

func NewDispatcher(transport Transport, topic string, size int, timeout time.Duration) *Dispatcher {
	if topic == "" {
		topic = DefaultTopic
	}
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := &Dispatcher{
		transport: transport,
		topic:     topic,
		timeout:   timeout,
		queue:     make(chan Message, size),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Publish(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.Warn("notification dropped after shutdown", "action", msg.Action, "aggregate_id", msg.AggregateID.String())
		return
	}
	msg.Topic = d.topic
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now().UTC()
	}
	select {
	case d.queue <- msg:
	default:
		slog.Warn("notification queue full, dropping message",
			"action", msg.Action,
			"aggregate_type", msg.AggregateType,
			"aggregate_id", msg.AggregateID.String(),
		)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.transport.Send(ctx, msg)
		cancel()
		if err != nil {
			slog.Error("notification send failed",
				"error", err.Error(),
				"action", msg.Action,
				"aggregate_type", msg.AggregateType,
				"aggregate_id", msg.AggregateID.String(),
			)
		}
	}
}

// Close stops accepting messages, drains the queue and closes the transport.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
	return d.transport.Close()
}
