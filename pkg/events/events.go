package events

import (
	"context"
	"sync"
	"time"
)

const (
	TopicUser    = "user_events"
	TopicProduct = "product_events"
	TopicOrder   = "order_events"
)

var Topics = []string{TopicUser, TopicProduct, TopicOrder}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

// Envelope is the JSON shape of every message written to a topic.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func New(eventType string, data any) Envelope {
	return Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }

type Message struct {
	Topic string
	Key   string
	Event any
}

// Recorder keeps published messages in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
	Err  error
}

func (r *Recorder) Publish(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, Message{Topic: topic, Key: key, Event: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *Recorder) Types(topic string) []string {
	var out []string
	for _, m := range r.Messages() {
		if m.Topic != topic {
			continue
		}
		if env, ok := m.Event.(Envelope); ok {
			out = append(out, env.Type)
		}
	}
	return out
}
