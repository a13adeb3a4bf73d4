package search

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Applier interface {
	Apply(ctx context.Context, value []byte) error
}

func NewProductReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// Consume applies messages until ctx is cancelled. A message that fails to
// apply is logged and still committed.
func Consume(ctx context.Context, r MessageReader, a Applier) error {
	l := logging.FromContext(ctx).With("component", "search.consumer")
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return err
		}

		if err := a.Apply(ctx, m.Value); err != nil {
			l.Error("apply_event_error", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
