package service

import (
	"context"

	"github.com/Skotchmaster/medical_shop/pkg/events"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

// publish is best effort: a failed write is logged and never fails the caller.
func publish(ctx context.Context, p events.Publisher, topic, key, eventType string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, events.New(eventType, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", eventType, "error", err)
	}
}
