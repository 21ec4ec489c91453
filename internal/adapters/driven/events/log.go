package events

import (
	"context"

	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// LogPublisher writes events to the debug log. Used when no broker is configured.
type LogPublisher struct{}

var _ driven.EventPublisher = LogPublisher{}

// Publish logs the event.
func (LogPublisher) Publish(_ context.Context, event driven.Event) error {
	logger.Debug("event %s: %v", event.Type, event.Payload)
	return nil
}
