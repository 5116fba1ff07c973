package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/todoapp/pkg/logger"
)

// listInvalidator drops the cached todo list. *cache.TodoListCache satisfies it.
type listInvalidator interface {
	Invalidate(ctx context.Context) error
}

// eventEnvelope holds the fields common to every todo event payload.
type eventEnvelope struct {
	EventID string `json:"event_id"`
	Version int    `json:"version"`
	TodoID  int64  `json:"todo_id,omitempty"`
	Cleared int    `json:"cleared,omitempty"`
}

// handleTodoEvent returns the handler for one todo topic. It logs the event
// and drops the cached list so readers on other replicas see the change.
// Handlers must be idempotent; EventBus retries up to 3x on failure.
func handleTodoEvent(topic string, log logger.Logger, invalidator listInvalidator) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt eventEnvelope
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s event %s: %w", topic, msg.UUID, err)
		}

		log.InfoContext(ctx, "todo event received",
			"topic", topic,
			"event_id", evt.EventID,
			"todo_id", evt.TodoID,
			"cleared", evt.Cleared,
		)

		if invalidator == nil {
			return nil
		}
		if err := invalidator.Invalidate(ctx); err != nil {
			// Cache invalidation is best-effort; the TTL bounds staleness.
			log.WarnContext(ctx, "todo list cache invalidation failed", "event_id", evt.EventID, "error", err)
		}
		return nil
	}
}
