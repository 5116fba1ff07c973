package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the todo store on every successful mutation.
const (
	TopicTodoCreated          = "todo.created"
	TopicTodoUpdated          = "todo.updated"
	TopicTodoDeleted          = "todo.deleted"
	TopicTodoCompletedCleared = "todo.completed_cleared"
)

// Topics lists every todo topic, in the order subscribers are registered.
var Topics = []string{
	TopicTodoCreated,
	TopicTodoUpdated,
	TopicTodoDeleted,
	TopicTodoCompletedCleared,
}

// TodoChangedEvent is published after a todo is created or updated and
// carries the full post-change state.
type TodoChangedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	TodoID     int64     `json:"todo_id"`
	Text       string    `json:"text"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"created_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TodoDeletedEvent is published after a single todo is removed.
type TodoDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	TodoID     int64     `json:"todo_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CompletedClearedEvent is published after a bulk clear that removed at
// least one todo.
type CompletedClearedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	Cleared    int       `json:"cleared"`
	OccurredAt time.Time `json:"occurred_at"`
}
