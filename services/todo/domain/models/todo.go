package models

import "time"

// Todo is the single aggregate of the todo context.
type Todo struct {
	ID        int64 // assigned by the store, never reused
	Text      TodoText
	Completed bool
	CreatedAt time.Time // set once at construction
}

// NewTodo returns an unsaved, not-yet-completed Todo stamped with the current
// UTC time. The store assigns ID when it persists the record.
func NewTodo(text TodoText) *Todo {
	return &Todo{
		Text:      text,
		Completed: false,
		CreatedAt: time.Now().UTC(),
	}
}

// Clone returns a copy that shares no state with t.
func (t *Todo) Clone() *Todo {
	c := *t
	return &c
}

// TodoPatch lists the fields an update may change. Nil fields are left as-is.
type TodoPatch struct {
	Completed *bool
	Text      *TodoText
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Completed == nil && p.Text == nil
}

// Apply writes the non-nil patch fields onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Text != nil {
		t.Text = *p.Text
	}
}
