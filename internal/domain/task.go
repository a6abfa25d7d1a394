package domain

import (
	"time"
)

// TaskState represents the current state of a generation Task.
type TaskState string

const (
	StatePending    TaskState = "pending"
	StateProcessing TaskState = "processing"
	StateCompleted  TaskState = "completed"
	StateFailed     TaskState = "failed"
)

// IsTerminal reports whether no further state transitions are allowed.
func (s TaskState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Task is one in-flight or finished video generation request.
// It is mutated only by the pipeline run that owns it; pollers
// receive copies via Snapshot.
type Task struct {
	ID         string          `json:"id"`
	State      TaskState       `json:"state"`
	Progress   int             `json:"progress"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"created_at"`
	Request    GenerateRequest `json:"request"`
	ArtifactID string          `json:"artifact_id,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Snapshot returns a copy safe to hand to readers.
func (t *Task) Snapshot() Task {
	cp := *t
	cp.Request.Style = append([]string(nil), t.Request.Style...)
	return cp
}

// Scene is one segment of the script with a derived visual prompt.
type Scene struct {
	Index  int
	Prompt string
}
