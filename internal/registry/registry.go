package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznetsov/videogen/internal/domain"
	errpkg "github.com/mkuznetsov/videogen/internal/errors"
)

// Registry is the process-scoped, concurrent-safe store of task state.
// Tasks live in memory only; entries older than the TTL are pruned
// lazily on read.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	ttl   time.Duration
	now   func() time.Time
}

// New creates an empty Registry with the given task TTL.
func New(ttl time.Duration) *Registry {
	return &Registry{
		tasks: make(map[string]*domain.Task),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create allocates a fresh task in state Pending with progress 0.
// It never fails; identifiers are never reused.
func (r *Registry) Create(req domain.GenerateRequest) *domain.Task {
	task := &domain.Task{
		ID:        uuid.New().String(),
		State:     domain.StatePending,
		Progress:  0,
		Message:   "Starting video generation...",
		CreatedAt: r.now(),
		Request:   req,
	}

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.mu.Unlock()

	slog.Debug("task created", "task_id", task.ID)
	return task
}

// Get returns a read snapshot of a task. Unknown identifiers and
// entries past the TTL report ErrTaskNotFound; expired entries are
// removed as a side effect.
func (r *Registry) Get(id string) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists {
		return domain.Task{}, errpkg.ErrTaskNotFound
	}

	if r.now().Sub(task.CreatedAt) > r.ttl {
		delete(r.tasks, id)
		slog.Debug("task expired", "task_id", id)
		return domain.Task{}, errpkg.ErrTaskNotFound
	}

	return task.Snapshot(), nil
}

// Update advances a running task's progress and message. Progress is
// monotone: a lower value than the current one is kept at the current
// value. Updates against a terminal task are ignored.
func (r *Registry) Update(id string, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists || task.State.IsTerminal() {
		return
	}

	task.State = domain.StateProcessing
	if progress > task.Progress {
		task.Progress = progress
	}
	task.Message = message
}

// Complete transitions a task to its Completed terminal state, records
// the produced artifact and forces progress to 100.
func (r *Registry) Complete(id, artifactID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists || task.State.IsTerminal() {
		return
	}

	task.State = domain.StateCompleted
	task.Progress = 100
	task.Message = "Video generated successfully!"
	task.ArtifactID = artifactID
}

// Fail transitions a task to its Failed terminal state with the
// captured error text.
func (r *Registry) Fail(id, errText string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, exists := r.tasks[id]
	if !exists || task.State.IsTerminal() {
		return
	}

	task.State = domain.StateFailed
	task.Message = "Error: " + errText
	task.Error = errText
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
