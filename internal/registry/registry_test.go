package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsov/videogen/internal/domain"
	errpkg "github.com/mkuznetsov/videogen/internal/errors"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := New(time.Hour)

	task := r.Create(domain.GenerateRequest{Script: "hello", Voice: "male"})
	require.NotEmpty(t, task.ID)
	assert.Equal(t, domain.StatePending, task.State)
	assert.Equal(t, 0, task.Progress)

	got, err := r.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "hello", got.Request.Script)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := New(time.Hour)

	_, err := r.Get("no-such-task")
	assert.True(t, errors.Is(err, errpkg.ErrTaskNotFound))
}

func TestRegistry_TTLExpiry(t *testing.T) {
	r := New(time.Hour)
	task := r.Create(domain.GenerateRequest{Script: "old"})

	now := time.Now()
	r.now = func() time.Time { return now.Add(2 * time.Hour) }

	_, err := r.Get(task.ID)
	assert.True(t, errors.Is(err, errpkg.ErrTaskNotFound))
	assert.Equal(t, 0, r.Len(), "expired entry should be removed on read")
}

func TestRegistry_ProgressMonotone(t *testing.T) {
	r := New(time.Hour)
	task := r.Create(domain.GenerateRequest{Script: "s"})

	r.Update(task.ID, 20, "Generating images...")
	r.Update(task.ID, 10, "late update")

	got, err := r.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Progress)
	assert.Equal(t, domain.StateProcessing, got.State)
	assert.Equal(t, "late update", got.Message)
}

func TestRegistry_TerminalStatesAreFinal(t *testing.T) {
	r := New(time.Hour)

	t.Run("completed", func(t *testing.T) {
		task := r.Create(domain.GenerateRequest{Script: "s"})
		r.Complete(task.ID, "artifact-1")
		r.Update(task.ID, 50, "should be ignored")
		r.Fail(task.ID, "should be ignored")

		got, err := r.Get(task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateCompleted, got.State)
		assert.Equal(t, 100, got.Progress)
		assert.Equal(t, "artifact-1", got.ArtifactID)
		assert.Empty(t, got.Error)
	})

	t.Run("failed", func(t *testing.T) {
		task := r.Create(domain.GenerateRequest{Script: "s"})
		r.Fail(task.ID, "encode broke")
		r.Complete(task.ID, "artifact-2")

		got, err := r.Get(task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateFailed, got.State)
		assert.Equal(t, "encode broke", got.Error)
		assert.Empty(t, got.ArtifactID)
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			task := r.Create(domain.GenerateRequest{Script: fmt.Sprintf("script %d", n)})
			for p := 10; p <= 90; p += 10 {
				r.Update(task.ID, p, "working")
				if _, err := r.Get(task.ID); err != nil {
					t.Errorf("unexpected get error: %v", err)
				}
			}
			r.Complete(task.ID, fmt.Sprintf("artifact-%d", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, r.Len())
}
