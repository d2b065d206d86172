package dispatch_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-g-r/relay/dispatch"
	"github.com/stretchr/testify/assert"
)

func TestTasksWithSameKeyRunInOrder(t *testing.T) {
	pool := dispatch.New(dispatch.WithWorkers(4), dispatch.WithQueueSize(64))

	var mtx sync.Mutex
	var got []int

	for i := 0; i < 20; i++ {
		n := i
		err := pool.Submit("user-a", func(ctx context.Context) {
			mtx.Lock()
			got = append(got, n)
			mtx.Unlock()
		})
		assert.Nil(t, err)
	}

	pool.Shutdown()

	assert.Len(t, got, 20)
	for i, n := range got {
		assert.Equal(t, i, n)
	}
}

func TestSubmitDoesNotBlockWhenQueueIsFull(t *testing.T) {
	pool := dispatch.New(dispatch.WithWorkers(1), dispatch.WithQueueSize(1))

	release := make(chan struct{})
	started := make(chan struct{})

	// occupy the worker
	err := pool.Submit("k", func(ctx context.Context) {
		close(started)
		<-release
	})
	assert.Nil(t, err)
	<-started

	// fill the queue
	assert.Nil(t, pool.Submit("k", func(ctx context.Context) {}))

	// next submit is rejected rather than blocking
	err = pool.Submit("k", func(ctx context.Context) {})
	assert.ErrorIs(t, err, dispatch.ErrQueueFull)

	close(release)
	pool.Shutdown()
}

func TestShutdownDrainsQueuedTasks(t *testing.T) {
	pool := dispatch.New(dispatch.WithWorkers(2), dispatch.WithQueueSize(16))

	var mtx sync.Mutex
	ran := 0

	for i := 0; i < 10; i++ {
		assert.Nil(t, pool.Submit("k", func(ctx context.Context) {
			mtx.Lock()
			ran++
			mtx.Unlock()
		}))
	}

	pool.Shutdown()

	assert.Equal(t, 10, ran)

	// submits after shutdown are rejected
	err := pool.Submit("k", func(ctx context.Context) {})
	assert.ErrorIs(t, err, dispatch.ErrClosed)
}
