package dispatch_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/watch/pkg/dispatch"
)

func TestInlineRunsSynchronously(t *testing.T) {
	ran := false
	dispatch.Inline.Dispatch(func() { ran = true })
	assert.True(t, ran, "inline dispatch must complete before returning")
}

func TestQueuePreservesOrder(t *testing.T) {
	q := dispatch.NewQueue(8)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Dispatch(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Close()

	assert.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v, "queue must preserve submission order")
	}
}

func TestQueueCloseWaitsForDrain(t *testing.T) {
	q := dispatch.NewQueue(16)

	count := 0
	for i := 0; i < 10; i++ {
		q.Dispatch(func() { count++ })
	}
	q.Close()

	assert.Equal(t, 10, count, "close must wait for queued work")
}

func TestQueueDropsAfterClose(t *testing.T) {
	q := dispatch.NewQueue(4)
	q.Close()

	ran := false
	q.Dispatch(func() { ran = true })
	assert.False(t, ran, "dispatch after close must be dropped")
}

func TestQueueCloseIdempotent(t *testing.T) {
	q := dispatch.NewQueue(4)
	q.Close()
	q.Close() // must not panic or deadlock
}
