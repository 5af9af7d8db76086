package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockQueue_FIFOOrder(t *testing.T) {
	q := New()
	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)

	ctx := context.Background()
	for _, want := range []uint64{1, 2, 3} {
		n, ok := q.Dequeue(ctx)
		require.True(t, ok)
		assert.Equal(t, want, n)
	}
}

func TestBlockQueue_PauseBlocksDequeue(t *testing.T) {
	q := New()
	q.Pause()
	q.Enqueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, ok := q.Dequeue(ctx)
	assert.False(t, ok)
}

func TestBlockQueue_ResumeUnblocksDequeue(t *testing.T) {
	q := New()
	q.Pause()
	q.Enqueue(1)

	result := make(chan uint64, 1)
	go func() {
		n, ok := q.Dequeue(context.Background())
		if ok {
			result <- n
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Resume()

	select {
	case n := <-result:
		assert.Equal(t, uint64(1), n)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not unblock after resume")
	}
}

func TestBlockQueue_ClearDiscardsPending(t *testing.T) {
	q := New()
	q.Enqueue(1)
	q.Enqueue(2)
	q.Clear()
	assert.Equal(t, 0, q.Len())
}

func TestBlockQueue_CloseUnblocksDequeue(t *testing.T) {
	q := New()
	result := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(context.Background())
		result <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-result:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not unblock after close")
	}
}
