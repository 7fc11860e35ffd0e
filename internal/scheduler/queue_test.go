package scheduler

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/require"
)

func push(q *taskQueue, priority Priority, seq uint64) {
	heap.Push(q, &task{priority: priority, seq: seq})
}

// TestTaskQueue_OrdersByPriorityThenSequence pops higher priority first and
// oldest first within a level.
func TestTaskQueue_OrdersByPriorityThenSequence(t *testing.T) {
	q := newTaskQueue()

	push(q, PriorityLow, 0)
	push(q, PriorityNormal, 1)
	push(q, PriorityCritical, 2)
	push(q, PriorityNormal, 3)
	push(q, PriorityIdle, 4)
	push(q, PriorityHigh, 5)

	var got []uint64
	for q.Len() > 0 {
		got = append(got, heap.Pop(q).(*task).seq)
	}
	require.Equal(t, []uint64{2, 5, 1, 3, 0, 4}, got)
}

// TestTaskQueue_FIFOWithinSinglePriority keeps strict submission order.
func TestTaskQueue_FIFOWithinSinglePriority(t *testing.T) {
	q := newTaskQueue()
	for seq := uint64(0); seq < 16; seq++ {
		push(q, PriorityNormal, seq)
	}

	for want := uint64(0); q.Len() > 0; want++ {
		require.Equal(t, want, heap.Pop(q).(*task).seq)
	}
}
