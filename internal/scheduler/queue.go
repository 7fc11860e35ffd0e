package scheduler

import "container/heap"

// taskQueue is a binary heap ordered by (priority, submission sequence):
// higher priority first, oldest first within a level. Not self-synchronized;
// the scheduler guards it with its own mutex.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*task)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

func newTaskQueue() *taskQueue {
	q := make(taskQueue, 0, 64)
	heap.Init(&q)
	return &q
}
