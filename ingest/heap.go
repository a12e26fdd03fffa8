package ingest

import (
	"container/heap"

	"github.com/docfed/docfed"
)

// queuedTask wraps an ingestion task with its heap bookkeeping. seq
// breaks priority ties in enqueue order.
type queuedTask struct {
	task  *docfed.IngestionTask
	seq   uint64
	index int
}

// taskHeap implements heap.Interface ordered by descending priority,
// then ascending enqueue sequence.
type taskHeap []*queuedTask

var _ heap.Interface = (*taskHeap)(nil)

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].task.Result.Priority != h[j].task.Result.Priority {
		return h[i].task.Result.Priority > h[j].task.Result.Priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	qt, _ := x.(*queuedTask)
	qt.index = len(*h)
	*h = append(*h, qt)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	qt := old[n-1]
	old[n-1] = nil
	qt.index = -1
	*h = old[0 : n-1]
	return qt
}
