package notify

import (
	"sync"

	"news_reader/internal/model"
)

// Queue holds the notifications currently shown to one consumer.
type Queue struct {
	mu    sync.Mutex
	items []model.Notification
	limit int
}

// NewQueue creates a Queue. With limit > 0 the oldest entry is dropped once
// the queue would exceed limit; limit <= 0 leaves it unbounded.
func NewQueue(limit int) *Queue {
	return &Queue{limit: limit}
}

// Push appends n to the queue.
func (q *Queue) Push(n model.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
	if q.limit > 0 && len(q.items) > q.limit {
		q.items = append(q.items[:0:0], q.items[len(q.items)-q.limit:]...)
	}
}

// Dismiss removes the notification with the given id.
// It reports whether one was removed; an unknown id is not an error.
func (q *Queue) Dismiss(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the queued notifications in arrival order.
func (q *Queue) List() []model.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := make([]model.Notification, len(q.items))
	copy(cp, q.items)
	return cp
}

// Len returns the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear dismisses every notification.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
