package model

// Queue is the FIFO of titles waiting to be explored.
// It may hold duplicates and titles that are already in the network;
// those are skipped when they are popped.
type Queue struct {
	items []string
	head  int
}

// NewQueue returns a queue pre-filled with titles in order.
func NewQueue(titles ...string) *Queue {
	q := &Queue{}
	q.Push(titles...)
	return q
}

// Push appends titles to the tail of the queue.
func (q *Queue) Push(titles ...string) {
	q.items = append(q.items, titles...)
}

// PushFront puts title back at the head of the queue, so it is popped next.
func (q *Queue) PushFront(title string) {
	if q.head > 0 {
		q.head--
		q.items[q.head] = title
		return
	}
	q.items = append([]string{title}, q.items...)
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (string, bool) {
	if q.head >= len(q.items) {
		return "", false
	}
	title := q.items[q.head]
	q.items[q.head] = ""
	q.head++

	// Reclaim the consumed prefix once it dominates the slice.
	if q.head > 1024 && q.head*2 > len(q.items) {
		q.items = append([]string(nil), q.items[q.head:]...)
		q.head = 0
	}
	return title, true
}

// Len returns the number of pending titles.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Items returns a copy of the pending titles in FIFO order.
func (q *Queue) Items() []string {
	out := make([]string, q.Len())
	copy(out, q.items[q.head:])
	return out
}
