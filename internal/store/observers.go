package store

import (
	"log/slog"
	"sync"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// CompletionObserver is told about completion and progress every time the
// store produces a new tree value, and once when it subscribes.
type CompletionObserver interface {
	OnTaskCompletionChange(allCompleted bool)
	OnProgressChange(percent int)
}

// CompletionFuncs adapts two plain functions to CompletionObserver. Either
// may be nil.
type CompletionFuncs struct {
	Completion func(allCompleted bool)
	Progress   func(percent int)
}

func (f CompletionFuncs) OnTaskCompletionChange(allCompleted bool) {
	if f.Completion != nil {
		f.Completion(allCompleted)
	}
}

func (f CompletionFuncs) OnProgressChange(percent int) {
	if f.Progress != nil {
		f.Progress(percent)
	}
}

// TaskUpdateFunc receives the merged node after a successful update.
type TaskUpdateFunc func(task *domain.Task)

// notifyQueue runs observer callbacks outside the store lock, in the order
// they were queued. A callback that mutates the store queues its own
// notifications behind the ones already pending instead of running them
// inline.
type notifyQueue struct {
	mu       sync.Mutex
	pending  []func()
	flushing bool
	logger   *slog.Logger
}

func (q *notifyQueue) push(fns ...func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fns...)
	q.mu.Unlock()
}

// flush drains the queue. If another flush is already running it returns
// immediately and that flush picks up the new entries.
func (q *notifyQueue) flush() {
	q.mu.Lock()
	if q.flushing {
		q.mu.Unlock()
		return
	}
	q.flushing = true
	for len(q.pending) > 0 {
		fn := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		q.run(fn)
		q.mu.Lock()
	}
	q.flushing = false
	q.mu.Unlock()
}

func (q *notifyQueue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("observer panicked", "panic", r)
		}
	}()
	fn()
}

type subscription[T any] struct {
	id int
	fn T
}

type registry[T any] struct {
	next int
	subs []subscription[T]
}

func (r *registry[T]) add(fn T) int {
	r.next++
	r.subs = append(r.subs, subscription[T]{id: r.next, fn: fn})
	return r.next
}

func (r *registry[T]) remove(id int) {
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

func (r *registry[T]) snapshot() []T {
	out := make([]T, len(r.subs))
	for i, s := range r.subs {
		out[i] = s.fn
	}
	return out
}
