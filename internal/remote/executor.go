package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher accepts commands for best-effort delivery. Dispatch must not
// block on the network.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command)
}

// Executor sends each command exactly once on its own goroutine. Failures
// are logged and reported to the observer; nothing is retried and nothing
// is returned to the caller.
type Executor struct {
	client   Client
	observer Observer
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewExecutor(client Client, observer Observer, logger *slog.Logger) *Executor {
	if observer == nil {
		observer = NoopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{client: client, observer: observer, logger: logger}
}

// Dispatch starts the call and returns immediately. The call keeps ctx's
// values but not its cancellation: once dispatched it cannot be aborted.
func (e *Executor) Dispatch(ctx context.Context, cmd Command) {
	ctx = context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run(ctx, cmd)
	}()
}

// Wait blocks until every dispatched call has finished. Used by short-lived
// processes before exit, and by tests.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) run(ctx context.Context, cmd Command) {
	start := time.Now()
	err := e.send(ctx, cmd)
	event := SyncEvent{
		Op:        cmd.Op,
		ProjectID: cmd.ProjectID,
		TaskID:    cmd.TaskID,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: ErrorCode(err),
	}
	if err != nil {
		e.logger.Error("remote sync failed",
			"op", string(cmd.Op),
			"project", cmd.ProjectID,
			"task", cmd.TaskID,
			"error", err,
		)
	}
	e.observer.OnSyncComplete(event)
}

func (e *Executor) send(ctx context.Context, cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during sync: %v", r)
		}
	}()
	return e.client.PatchProject(ctx, cmd.ProjectID, cmd.Body)
}

// Recorder is a Dispatcher that keeps commands in memory instead of sending
// them. Useful for tests and dry runs.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

func (r *Recorder) Dispatch(_ context.Context, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

// Commands returns a copy of everything dispatched so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Reset forgets recorded commands.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}
