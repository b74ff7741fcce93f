package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/remote"
)

// syncTally counts sync outcomes for the end-of-command summary. Events
// arrive on executor goroutines.
type syncTally struct {
	mu     sync.Mutex
	ok     int
	failed []remote.SyncEvent
}

func (t *syncTally) OnSyncComplete(e remote.SyncEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e.Success {
		t.ok++
		return
	}
	t.failed = append(t.failed, e)
}

func (t *syncTally) counts() (ok, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ok, len(t.failed)
}

func (t *syncTally) report(w io.Writer, changed bool, mode gate.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.ok + len(t.failed)
	switch {
	case total == 0 && changed:
		fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("Changes kept locally; nothing to sync in %s mode.", mode)))
	case total == 0:
		return
	case len(t.failed) == 0:
		fmt.Fprintln(w, formatter.StyleGreen.Render(fmt.Sprintf("Synced %d change(s).", t.ok)))
	default:
		fmt.Fprintln(w, formatter.StyleYellow.Render(
			fmt.Sprintf("%d of %d sync call(s) failed; local state is kept.", len(t.failed), total)))
		for _, e := range t.failed {
			fmt.Fprintf(w, "  %s %s: %s\n", e.Op, e.TaskID, e.ErrorCode)
		}
	}
}
