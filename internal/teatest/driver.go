// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver stands in for tea.Program: it calls Update directly and runs
// every returned Cmd on the spot, feeding the resulting messages back in
// until nothing is left.
package teatest

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained Cmds one message may produce.
const MaxDrainDepth = 100

// cmdTimeout skips Cmds that block, such as tea.Tick.
const cmdTimeout = 10 * time.Millisecond

// Driver is a synchronous test harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.Quit has been returned. Later sends are
	// ignored, as they would be by a stopped program.
	Quitting bool
}

type Option func(*Driver)

// WithSize sends a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Send(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// New creates a Driver and runs the model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	d.drain(d.Model.Init(), 0)
	return d
}

// Send dispatches msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drain(cmd, 0)
}

// PressKey sends a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// PressKeys sends each rune of s as its own key press.
func (d *Driver) PressKeys(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

func (d *Driver) PressSpace() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
}

func (d *Driver) PressEnter() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyEnter})
}

func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
}

func (d *Driver) PressUp() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyUp})
}

// PressDown sends the Down arrow n times.
func (d *Driver) PressDown(n int) {
	d.T.Helper()
	for range n {
		d.Send(tea.KeyMsg{Type: tea.KeyDown})
	}
}

// View returns the model's current rendering.
func (d *Driver) View() string {
	return d.Model.View()
}

// ViewLine returns the first rendered line containing substr, or "".
func (d *Driver) ViewLine(substr string) string {
	for _, line := range strings.Split(d.View(), "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := run(cmd)
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
		updated, _ := d.Model.Update(msg)
		d.Model = updated
	default:
		updated, next := d.Model.Update(msg)
		d.Model = updated
		d.drain(next, depth+1)
	}
}

// run executes cmd, giving up after cmdTimeout.
func run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}
