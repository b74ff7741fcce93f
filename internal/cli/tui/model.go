// Package tui is the interactive checklist over a store session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/store"
	"github.com/alexanderramin/tasktree/internal/tree"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the checklist bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Accept key.Binding
	Reject key.Binding
	Delete key.Binding
	Quit   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Accept: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Reject: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reject")),
		Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings usable in mode.
func (k KeyMap) ShortHelp(mode gate.Mode) []key.Binding {
	out := []key.Binding{k.Up, k.Down}
	if mode.Allows(gate.CapUpdate) {
		out = append(out, k.Toggle)
	}
	if mode.Allows(gate.CapPlanDecision) {
		out = append(out, k.Accept, k.Reject)
	}
	if mode.Allows(gate.CapStructure) {
		out = append(out, k.Delete)
	}
	return append(out, k.Quit)
}

// Model renders the store's tree as a flat, navigable checklist. Every
// mutation goes through the store; the footer follows the store's
// completion observer.
type Model struct {
	ctx   context.Context
	store *store.Store
	keys  KeyMap

	rows   []formatter.TreeItem
	ids    []string
	cursor int

	progress    int
	allDone     bool
	message     string
	width       int
	unsubscribe func()
}

func New(ctx context.Context, st *store.Store) *Model {
	m := &Model{ctx: ctx, store: st, keys: DefaultKeyMap()}
	m.unsubscribe = st.ObserveCompletion(store.CompletionFuncs{
		Completion: func(all bool) { m.allDone = all },
		Progress:   func(pct int) { m.progress = pct },
	})
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.QuitMsg:
		m.close()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.message = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.close()
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = max(0, min(len(m.rows)-1, m.cursor+1))
	case key.Matches(msg, m.keys.Toggle):
		m.act(func(id string) error { return m.store.ToggleTaskStatus(m.ctx, id) })
	case key.Matches(msg, m.keys.Accept):
		m.act(func(id string) error { return m.store.DecidePlanTask(m.ctx, id, true) })
	case key.Matches(msg, m.keys.Reject):
		m.act(func(id string) error { return m.store.DecidePlanTask(m.ctx, id, false) })
	case key.Matches(msg, m.keys.Delete):
		m.act(func(id string) error { return m.store.DeleteTask(m.ctx, id) })
	}
	return nil
}

// act runs fn on the selected row and rebuilds the rows from the new tree.
func (m *Model) act(fn func(id string) error) {
	id, ok := m.Selected()
	if !ok {
		return
	}
	if err := fn(id); err != nil {
		if errors.Is(err, gate.ErrNotPermitted) {
			m.message = fmt.Sprintf("not allowed in %s mode", m.store.Mode())
		} else {
			m.message = err.Error()
		}
		return
	}
	m.refresh()
}

func (m *Model) refresh() {
	p := m.store.ProjectData()
	m.rows = formatter.ProjectTreeItems(p.Tasks, m.store.PlanDecision, false)
	m.ids = m.ids[:0]
	tree.Walk(p.Tasks, func(n *domain.Task, _ int) bool {
		m.ids = append(m.ids, n.ID)
		return true
	})
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
}

// Selected returns the id of the row under the cursor.
func (m *Model) Selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.ids) {
		return "", false
	}
	return m.ids[m.cursor], true
}

func (m *Model) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) View() string {
	var b strings.Builder
	p := m.store.ProjectData()

	b.WriteString(formatter.Bold(p.Title) + "  " + formatter.ModeBadge(m.store.Mode()) + "\n\n")

	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("No tasks") + "\n")
	} else {
		lines := strings.Split(strings.TrimRight(formatter.RenderTree(m.rows), "\n"), "\n")
		for i, line := range lines {
			marker := "  "
			if i == m.cursor {
				marker = formatter.StyleHeader.Render("› ")
			}
			b.WriteString(marker + line + "\n")
		}
	}

	footer := formatter.RenderProgress(m.progress, 30)
	if m.allDone {
		footer += "  " + formatter.StyleGreen.Render("all tasks completed")
	}
	b.WriteString("\n" + footer + "\n")
	if m.message != "" {
		b.WriteString(formatter.StyleRed.Render(m.message) + "\n")
	}
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *Model) helpLine() string {
	bindings := m.keys.ShortHelp(m.store.Mode())
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, formatter.Bold(h.Key)+" "+formatter.Dim(h.Desc))
	}
	return strings.Join(parts, formatter.Dim(" · "))
}
