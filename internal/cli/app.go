package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/config"
	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/gate"
	"github.com/alexanderramin/tasktree/internal/loader"
	"github.com/alexanderramin/tasktree/internal/projectsvc"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/store"
	"github.com/alexanderramin/tasktree/internal/template"
	"github.com/alexanderramin/tasktree/internal/tree"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds references to everything the CLI commands use.
type App struct {
	Config    config.Config
	Projects  *projectsvc.Service
	Templates template.Library
	Loader    *loader.Loader
	Remote    remote.Client
	Observer  remote.Observer
	Registry  *prometheus.Registry
	Logger    *slog.Logger

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// sessionFlags are the persistent flags that pick a project and a mode.
type sessionFlags struct {
	mode      string
	projectID string
	file      string
}

func (f *sessionFlags) source() (loader.Source, error) {
	switch {
	case f.file != "":
		return loader.Source{Path: f.file}, nil
	case f.projectID != "":
		return loader.Source{ProjectID: f.projectID}, nil
	}
	return loader.Source{}, fmt.Errorf("%w: pass --project ID or --file PATH", loader.ErrNoProjectSource)
}

// session is one store over a loaded project plus the executor that
// mirrors its mutations.
type session struct {
	store   *store.Store
	exec    *remote.Executor
	tally   *syncTally
	file    string
	initial *domain.Project
}

// openSession loads the project named by flags and starts a store in the
// requested mode.
func (a *App) openSession(ctx context.Context, flags *sessionFlags, opts ...store.Option) (*session, error) {
	mode, err := gate.ParseMode(flags.mode)
	if err != nil {
		return nil, err
	}
	src, err := flags.source()
	if err != nil {
		return nil, err
	}
	p, err := a.Loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	tally := &syncTally{}
	var observer remote.Observer = tally
	if a.Observer != nil {
		observer = remote.MultiObserver{a.Observer, tally}
	}
	exec := remote.NewExecutor(a.Remote, observer, a.logger())

	base := []store.Option{
		store.WithDispatcher(exec),
		store.WithLogger(a.logger()),
		store.WithAdvisoryGate(a.Config.AdvisoryGate),
		store.WithSyncTasksBranch(a.Config.SyncTasksBranch),
		store.WithConfig(a.Config.Values()),
	}
	st, err := store.New(p, mode, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &session{store: st, exec: exec, tally: tally, file: flags.file, initial: st.ProjectData()}, nil
}

// requireTask fails when id is not in the current tree. Store mutations
// treat unknown ids as no-ops; the CLI reports them instead.
func (s *session) requireTask(id string) (*domain.Task, error) {
	p := s.store.ProjectData()
	loc, ok := tree.Find(p.Tasks, id)
	if !ok {
		return nil, fmt.Errorf("task %q not found in project %s", id, p.ID)
	}
	return loc.Node, nil
}

func (s *session) changed() bool {
	return s.store.ProjectData() != s.initial
}

// close waits for in-flight sync calls, writes a file-backed project back
// to disk and prints the sync summary.
func (s *session) close(w io.Writer) error {
	s.exec.Wait()
	if s.file != "" && s.changed() {
		if err := writeProjectFile(s.file, s.store.ProjectData()); err != nil {
			return err
		}
	}
	s.tally.report(w, s.changed(), s.store.Mode())
	return nil
}

// render prints the current tree with decision badges.
func (s *session) render(w io.Writer) {
	view := formatter.ProjectView{
		Project:  s.store.ProjectData(),
		Mode:     s.store.Mode(),
		Progress: s.store.Progress(),
		Decision: s.store.PlanDecision,
		ShowIDs:  true,
	}
	fmt.Fprintln(w, formatter.FormatProject(view))
}

func writeProjectFile(path string, p *domain.Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
