// Package loader resolves the initial project of a session from whichever
// source the caller supplied.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/alexanderramin/tasktree/internal/template"
	"github.com/alexanderramin/tasktree/internal/tree"
)

var (
	// ErrNoProjectSource is returned when no source in the request resolves
	// to a project.
	ErrNoProjectSource = errors.New("no project data or template to load")

	// ErrInvalidProject wraps the validation errors of a decoded project.
	ErrInvalidProject = errors.New("invalid project data")
)

// Source lists the places a project may come from. Load tries them in
// field order and uses the first one that is set.
type Source struct {
	Data       []byte
	Path       string
	TemplateID string
	Vars       map[string]string
	ProjectID  string
}

// Fetcher loads a project from the project service.
type Fetcher interface {
	FetchProject(ctx context.Context, projectID string) (*domain.Project, error)
}

type Loader struct {
	templates template.Library
	fetcher   Fetcher
}

// New creates a Loader. fetcher may be nil, in which case project ids are
// not resolvable.
func New(templates template.Library, fetcher Fetcher) *Loader {
	return &Loader{templates: templates, fetcher: fetcher}
}

// Load resolves src to a validated project.
func (l *Loader) Load(ctx context.Context, src Source) (*domain.Project, error) {
	var (
		p   *domain.Project
		err error
	)
	switch {
	case len(src.Data) > 0:
		p, err = Decode(src.Data)
	case src.Path != "":
		var data []byte
		data, err = os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("reading project file: %w", err)
		}
		p, err = Decode(data)
	case src.TemplateID != "":
		p, err = l.fromTemplate(src.TemplateID, src.Vars)
	case src.ProjectID != "" && l.fetcher != nil:
		p, err = l.fetcher.FetchProject(ctx, src.ProjectID)
	default:
		return nil, ErrNoProjectSource
	}
	if err != nil {
		return nil, err
	}
	if errs := Validate(p); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, errors.Join(errs...))
	}
	return p, nil
}

func (l *Loader) fromTemplate(id string, vars map[string]string) (*domain.Project, error) {
	schema, err := l.templates.Resolve(id)
	if err != nil {
		return nil, err
	}
	if errs := template.ValidateSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("template %s: %w", id, errors.Join(errs...))
	}
	return template.Execute(schema, vars)
}

// Decode parses a project document. Either child field is accepted on
// every node.
func Decode(data []byte) (*domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	return &p, nil
}

// Validate checks the project header and the structural invariants of its
// tree.
func Validate(p *domain.Project) []error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, fmt.Errorf("project _id is required"))
	}
	if p.Title == "" {
		errs = append(errs, fmt.Errorf("project title is required"))
	}
	if p.Status != "" && !domain.ValidProjectStatuses[p.Status] {
		errs = append(errs, fmt.Errorf("project status: invalid value %q", p.Status))
	}
	if p.Progress < 0 || p.Progress > 100 {
		errs = append(errs, fmt.Errorf("project progress %d out of range", p.Progress))
	}
	return append(errs, tree.Validate(p.Tasks)...)
}
