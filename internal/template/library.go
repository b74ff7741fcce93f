package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// ErrTemplateNotFound is returned when no template matches an id.
var ErrTemplateNotFound = errors.New("template not found")

//go:embed builtin/*.json
var builtinFS embed.FS

// Library resolves templates from a directory, falling back to the
// templates shipped with the binary. Dir may be empty.
type Library struct {
	Dir string
}

// Summary describes one available template.
type Summary struct {
	ID      string
	Title   string
	Pillars int
	Builtin bool
}

// Resolve finds the template whose id or file stem equals id. Templates in
// Dir shadow built-in ones.
func (l Library) Resolve(id string) (*Schema, error) {
	if l.Dir != "" {
		if s, err := resolveIn(os.DirFS(l.Dir), ".", id); err == nil {
			return s, nil
		} else if !errors.Is(err, ErrTemplateNotFound) {
			return nil, err
		}
	}
	return resolveIn(builtinFS, "builtin", id)
}

// List returns every resolvable template, sorted by id.
func (l Library) List() ([]Summary, error) {
	seen := map[string]bool{}
	var out []Summary
	add := func(fsys fs.FS, dir string, builtin bool) error {
		schemas, err := loadAll(fsys, dir)
		if err != nil {
			return err
		}
		for _, s := range schemas {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, Summary{ID: s.ID, Title: s.Title, Pillars: len(s.Pillars), Builtin: builtin})
		}
		return nil
	}
	if l.Dir != "" {
		if err := add(os.DirFS(l.Dir), ".", false); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := add(builtinFS, "builtin", true); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func resolveIn(fsys fs.FS, dir, id string) (*Schema, error) {
	data, err := fs.ReadFile(fsys, path.Join(dir, id+".json"))
	if err == nil {
		return ParseSchema(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	schemas, err := loadAll(fsys, dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, s := range schemas {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

func loadAll(fsys fs.FS, dir string) ([]*Schema, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var out []*Schema
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		s, err := ParseSchema(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		out = append(out, s)
	}
	return out, nil
}
