package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// Execute builds a draft project from a template. Every node gets a fresh
// server-format id, so the result can be stored by the project service as is.
func Execute(schema *Schema, userVars map[string]string) (*domain.Project, error) {
	vars, err := resolveVariables(schema.Variables, userVars)
	if err != nil {
		return nil, fmt.Errorf("resolving variables: %w", err)
	}

	title, err := Expand(schema.Title, vars)
	if err != nil {
		return nil, fmt.Errorf("template title: %w", err)
	}
	desc, err := Expand(schema.Description, vars)
	if err != nil {
		return nil, fmt.Errorf("template description: %w", err)
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:          domain.NewServerID(),
		Title:       title,
		Description: desc,
		Status:      domain.ProjectDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for i, pc := range schema.Pillars {
		pillar, err := buildPillar(pc, vars)
		if err != nil {
			return nil, fmt.Errorf("pillar[%d] %q: %w", i, pc.Name, err)
		}
		project.Tasks = append(project.Tasks, pillar)
	}
	return project, nil
}

func buildPillar(pc PillarConfig, vars Vars) (*domain.Task, error) {
	name, err := Expand(pc.Name, vars)
	if err != nil {
		return nil, err
	}
	desc, err := Expand(pc.Description, vars)
	if err != nil {
		return nil, err
	}
	field := domain.ChildField(pc.ChildField)
	if field == domain.ChildFieldNone {
		field = domain.ChildFieldChildren
	}
	kids, err := buildTasks(pc.Tasks, vars)
	if err != nil {
		return nil, err
	}
	return &domain.Task{
		ID:          domain.NewServerID(),
		Name:        name,
		Description: desc,
		Type:        domain.TaskProject,
		Status:      domain.TaskToDo,
		IsRequired:  true,
		ChildField:  field,
		Children:    kids,
	}, nil
}

func buildTasks(configs []TaskConfig, vars Vars) ([]*domain.Task, error) {
	kids := []*domain.Task{}
	for _, tc := range configs {
		repeats, err := ParseRepeats(tc.Repeat)
		if err != nil {
			return nil, fmt.Errorf("parsing repeats for task '%s': %w", tc.Name, err)
		}
		err = iterateRepeats(repeats, vars, func(loopVars Vars) error {
			t, err := buildTask(tc, loopVars)
			if err != nil {
				return fmt.Errorf("task '%s': %w", tc.Name, err)
			}
			kids = append(kids, t)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return kids, nil
}

func buildTask(tc TaskConfig, vars Vars) (*domain.Task, error) {
	name, err := Expand(tc.Name, vars)
	if err != nil {
		return nil, err
	}
	desc, err := Expand(tc.Description, vars)
	if err != nil {
		return nil, err
	}
	typ := domain.TaskType(tc.Type)
	if typ == "" {
		typ = domain.TaskPlain
	}
	t := &domain.Task{
		ID:              domain.NewServerID(),
		Name:            name,
		Description:     desc,
		Type:            typ,
		Status:          domain.TaskToDo,
		IsRequired:      !tc.Optional,
		ServiceProvider: tc.ServiceProvider,
	}
	if len(tc.Subtasks) > 0 {
		kids, err := buildTasks(tc.Subtasks, vars)
		if err != nil {
			return nil, err
		}
		t.ChildField = domain.ChildFieldChildren
		t.Children = kids
	}
	return t, nil
}

// resolveVariables builds the resolved variable set from defaults + user overrides.
func resolveVariables(defs []VariableConfig, userVars map[string]string) (Vars, error) {
	vars := Vars{Ints: map[string]int{}, Strings: map[string]string{}}

	for _, v := range defs {
		if v.Type == "string" {
			if v.Default != nil {
				var def string
				if err := json.Unmarshal(v.Default, &def); err == nil {
					vars.Strings[v.Key] = def
				}
			}
			if val, ok := userVars[v.Key]; ok {
				vars.Strings[v.Key] = val
			}
			if _, ok := vars.Strings[v.Key]; v.Required && !ok {
				return Vars{}, fmt.Errorf("required variable '%s' not provided", v.Key)
			}
			continue
		}

		if v.Default != nil {
			var def int
			if err := json.Unmarshal(v.Default, &def); err == nil {
				vars.Ints[v.Key] = def
			}
		}
		if val, ok := userVars[v.Key]; ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return Vars{}, fmt.Errorf("variable '%s': expected integer, got '%s'", v.Key, val)
			}
			if v.Min != nil && n < *v.Min {
				return Vars{}, fmt.Errorf("variable '%s': value %d below minimum %d", v.Key, n, *v.Min)
			}
			if v.Max != nil && n > *v.Max {
				return Vars{}, fmt.Errorf("variable '%s': value %d above maximum %d", v.Key, n, *v.Max)
			}
			vars.Ints[v.Key] = n
		}
		if _, ok := vars.Ints[v.Key]; v.Required && !ok {
			return Vars{}, fmt.Errorf("required variable '%s' not provided", v.Key)
		}
	}

	return vars, nil
}

// iterateRepeats runs fn for each combination of repeat variables, or once
// with the base vars when there are none.
func iterateRepeats(repeats []RepeatConfig, base Vars, fn func(Vars) error) error {
	if len(repeats) == 0 {
		return fn(base)
	}
	return iterateRepeatLevel(repeats, 0, base, fn)
}

func iterateRepeatLevel(repeats []RepeatConfig, level int, vars Vars, fn func(Vars) error) error {
	if level >= len(repeats) {
		return fn(vars)
	}

	r := repeats[level]
	var to int
	switch {
	case r.To != nil:
		to = *r.To
	case r.ToVar != "":
		v, ok := vars.Ints[r.ToVar]
		if !ok {
			return fmt.Errorf("variable '%s' not defined for repeat bound", r.ToVar)
		}
		to = v
	default:
		return fmt.Errorf("repeat for '%s' has no 'to' or 'to_var'", r.Var)
	}

	for i := r.From; i <= to; i++ {
		if err := iterateRepeatLevel(repeats, level+1, vars.with(r.Var, i), fn); err != nil {
			return err
		}
	}
	return nil
}
