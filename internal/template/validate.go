package template

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/domain"
)

// ValidateSchema checks a Schema for structural errors.
// Returns a slice of errors (empty if valid).
func ValidateSchema(schema *Schema) []error {
	var errs []error

	if schema.ID == "" {
		errs = append(errs, fmt.Errorf("template id is required"))
	}
	if schema.Title == "" {
		errs = append(errs, fmt.Errorf("template title is required"))
	}
	if len(schema.Pillars) == 0 {
		errs = append(errs, fmt.Errorf("at least one pillar is required"))
	}

	keys := map[string]bool{}
	for i, v := range schema.Variables {
		if v.Key == "" {
			errs = append(errs, fmt.Errorf("variable[%d]: key is required", i))
		} else if keys[v.Key] {
			errs = append(errs, fmt.Errorf("variable[%d]: duplicate key %q", i, v.Key))
		}
		keys[v.Key] = true
		if v.Type != "int" && v.Type != "string" {
			errs = append(errs, fmt.Errorf("variable[%d]: type must be int or string, got %q", i, v.Type))
		}
	}

	for i, p := range schema.Pillars {
		prefix := fmt.Sprintf("pillar[%d]", i)
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", prefix))
		}
		switch domain.ChildField(p.ChildField) {
		case domain.ChildFieldNone, domain.ChildFieldChildren, domain.ChildFieldTasks:
		default:
			errs = append(errs, fmt.Errorf("%s: child_field must be children or tasks, got %q", prefix, p.ChildField))
		}
		errs = append(errs, validateTasks(prefix, p.Tasks)...)
	}

	return errs
}

func validateTasks(prefix string, tasks []TaskConfig) []error {
	var errs []error
	for i, t := range tasks {
		at := fmt.Sprintf("%s.task[%d]", prefix, i)
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s: name is required", at))
		}
		if !domain.ValidTaskTypes[domain.TaskType(t.Type)] || t.Type == string(domain.TaskProject) {
			errs = append(errs, fmt.Errorf("%s: invalid type %q", at, t.Type))
		}
		if _, err := ParseRepeats(t.Repeat); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid repeat: %w", at, err))
		}
		errs = append(errs, validateTasks(at, t.Subtasks)...)
	}
	return errs
}
