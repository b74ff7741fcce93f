package cli

import (
	"errors"
	"strings"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// tasktreeHuhTheme returns a huh theme matching the formatter palette.
func tasktreeHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

// taskNameForm returns a themed single-field form for a new task's name.
func taskNameForm(parent string, value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task name").
				Description("New task under "+parent).
				Placeholder("Book appointment").
				Value(value).
				Validate(validateRequired),
		),
	).WithTheme(tasktreeHuhTheme()).WithShowHelp(false)
}

// promptTaskName asks for a task name. Tests replace it.
var promptTaskName = func(parent string) (string, error) {
	var name string
	if err := taskNameForm(parent, &name).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}
