package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/loader"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects in the local database",
	}

	cmd.AddCommand(
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectImportCmd(app),
		newProjectInitCmd(app),
	)

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a project with its plan tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Projects.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProject(formatter.ProjectView{
				Project:  p,
				Progress: p.Progress,
				ShowIDs:  showIDs,
			}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", true, "Show task ids")

	return cmd
}

func newProjectImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a project from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading project file: %w", err)
			}
			p, err := loader.Decode(data)
			if err != nil {
				return err
			}
			created, err := app.Projects.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported project %s (%s)\n", created.Title, created.ID)
			return nil
		},
	}
}

func newProjectInitCmd(app *App) *cobra.Command {
	var (
		name string
		vars []string
	)

	cmd := &cobra.Command{
		Use:   "init TEMPLATE",
		Short: "Create a project from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userVars, err := parseVars(vars)
			if err != nil {
				return err
			}
			p, err := app.Loader.Load(cmd.Context(), loader.Source{TemplateID: args[0], Vars: userVars})
			if err != nil {
				return err
			}
			if name != "" {
				p.Title = name
			}
			created, err := app.Projects.Create(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s) from template %s\n", created.Title, created.ID, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project title (defaults to the template title)")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Template variable as key=value (repeatable)")

	return cmd
}

// parseVars turns key=value pairs into a map.
func parseVars(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --var %q, want key=value", kv)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
