package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd creates the top-level "tasktree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	flags := &sessionFlags{}

	root := &cobra.Command{
		Use:           "tasktree",
		Short:         "Intervention plan task tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags.bind(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(app),
		newProjectCmd(app),
		newTemplateCmd(app),
		newTaskCmd(app, flags),
		newPlanCmd(app, flags),
		newTUICmd(app, flags),
		newConfigCmd(app),
	)

	return root
}

func (f *sessionFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.mode, "mode", "edit", "Session mode: edit, preview or read_only")
	fs.StringVar(&f.projectID, "project", "", "Project id on the project service")
	fs.StringVar(&f.file, "file", "", "Project JSON file (takes precedence over --project)")
}
