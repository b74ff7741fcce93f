package cli

import (
	"github.com/alexanderramin/tasktree/internal/cli/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd(app *App, flags *sessionFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [PROJECT]",
		Short: "Open the interactive checklist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.projectID = args[0]
			}
			sess, err := app.openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}

			model := tui.New(cmd.Context(), sess.store)
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return err
			}
			return sess.close(cmd.OutOrStdout())
		},
	}
}
