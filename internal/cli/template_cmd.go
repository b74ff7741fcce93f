package cli

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect project templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and local templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := app.Templates.List()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTemplateList(summaries))
			return nil
		},
	})

	return cmd
}
