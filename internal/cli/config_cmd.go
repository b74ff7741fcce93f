package cli

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := app.Config.Values()
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k, fmt.Sprint(values[k])})
			}
			out := formatter.RenderTable([]string{"KEY", "VALUE"}, rows)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox("Config", out))
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("file: "+config.Path()))
			return nil
		},
	}
}
