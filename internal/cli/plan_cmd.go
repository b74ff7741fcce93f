package cli

import (
	"fmt"

	"github.com/alexanderramin/tasktree/internal/approval"
	"github.com/alexanderramin/tasktree/internal/cli/formatter"
	"github.com/alexanderramin/tasktree/internal/tree"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App, flags *sessionFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Review which tasks go into the plan",
		Long: "Accept or reject tasks for the plan. Decisions are allowed in edit and\n" +
			"preview mode. In preview mode a decision on a custom task whose parent\n" +
			"was created locally is not synced; use --file to keep it.",
	}

	cmd.AddCommand(
		newPlanDecideCmd(app, flags, true),
		newPlanDecideCmd(app, flags, false),
		newPlanListCmd(app, flags),
	)

	return cmd
}

func newPlanDecideCmd(app *App, flags *sessionFlags, accept bool) *cobra.Command {
	use, short, verb := "accept ID", "Add a task to the plan", "Accepted"
	if !accept {
		use, short, verb = "reject ID", "Keep a task out of the plan", "Rejected"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			task, err := sess.requireTask(args[0])
			if err != nil {
				return err
			}
			if err := sess.store.DecidePlanTask(cmd.Context(), task.ID, accept); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, task.Name)
			return finish(cmd, sess)
		},
	}
}

func newPlanListCmd(app *App, flags *sessionFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tasks currently added to the plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := sess.store.ProjectData()

			ids := sess.store.AddedToPlanTaskIDs()
			if len(ids) == 0 {
				fmt.Fprintln(out, formatter.Dim("No tasks added to the plan yet."))
				return nil
			}
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				name := formatter.Dim("(not in tree)")
				if loc, ok := tree.Find(p.Tasks, id); ok {
					name = loc.Node.Name
				}
				rows = append(rows, []string{id, name, formatter.DecisionBadge(approval.Accepted)})
			}
			table := formatter.RenderTable([]string{"ID", "TASK", "DECISION"}, rows)
			fmt.Fprintln(out, formatter.RenderBox("Plan", table))
			return nil
		},
	}
}
