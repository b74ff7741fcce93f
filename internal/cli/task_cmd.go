package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App, flags *sessionFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Change tasks of a project",
	}

	cmd.AddCommand(
		newTaskUpdateCmd(app, flags),
		newTaskToggleCmd(app, flags),
		newTaskAddCmd(app, flags),
		newTaskDeleteCmd(app, flags),
	)

	return cmd
}

func newTaskUpdateCmd(app *App, flags *sessionFlags) *cobra.Command {
	var (
		name, description, status, taskType, provider string
		required                                      bool
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.TaskPatch
			f := cmd.Flags()
			if f.Changed("name") {
				if strings.TrimSpace(name) == "" {
					return errors.New("--name must not be empty")
				}
				patch.Name = &name
			}
			if f.Changed("description") {
				patch.Description = &description
			}
			if f.Changed("status") {
				s := domain.TaskStatus(status)
				if s == domain.TaskUnset || !domain.ValidTaskStatuses[s] {
					return fmt.Errorf("invalid --status %q (want to-do or completed)", status)
				}
				patch.Status = &s
			}
			if f.Changed("type") {
				tt := domain.TaskType(taskType)
				if !domain.ValidTaskTypes[tt] {
					return fmt.Errorf("invalid --type %q", taskType)
				}
				patch.Type = &tt
			}
			if f.Changed("provider") {
				patch.ServiceProvider = &provider
			}
			if f.Changed("required") {
				patch.IsRequired = &required
			}
			if patch.IsEmpty() {
				return errors.New("nothing to update, pass at least one field flag")
			}

			sess, err := app.openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if _, err := sess.requireTask(args[0]); err != nil {
				return err
			}
			if err := sess.store.UpdateTask(cmd.Context(), args[0], patch); err != nil {
				return err
			}
			return finish(cmd, sess)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&status, "status", "", "Status: to-do or completed")
	cmd.Flags().StringVar(&taskType, "type", "", "Task type: plain, file, observation, project, profile-update")
	cmd.Flags().StringVar(&provider, "provider", "", "Service provider")
	cmd.Flags().BoolVar(&required, "required", true, "Whether the task is required")

	return cmd
}

func newTaskToggleCmd(app *App, flags *sessionFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a task between completed and to-do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if _, err := sess.requireTask(args[0]); err != nil {
				return err
			}
			if err := sess.store.ToggleTaskStatus(cmd.Context(), args[0]); err != nil {
				return err
			}
			return finish(cmd, sess)
		},
	}
}

func newTaskAddCmd(app *App, flags *sessionFlags) *cobra.Command {
	var (
		name, description, taskType string
		optional                    bool
	)

	cmd := &cobra.Command{
		Use:   "add PARENT",
		Short: "Add a custom task under PARENT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tt := domain.TaskType(taskType)
			if !domain.ValidTaskTypes[tt] {
				return fmt.Errorf("invalid --type %q", taskType)
			}

			sess, err := app.openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			parent, err := sess.requireTask(args[0])
			if err != nil {
				return err
			}

			name = strings.TrimSpace(name)
			if name == "" {
				if !app.interactive() {
					return errors.New("--name is required")
				}
				if name, err = promptTaskName(parent.Name); err != nil {
					return err
				}
			}

			task := &domain.Task{
				Name:         name,
				Description:  description,
				Type:         tt,
				Status:       domain.TaskToDo,
				IsRequired:   !optional,
				IsCustomTask: true,
				IsDeletable:  true,
			}
			id, err := sess.store.AddTask(cmd.Context(), parent.ID, task)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) under %s\n", name, id, parent.Name)
			return finish(cmd, sess)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name (prompted on a terminal when omitted)")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&taskType, "type", string(domain.TaskPlain), "Task type")
	cmd.Flags().BoolVar(&optional, "optional", false, "Mark the task as not required")

	return cmd
}

func newTaskDeleteCmd(app *App, flags *sessionFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if _, err := sess.requireTask(args[0]); err != nil {
				return err
			}
			if err := sess.store.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			return finish(cmd, sess)
		},
	}
}

// finish drains and reports sync calls, then prints the resulting tree.
func finish(cmd *cobra.Command, sess *session) error {
	out := cmd.OutOrStdout()
	if err := sess.close(out); err != nil {
		return err
	}
	sess.render(out)
	return nil
}
