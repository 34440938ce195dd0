package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/stagehand/internal/cli/formatter"
	"github.com/alexanderramin/stagehand/internal/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks and their workflow",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskInspectCmd(app),
		newTaskReleaseCmd(app),
		newTaskAcknowledgeCmd(app),
		newTaskCompleteCmd(app),
		newTaskHaltCmd(app),
		newTaskApproveCmd(app),
		newTaskRejectCmd(app),
		newTaskPlanCmd(app),
		newTaskNoteCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var name, description, plan string

	cmd := &cobra.Command{
		Use:   "add ACRONYM",
		Short: "Create a task under an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			task, err := app.Tasks.Create(context.Background(), actor, service.TaskDraft{
				AppAcronym:  args[0],
				Name:        name,
				Description: description,
				Plan:        plan,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&plan, "plan", "", "Plan to assign")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list ACRONYM",
		Short: "List an application's tasks by state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.Tasks.ListByApp(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatTaskList(tasks))
			return nil
		},
	}
}

func newTaskInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ID",
		Short: "Show a task with its note log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.Tasks.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatTaskInspect(task))
			return nil
		},
	}
}

// transitionCmd builds a one-argument workflow command.
func transitionCmd(app *App, use, short, done string, run func(ctx context.Context, actor, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			if err := run(context.Background(), actor, args[0]); err != nil {
				return err
			}
			fmt.Printf("%s task %s\n", done, args[0])
			return nil
		},
	}
}

func newTaskReleaseCmd(app *App) *cobra.Command {
	return transitionCmd(app, "release", "Release an open task to the team", "Released", app.Tasks.Release)
}

func newTaskAcknowledgeCmd(app *App) *cobra.Command {
	return transitionCmd(app, "acknowledge", "Take ownership of a todo task", "Acknowledged", app.Tasks.Acknowledge)
}

func newTaskCompleteCmd(app *App) *cobra.Command {
	return transitionCmd(app, "complete", "Mark a doing task as done for review", "Completed", app.Tasks.Complete)
}

func newTaskHaltCmd(app *App) *cobra.Command {
	return transitionCmd(app, "halt", "Return a doing task to the todo list", "Halted", app.Tasks.Halt)
}

func newTaskApproveCmd(app *App) *cobra.Command {
	return transitionCmd(app, "approve", "Approve a done task and close it", "Approved", app.Tasks.Approve)
}

func newTaskRejectCmd(app *App) *cobra.Command {
	var plan string

	cmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a done task back to doing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			if err := app.Tasks.Reject(context.Background(), actor, args[0], plan); err != nil {
				return err
			}
			fmt.Printf("Rejected task %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&plan, "plan", "", "Plan to assign on rejection (empty removes the plan)")

	return cmd
}

func newTaskPlanCmd(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "plan ID [PLAN]",
		Short: "Assign or remove an open task's plan",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			plan := ""
			if len(args) == 2 {
				plan = args[1]
			}
			if !clear && plan == "" {
				return fmt.Errorf("supply a plan name or --clear")
			}
			if err := app.Tasks.ChangePlan(context.Background(), actor, args[0], plan); err != nil {
				return err
			}
			if plan == "" {
				fmt.Printf("Removed plan from task %s\n", args[0])
			} else {
				fmt.Printf("Changed task %s plan to %s\n", args[0], plan)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the current plan")

	return cmd
}

func newTaskNoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "note ID TEXT",
		Short: "Add a note to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			if err := app.Tasks.AddNote(context.Background(), actor, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Added note to task %s\n", args[0])
			return nil
		},
	}
}
