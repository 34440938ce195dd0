package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/stagehand/internal/cli/formatter"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage release plans",
	}

	cmd.AddCommand(
		newPlanAddCmd(app),
		newPlanListCmd(app),
	)

	return cmd
}

func newPlanAddCmd(app *App) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "add ACRONYM NAME",
		Short: "Create a plan under an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			startDate, err := parseOptionalDate(start, "start")
			if err != nil {
				return err
			}
			endDate, err := parseOptionalDate(end, "end")
			if err != nil {
				return err
			}

			p := &domain.Plan{
				AppAcronym: args[0],
				Name:       args[1],
				StartDate:  startDate,
				EndDate:    endDate,
			}
			if err := app.Plans.Create(context.Background(), actor, p); err != nil {
				return err
			}

			fmt.Printf("Created plan %s under %s\n", p.Name, p.AppAcronym)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list ACRONYM",
		Short: "List an application's plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.List(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Println("No plans found.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatPlanList(plans))
			return nil
		},
	}
}
