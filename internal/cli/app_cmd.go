package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/stagehand/internal/cli/formatter"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/spf13/cobra"
)

func parseOptionalDate(value, flag string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s date %q: %w", flag, value, err)
	}
	return &t, nil
}

func permitFlags(cmd *cobra.Command, permits *domain.PermitGroups) {
	cmd.Flags().StringVar(&permits.Create, "permit-create", "", "Group allowed to create tasks")
	cmd.Flags().StringVar(&permits.Open, "permit-open", "", "Group allowed to act on open tasks")
	cmd.Flags().StringVar(&permits.Todo, "permit-todo", "", "Group allowed to act on todo tasks")
	cmd.Flags().StringVar(&permits.Doing, "permit-doing", "", "Group allowed to act on doing tasks")
	cmd.Flags().StringVar(&permits.Done, "permit-done", "", "Group allowed to act on done tasks")
}

func newAppCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Manage applications",
	}

	cmd.AddCommand(
		newAppAddCmd(app),
		newAppListCmd(app),
		newAppInspectCmd(app),
		newAppUpdateCmd(app),
		newAppRolesCmd(app),
	)

	return cmd
}

func newAppAddCmd(app *App) *cobra.Command {
	var description, start, end string
	var rnumber int
	var permits domain.PermitGroups

	cmd := &cobra.Command{
		Use:   "add ACRONYM",
		Short: "Create a new application",
		Args:  cobra.ExactArgs(1),
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

			a := &domain.Application{
				Acronym:     args[0],
				Description: description,
				RNumber:     rnumber,
				StartDate:   startDate,
				EndDate:     endDate,
				Permits:     permits,
			}
			if err := app.Applications.Create(context.Background(), actor, a); err != nil {
				return err
			}

			fmt.Printf("Created application %s\n", a.Acronym)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Application description")
	cmd.Flags().IntVar(&rnumber, "rnumber", 0, "Initial running number")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	permitFlags(cmd, &permits)

	return cmd
}

func newAppListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			apps, err := app.Applications.List(context.Background())
			if err != nil {
				return err
			}
			if len(apps) == 0 {
				fmt.Println("No applications found.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatApplicationList(apps))
			return nil
		},
	}
}

func newAppInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect ACRONYM",
		Short: "Show application details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Applications.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", formatter.FormatApplicationInspect(a))
			return nil
		},
	}
}

func newAppUpdateCmd(app *App) *cobra.Command {
	var start, end string
	var permits domain.PermitGroups

	cmd := &cobra.Command{
		Use:   "update ACRONYM",
		Short: "Update an application's dates and permit groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			a, err := app.Applications.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("start") {
				if a.StartDate, err = parseOptionalDate(start, "start"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("end") {
				if a.EndDate, err = parseOptionalDate(end, "end"); err != nil {
					return err
				}
			}
			for flag, dst := range map[string]*string{
				"permit-create": &a.Permits.Create,
				"permit-open":   &a.Permits.Open,
				"permit-todo":   &a.Permits.Todo,
				"permit-doing":  &a.Permits.Doing,
				"permit-done":   &a.Permits.Done,
			} {
				if cmd.Flags().Changed(flag) {
					*dst, _ = cmd.Flags().GetString(flag)
				}
			}

			if err := app.Applications.Update(ctx, actor, a); err != nil {
				return err
			}
			fmt.Printf("Updated application %s\n", a.Acronym)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	permitFlags(cmd, &permits)

	return cmd
}

func newAppRolesCmd(app *App) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "roles ACRONYM",
		Short: "Show which workflow stages a user may act in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who := username
			if who == "" {
				actor, err := app.Actor()
				if err != nil {
					return err
				}
				who = actor
			}
			roles, err := app.Tasks.Roles(context.Background(), args[0], who)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s", formatter.Header("Roles for "+who), formatter.FormatRoles(roles))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Username to inspect (defaults to the acting user)")

	return cmd
}
