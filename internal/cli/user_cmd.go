package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/stagehand/internal/cli/formatter"
	"github.com/alexanderramin/stagehand/internal/domain"
	"github.com/spf13/cobra"
)

func newGroupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Administer groups",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Create a group",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				actor, err := app.Actor()
				if err != nil {
					return err
				}
				if err := app.Directory.CreateGroup(context.Background(), actor, args[0]); err != nil {
					return err
				}
				fmt.Printf("Created group %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List groups",
			RunE: func(cmd *cobra.Command, args []string) error {
				actor, err := app.Actor()
				if err != nil {
					return err
				}
				groups, err := app.Directory.ListGroups(context.Background(), actor)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					fmt.Println("No groups found.")
					return nil
				}
				fmt.Println(strings.Join(groups, "\n"))
				return nil
			},
		},
		&cobra.Command{
			Use:   "members NAME",
			Short: "List the members of a group",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				actor, err := app.Actor()
				if err != nil {
					return err
				}
				members, err := app.Directory.MembersOf(context.Background(), actor, args[0])
				if err != nil {
					return err
				}
				if len(members) == 0 {
					fmt.Println("No members.")
					return nil
				}
				fmt.Println(strings.Join(members, "\n"))
				return nil
			},
		},
	)

	return cmd
}

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administer user accounts",
	}

	cmd.AddCommand(
		newUserAddCmd(app),
		newUserListCmd(app),
		newUserInspectCmd(app),
		newUserEnableCmd(app, true),
		newUserEnableCmd(app, false),
		newUserEmailCmd(app),
		newUserGroupsCmd(app),
	)

	return cmd
}

func newUserAddCmd(app *App) *cobra.Command {
	var email string
	var groups []string

	cmd := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			u := &domain.User{Username: args[0], Email: email}
			if err := app.Directory.CreateUser(context.Background(), actor, u, groups); err != nil {
				return err
			}
			fmt.Printf("Created user %s\n", u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address for done-stage notifications")
	cmd.Flags().StringSliceVar(&groups, "group", nil, "Initial group memberships (repeatable)")

	return cmd
}

func newUserListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			users, err := app.Directory.ListUsers(context.Background(), actor)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("No users found.")
				return nil
			}
			fmt.Printf("%s\n", formatter.FormatUserList(users))
			return nil
		},
	}
}

func newUserInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect USERNAME",
		Short: "Show a user and their groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			u, err := app.Directory.GetUser(ctx, actor, args[0])
			if err != nil {
				return err
			}
			groups, err := app.Directory.GroupsOf(ctx, actor, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s  %s\n", formatter.Bold(u.Username), formatter.EnabledPill(u.Enabled))
			if u.Email != "" {
				fmt.Printf("%s %s\n", formatter.Dim("Email:"), u.Email)
			}
			if len(groups) > 0 {
				fmt.Printf("%s %s\n", formatter.Dim("Groups:"), strings.Join(groups, ", "))
			}
			return nil
		},
	}
}

func newUserEnableCmd(app *App, enable bool) *cobra.Command {
	use, short, done := "disable", "Disable a user account", "Disabled"
	if enable {
		use, short, done = "enable", "Enable a user account", "Enabled"
	}
	return &cobra.Command{
		Use:   use + " USERNAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			if err := app.Directory.SetUserEnabled(context.Background(), actor, args[0], enable); err != nil {
				return err
			}
			fmt.Printf("%s user %s\n", done, args[0])
			return nil
		},
	}
}

func newUserEmailCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "email USERNAME [EMAIL]",
		Short: "Update a user's notification email (omit EMAIL to clear it)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			email := ""
			if len(args) == 2 {
				email = args[1]
			}
			if err := app.Directory.SetUserEmail(context.Background(), actor, args[0], email); err != nil {
				return err
			}
			fmt.Printf("Updated email for %s\n", args[0])
			return nil
		},
	}
}

func newUserGroupsCmd(app *App) *cobra.Command {
	var groups []string

	cmd := &cobra.Command{
		Use:   "groups USERNAME",
		Short: "Replace a user's group memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := app.Actor()
			if err != nil {
				return err
			}
			if err := app.Directory.SetUserGroups(context.Background(), actor, args[0], groups); err != nil {
				return err
			}
			fmt.Printf("Updated groups for %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&groups, "group", nil, "Group memberships (repeatable; omit to clear all)")

	return cmd
}
