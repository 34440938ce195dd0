package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/stagehand/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Applications service.ApplicationService
	Plans        service.PlanService
	Tasks        service.TaskService
	Directory    service.DirectoryService

	// actor is the acting identity, bound to the global --as flag.
	actor string
}

// Actor returns the acting username: the --as flag when set, otherwise
// the invoking OS user.
func (a *App) Actor() (string, error) {
	if a.actor != "" {
		return a.actor, nil
	}
	if u := os.Getenv("USER"); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("no acting identity: pass --as <username>")
}

// NewRootCmd creates the top-level "stagehand" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "stagehand",
		Short: "Role-gated task workflow tracker",
	}

	root.PersistentFlags().StringVar(&app.actor, "as", "", "Acting username (defaults to $USER)")

	root.AddCommand(
		newAppCmd(app),
		newPlanCmd(app),
		newTaskCmd(app),
		newGroupCmd(app),
		newUserCmd(app),
	)

	return root
}
