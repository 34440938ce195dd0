package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/stagehand/internal/access"
	"github.com/alexanderramin/stagehand/internal/cli"
	"github.com/alexanderramin/stagehand/internal/config"
	"github.com/alexanderramin/stagehand/internal/db"
	"github.com/alexanderramin/stagehand/internal/notify"
	"github.com/alexanderramin/stagehand/internal/repository"
	"github.com/alexanderramin/stagehand/internal/service"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("STAGEHAND_CONFIG"))
	if err != nil {
		return err
	}

	// Plain output when not attached to a terminal.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	appRepo := repository.NewSQLiteApplicationRepo(database)
	planRepo := repository.NewSQLitePlanRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	groupRepo := repository.NewSQLiteGroupRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	checker := access.NewChecker(groupRepo, userRepo)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	notifier := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		From: cfg.SMTPFrom,
	})
	dispatcher := notify.NewDispatcher(notifier, logger)
	observer := service.NewLogUseCaseObserver(os.Stderr)

	app := &cli.App{
		Applications: service.NewApplicationService(appRepo, uow, cfg.AppCreatorGroup, observer),
		Plans:        service.NewPlanService(planRepo, uow, cfg.PlanCreatorGroup, observer),
		Tasks:        service.NewTaskService(taskRepo, appRepo, checker, uow, dispatcher, observer),
		Directory:    service.NewDirectoryService(groupRepo, userRepo, checker, uow, cfg.AdminGroup, cfg.SuperAdminUser, observer),
	}

	return cli.NewRootCmd(app).Execute()
}
