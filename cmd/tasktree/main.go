package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/tasktree/internal/cli"
	"github.com/alexanderramin/tasktree/internal/config"
	"github.com/alexanderramin/tasktree/internal/db"
	"github.com/alexanderramin/tasktree/internal/loader"
	"github.com/alexanderramin/tasktree/internal/projectsvc"
	"github.com/alexanderramin/tasktree/internal/remote"
	"github.com/alexanderramin/tasktree/internal/template"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Metrics: sync outcomes from the CLI, request metrics from serve.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var observer remote.Observer = remote.NewMetricsObserver(reg)
	if cfg.LogSyncCalls {
		observer = remote.MultiObserver{observer, remote.NewLogObserver(logger)}
	}

	client := remote.NewHTTPClient(remote.Config{Endpoint: cfg.Endpoint, Timeout: cfg.Timeout()})
	templates := template.Library{Dir: cfg.TemplateDir}

	app := &cli.App{
		Config:    cfg,
		Projects:  projectsvc.NewService(database, db.NewSQLiteUnitOfWork(database), logger),
		Templates: templates,
		Loader:    loader.New(templates, client),
		Remote:    client,
		Observer:  observer,
		Registry:  reg,
		Logger:    logger,
	}

	// Detect interactive terminal for prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
