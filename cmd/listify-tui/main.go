package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"listify/internal/config"
	"listify/internal/importer"
	"listify/internal/logging"
	"listify/internal/repository"
	"listify/internal/service"
	"listify/internal/tui"
)

func main() {
	dbPath := flag.String("db", "", "SQLite database path (defaults to DATABASE_URL)")
	importPath := flag.String("import", "", "YAML file with categories and tasks to import before starting")
	logPath := flag.String("log", filepath.Join(os.TempDir(), "listify-tui.log"), "file the UI writes its logs to")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabaseURL = *dbPath
	}

	// The terminal belongs to the UI, so logs go to a file.
	log, err := logging.New(cfg.Env, cfg.LogLevel, *logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	tasks := service.NewTaskService(taskRepo, log)
	categories := service.NewCategoryService(repository.NewCategoryRepository(db), service.NewCategoryHistory(), log)

	if *importPath != "" {
		if err := importFile(ctx, *importPath, tasks, categories); err != nil {
			log.Error("import", zap.String("file", *importPath), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", *importPath, err)
			os.Exit(1)
		}
	}

	m := tui.NewModel(ctx, service.NewBoard(taskRepo, log), tasks, categories, cfg.RefreshInterval)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func importFile(ctx context.Context, path string, tasks *service.TaskService, categories *service.CategoryService) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := importer.Import(ctx, f, tasks, categories)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d categories and %d tasks from %s\n", res.Categories, res.Tasks, path)
	return nil
}
