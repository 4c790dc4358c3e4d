package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"

	"github.com/nconklindev/dexcel/internal/actions"
	"github.com/nconklindev/dexcel/internal/api"
	"github.com/nconklindev/dexcel/internal/config"
	"github.com/nconklindev/dexcel/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		serverURL   string
		backend     string
		logFile     string
		logLevel    string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("dexcel", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (default: $"+config.EnvConfigPath+")")
	flagSet.StringVar(&serverURL, "server", "", "backend base URL")
	flagSet.StringVar(&backend, "backend", "", "backend API: primary or legacy")
	flagSet.StringVar(&logFile, "log-file", "", "write JSON log records to this file")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flagSet.BoolVarP(&showVersion, "version", "v", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("dexcel %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("server") {
		cfg.ServerURL = serverURL
	}
	if flagSet.Changed("backend") {
		cfg.Backend = config.Backend(backend)
	}
	if flagSet.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	// The legacy server keeps the uploaded workbook in a cookie session.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	httpClient := &http.Client{Jar: jar}

	var be api.Backend
	switch cfg.Backend {
	case config.BackendLegacy:
		be = api.NewLegacyClient(cfg.ServerURL, httpClient, logger)
	default:
		be = api.NewClient(cfg.ServerURL, httpClient, logger)
	}
	logger.Info("starting", "version", version, "server", cfg.ServerURL, "backend", cfg.Backend)

	model := ui.InitialModel(ui.Options{
		Backend:   be,
		Clipboard: actions.SystemClipboard{},
		Templates: cfg.FallbackTemplates(),
		ExportDir: cfg.ExportDir,
		Logger:    logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

// openLogger opens the log file named in cfg. The terminal belongs to
// the TUI, so nothing is logged to stderr.
func openLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
