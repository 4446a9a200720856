package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/avdeev/matchpulse/internal/alerts"
	"github.com/avdeev/matchpulse/internal/fetch"
	"github.com/avdeev/matchpulse/internal/notify"
	"github.com/avdeev/matchpulse/internal/pipeline"
	pkgconfig "github.com/avdeev/matchpulse/internal/pkg/config"
	"github.com/avdeev/matchpulse/internal/pkg/logging"
	"github.com/avdeev/matchpulse/internal/pkg/storage"
	"github.com/avdeev/matchpulse/internal/summary"
)

const (
	defaultConfigPath = "configs/production.yaml"
)

type cliConfig struct {
	configPath string
	cacheFile  string // Override fetch.cache_file from config
	matchIDs   string // Comma-separated match ids restricting the alert pass
}

func main() {
	if err := run(); err != nil {
		var abort *pipeline.AbortError
		if errors.As(err, &abort) {
			slog.Error("Orchestrator aborted", "stage", abort.Stage, "error", abort.Err)
		} else {
			slog.Error("Orchestrator failed", "error", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cli := parseFlags()
	slog.Info("Loading config", "path", cli.configPath)

	cfg, err := pkgconfig.Load(cli.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cli.cacheFile != "" {
		cfg.Fetch.CacheFile = cli.cacheFile
	}

	logger, err := logging.Setup(&cfg.Logging, "orchestrator")
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)
	slog.Info("Logging initialized", "service", "orchestrator")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newSeenStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create seen store: %w", err)
	}
	defer store.Close()

	notifier := newNotifier(cfg, logger)

	evaluators, err := alerts.Build(&cfg.Alerts, func(name string) (*slog.Logger, error) {
		return logging.NewAlertLogger(cfg.Logging.Dir, name, cfg.Logging.Level)
	})
	if err != nil {
		return fmt.Errorf("failed to build alert registry: %w", err)
	}
	slog.Info("Alert registry ready", "alerts", strings.Join(alerts.AvailableNames(), ", "))

	engine, err := alerts.NewEngine(ctx, evaluators, store, notifier, logger)
	if err != nil {
		return fmt.Errorf("failed to create alert engine: %w", err)
	}

	summaryLogger, err := logging.NewSinkLogger(cfg.Logging.Dir, "complete_summary", cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create summary sink: %w", err)
	}

	source := newSource(cfg, logger)

	orch := pipeline.NewOrchestrator(source, pipeline.EnrichMerge, summary.NewWriter(summaryLogger), engine, logger)
	return orch.RunCycle(ctx, parseMatchIDs(cli.matchIDs))
}

func parseFlags() cliConfig {
	var cli cliConfig

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cli.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&cli.cacheFile, "cache", "", "Override path to the raw cycle cache file")
	flag.StringVar(&cli.matchIDs, "match-ids", "", "Comma-separated match ids to restrict the alert pass. Empty = all matches")
	flag.Parse()
	return cli
}

func parseMatchIDs(raw string) map[string]struct{} {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	restrict := make(map[string]struct{})
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			restrict[id] = struct{}{}
		}
	}
	return restrict
}

func newSeenStore(cfg *pkgconfig.Config, logger *slog.Logger) (storage.SeenStore, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return storage.NewPostgresSeenStore(&cfg.Storage.Postgres, logger)
	case "file":
		return storage.NewFileSeenStore(cfg.Storage.SeenDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected file or postgres)", cfg.Storage.Backend)
	}
}

func newNotifier(cfg *pkgconfig.Config, logger *slog.Logger) alerts.Notifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		logger.Warn("Telegram not configured, notifications go to the log only")
		return notify.NewLogNotifier(logger)
	}
	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	if err != nil {
		logger.Warn("Failed to initialize Telegram notifier, falling back to log notifier", "error", err)
		return notify.NewLogNotifier(logger)
	}
	return notifier
}

func newSource(cfg *pkgconfig.Config, logger *slog.Logger) pipeline.Source {
	if cfg.Fetch.Mode == "http" {
		return fetch.NewHTTPSource(&cfg.Fetch, logger)
	}
	return fetch.NewFileSource(cfg.Fetch.CacheFile, logger)
}
