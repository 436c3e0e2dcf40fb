package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/config"
	"github.com/bbrc/scout/internal/logging"
	"github.com/bbrc/scout/internal/prefs"
	"github.com/bbrc/scout/internal/state"
	"github.com/bbrc/scout/internal/ui"
)

// Options configure the console.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/scout/prefs.toml
	APIURL     string // overrides api_url from the config file
	Verbose    bool
}

const initialLoadTimeout = 3 * time.Second

// Run boots the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}

	logger, err := logging.NewFile(cfg.DebugLog, cfg.LogLevel, opts.Verbose)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := api.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	logger.Info("scout starting",
		zap.String("api", client.BaseURL()),
		zap.Duration("stats_poll", cfg.StatsPoll),
		zap.Duration("logs_poll", cfg.LogsPoll),
		zap.String("log_file", cfg.LogFile),
	)

	store := &state.Store{}
	relay := ui.NewRelay()

	// Populate the header before the first frame. Failures are recorded in
	// the store and shown by the UI.
	loadCtx, cancel := context.WithTimeout(ctx, initialLoadTimeout)
	if err := refreshStats(loadCtx, client, store); err != nil {
		logger.Warn("initial load failed", zap.Error(err))
	}
	cancel()

	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Config:    &cfg,
		Feeds:     NewFeeds(cfg, client, store, relay, logger),
		Relay:     relay,
		Logger:    logger,
		ThemeName: userPrefs.Theme,
		StartView: userPrefs.LastView,
		PrefsPath: opts.PrefsPath,
	})
}
