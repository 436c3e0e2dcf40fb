package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/config"
	"github.com/bbrc/scout/internal/logging"
	"github.com/bbrc/scout/internal/logtail"
	"github.com/bbrc/scout/internal/poll"
	"github.com/bbrc/scout/internal/state"
	"github.com/bbrc/scout/internal/ui"
)

// logWindow is how many lines of a local log file are kept.
const logWindow = ui.LogBufferLimit

// notifier wakes the UI after a store write.
type notifier interface {
	Notify()
}

// pollFeed adapts a Poller to ui.Feed.
type pollFeed struct {
	*poll.Poller
}

func (f pollFeed) Start(ctx context.Context) error {
	f.Poller.Start(ctx)
	return nil
}

// NewFeeds builds the background feed for each view that polls. The
// dashboard polls stats and status; the logs view polls GET /logs, or
// watches cfg.LogFile when one is configured.
func NewFeeds(cfg config.Config, client api.Backend, store *state.Store, n notifier, logger *zap.Logger) map[ui.View]ui.Feed {
	if logger == nil {
		logger = logging.Nop()
	}
	feeds := map[ui.View]ui.Feed{
		ui.ViewDashboard: pollFeed{poll.New(cfg.StatsPoll, statsFetcher(client, store, n),
			poll.WithName("stats"), poll.WithLogger(logger))},
	}

	if cfg.LogFile != "" {
		w := logtail.NewWatcher(cfg.LogFile, logWindow, func(lines []string, err error) {
			store.UpdateLogs(lines, err)
			n.Notify()
		}, logtail.WithWatchLogger(logger.Named("logtail")))
		logger.Debug("logs view tails a local file", zap.String("path", w.Path()))
		feeds[ui.ViewLogs] = w
		return feeds
	}

	feeds[ui.ViewLogs] = pollFeed{poll.New(cfg.LogsPoll, logsFetcher(client, store, n),
		poll.WithName("logs"), poll.WithLogger(logger))}
	return feeds
}

// statsFetcher refreshes the counters and backend status together.
func statsFetcher(client api.Backend, store *state.Store, n notifier) poll.FetchFunc {
	return func(ctx context.Context) error {
		store.BeginStats()
		err := refreshStats(ctx, client, store)
		n.Notify()
		return err
	}
}

// refreshStats fetches stats and status concurrently and records both
// outcomes. One failing does not discard the other's result.
func refreshStats(ctx context.Context, client api.Backend, store *state.Store) error {
	var g errgroup.Group
	g.Go(func() error {
		stats, err := client.FetchStats(ctx)
		store.UpdateStats(stats, err)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		status, err := client.FetchStatus(ctx)
		store.UpdateStatus(status, err)
		if err != nil {
			return fmt.Errorf("fetch status: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func logsFetcher(client api.Backend, store *state.Store, n notifier) poll.FetchFunc {
	return func(ctx context.Context) error {
		store.BeginLogs()
		lines, err := client.FetchLogs(ctx)
		store.UpdateLogs(lines, err)
		n.Notify()
		if err != nil {
			return fmt.Errorf("fetch logs: %w", err)
		}
		return nil
	}
}
