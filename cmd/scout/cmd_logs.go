package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bbrc/scout/internal/logtail"
	"github.com/bbrc/scout/internal/poll"
)

func (c *cli) logsCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the agent log",
		Args:  cobra.NoArgs,
		RunE: c.runWith(func(ctx context.Context, e *env, _ []string) error {
			if !follow {
				lines, err := e.client.FetchLogs(ctx)
				if err != nil {
					return fmt.Errorf("fetch logs: %w", err)
				}
				printLines(e, lines)
				return nil
			}
			return followLogs(ctx, e)
		}),
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling and print new lines")
	return cmd
}

// followLogs polls the log every logs_poll and prints lines that were not
// in the previous window. It returns when ctx is cancelled.
func followLogs(ctx context.Context, e *env) error {
	var (
		mu   sync.Mutex
		prev []string
	)
	p := poll.New(e.cfg.LogsPoll, func(ctx context.Context) error {
		lines, err := e.client.FetchLogs(ctx)
		if err != nil {
			return fmt.Errorf("fetch logs: %w", err)
		}
		mu.Lock()
		defer mu.Unlock()
		printLines(e, logtail.NewLines(prev, lines))
		prev = lines
		return nil
	}, poll.WithName("logs"), poll.WithLogger(e.logger))

	e.logger.Debug("following logs", zap.Duration("interval", p.Interval()))
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	p.Wait()
	return nil
}

func printLines(e *env, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(e.out, line)
	}
}
