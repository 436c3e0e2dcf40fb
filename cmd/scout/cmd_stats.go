package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bbrc/scout/internal/api"
)

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the pipeline counters",
		Args:  cobra.NoArgs,
		RunE: c.runWith(func(ctx context.Context, e *env, _ []string) error {
			stats, err := e.client.FetchStats(ctx)
			if err != nil {
				return fmt.Errorf("fetch stats: %w", err)
			}
			printStats(e, stats)
			return nil
		}),
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print backend health and counters",
		Args:  cobra.NoArgs,
		RunE: c.runWith(func(ctx context.Context, e *env, _ []string) error {
			var (
				stats  api.Stats
				status api.Status
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				status, err = e.client.FetchStatus(gctx)
				if err != nil {
					return fmt.Errorf("fetch status: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				var err error
				stats, err = e.client.FetchStats(gctx)
				if err != nil {
					return fmt.Errorf("fetch stats: %w", err)
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				e.logger.Debug("status check failed", zap.Error(err))
				fmt.Fprintf(e.out, "Backend: OFFLINE (%s)\n", e.cfg.APIURL)
				return err
			}

			state := strings.ToUpper(status.Status)
			if state == "" {
				state = "UNKNOWN"
			}
			fmt.Fprintf(e.out, "Backend: %s", state)
			if status.Version != "" {
				fmt.Fprintf(e.out, " v%s", status.Version)
			}
			fmt.Fprintf(e.out, " (%s)\n", e.cfg.APIURL)
			printStats(e, stats)
			return nil
		}),
	}
}

func printStats(e *env, s api.Stats) {
	fmt.Fprintf(e.out, "Papers found:     %d\n", s.PapersFound)
	fmt.Fprintf(e.out, "Authors profiled: %d\n", s.AuthorsProfiled)
	fmt.Fprintf(e.out, "Emails sent:      %d\n", s.EmailsSent)
}

func (c *cli) agentsCmd() *cobra.Command {
	agents := &cobra.Command{
		Use:   "agents",
		Short: "Control the backend agents",
	}
	agents.AddCommand(&cobra.Command{
		Use:       "start <" + strings.Join(api.Agents, "|") + ">",
		Short:     "Start an agent run",
		Args:      cobra.ExactArgs(1),
		ValidArgs: api.Agents,
		RunE: c.runWith(func(ctx context.Context, e *env, args []string) error {
			name := strings.ToLower(strings.TrimSpace(args[0]))
			if !slices.Contains(api.Agents, name) {
				return fmt.Errorf("unknown agent %q (want one of %s)", args[0], strings.Join(api.Agents, ", "))
			}
			res, err := e.client.StartAgent(ctx, name)
			if err != nil {
				return fmt.Errorf("start %s: %w", name, err)
			}
			if !res.Started() {
				msg := res.Message
				if msg == "" {
					msg = "backend refused to start " + name
				}
				return fmt.Errorf("start %s: %s", name, msg)
			}
			fmt.Fprintf(e.out, "%s agent started\n", name)
			return nil
		}),
	})
	return agents
}
