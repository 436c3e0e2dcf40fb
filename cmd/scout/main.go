package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/app"
	"github.com/bbrc/scout/internal/config"
	"github.com/bbrc/scout/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "scout: %v\n", err)
		return 1
	}
	return 0
}

// cli holds the global flags and builds what subcommands share.
type cli struct {
	configPath string
	apiURL     string
	verbose    bool

	// newBackend is swapped out by tests.
	newBackend func(cfg config.Config) (api.Backend, error)
}

func newRootCmd(newBackend func(config.Config) (api.Backend, error)) *cobra.Command {
	c := &cli{newBackend: newBackend}
	if c.newBackend == nil {
		c.newBackend = func(cfg config.Config) (api.Backend, error) {
			return api.NewClient(cfg.APIURL)
		}
	}

	root := &cobra.Command{
		Use:   "scout",
		Short: "Admin console for the BBRC outreach backend",
		Long: `scout monitors and drives the BBRC outreach agents.

Run without a subcommand to open the terminal dashboard. The subcommands
perform the same actions non-interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: c.configPath,
				APIURL:     c.apiURL,
				Verbose:    c.verbose,
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&c.apiURL, "api", "", "backend API base URL, overrides api_url")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.statsCmd(),
		c.statusCmd(),
		c.authorsCmd(),
		c.agentsCmd(),
		c.configCmd(),
		c.logsCmd(),
	)
	return root
}

// env is what a subcommand needs to talk to the backend.
type env struct {
	cfg    config.Config
	client api.Backend
	logger *zap.Logger
	out    io.Writer
}

func (c *cli) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(c.apiURL); v != "" {
		cfg.APIURL = v
	}

	logger, err := logging.NewConsole(c.verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := c.newBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	logger.Debug("backend", zap.String("api", cfg.APIURL))

	return &env{cfg: cfg, client: client, logger: logger, out: cmd.OutOrStdout()}, nil
}

// runWith adapts a subcommand body to cobra's RunE.
func (c *cli) runWith(fn func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := c.setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()
		return fn(cmd.Context(), e, args)
	}
}
