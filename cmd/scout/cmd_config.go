package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bbrc/scout/internal/api"
	"github.com/bbrc/scout/internal/config"
)

func (c *cli) configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Show or replace the backend agent settings",
	}

	var asYAML bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the backend settings",
		Args:  cobra.NoArgs,
		RunE: c.runWith(func(ctx context.Context, e *env, _ []string) error {
			settings, err := e.client.FetchConfig(ctx)
			if err != nil {
				return fmt.Errorf("fetch config: %w", err)
			}
			if asYAML {
				enc := yaml.NewEncoder(e.out)
				enc.SetIndent(2)
				if err := enc.Encode(settings); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			}
			enc := json.NewEncoder(e.out)
			enc.SetIndent("", "  ")
			return enc.Encode(settings)
		}),
	}
	show.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of JSON")

	apply := &cobra.Command{
		Use:   "apply <file.yaml>",
		Short: "Replace the backend settings with a YAML document",
		Long: `Replace the backend settings with the document in file.

The file holds the same nested structure that "config show --yaml" prints.
The whole document is sent, so start from a copy of the current settings.`,
		Args: cobra.ExactArgs(1),
		RunE: c.runWith(func(ctx context.Context, e *env, args []string) error {
			settings, err := readSettings(args[0])
			if err != nil {
				return err
			}
			res, err := e.client.UpdateConfig(ctx, settings)
			if err != nil {
				return fmt.Errorf("update config: %w", err)
			}
			status := res.Status
			if status == "" {
				status = "updated"
			}
			fmt.Fprintf(e.out, "Settings %s\n", status)
			return nil
		}),
	}

	cfg.AddCommand(show, apply)
	return cfg
}

// readSettings decodes a YAML settings document. Unknown keys are kept and
// sent back untouched.
func readSettings(path string) (api.Config, error) {
	path, err := config.ExpandPath(path)
	if err != nil {
		return api.Config{}, fmt.Errorf("settings path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return api.Config{}, fmt.Errorf("read settings: %w", err)
	}
	var settings api.Config
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return api.Config{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return settings, nil
}
