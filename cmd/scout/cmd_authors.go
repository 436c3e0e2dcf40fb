package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bbrc/scout/internal/config"
	"github.com/bbrc/scout/internal/listing"
)

func (c *cli) authorsCmd() *cobra.Command {
	authors := &cobra.Command{
		Use:   "authors",
		Short: "List, sync and export profiled authors",
	}
	authors.AddCommand(c.authorsListCmd(), c.authorsSyncCmd(), c.authorsExportCmd())
	return authors
}

func (c *cli) authorsListCmd() *cobra.Command {
	var (
		search  string
		sortKey string
		desc    bool
		page    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of authors",
		Args:  cobra.NoArgs,
		RunE: c.runWith(func(ctx context.Context, e *env, _ []string) error {
			key, err := listing.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			all, err := e.client.FetchAuthors(ctx)
			if err != nil {
				return fmt.Errorf("fetch authors: %w", err)
			}

			q := listing.NewQuery(e.cfg.PageSize)
			q.SetTerm(search)
			q.Sorter = listing.Sorter{Key: key, Desc: desc}
			q.Page = page
			res := q.Apply(all)

			if res.Matched == 0 {
				fmt.Fprintln(e.out, "No authors found matching your criteria.")
				return nil
			}
			tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tEMAIL\tJOURNAL\tPAPER ID\tPAPER TITLE")
			for _, a := range res.Rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Name, a.Email, a.Journal, a.PaperID, a.PaperTitle)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "\n%d found · page %d/%d · sort %s\n", res.Matched, res.Page.Number, res.Page.Total, q.Sorter)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name, email or journal")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort column: name, email, journal, paper_id, paper_title")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func (c *cli) authorsSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Import profiled authors into the database",
		Args:  cobra.NoArgs,
		RunE: c.runWith(func(ctx context.Context, e *env, _ []string) error {
			res, err := e.client.SyncAuthors(ctx)
			if err != nil {
				return fmt.Errorf("sync authors: %w", err)
			}
			if !res.Synced() {
				msg := res.Message
				if msg == "" {
					msg = "sync failed"
				}
				return errors.New(msg)
			}
			fmt.Fprintf(e.out, "Synced %d new authors\n", res.Added)
			return nil
		}),
	}
}

func (c *cli) authorsExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download all authors as CSV",
		Args:  cobra.NoArgs,
		RunE: c.runWith(func(ctx context.Context, e *env, _ []string) error {
			path := e.cfg.ExportPath(time.Now())
			if output != "" {
				var err error
				if path, err = config.ExpandPath(output); err != nil {
					return fmt.Errorf("export path: %w", err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			n, err := e.client.ExportAuthors(ctx, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				if rmErr := os.Remove(path); rmErr != nil {
					e.logger.Warn("remove partial export", zap.String("path", path), zap.Error(rmErr))
				}
				return fmt.Errorf("export authors: %w", err)
			}
			fmt.Fprintf(e.out, "Exported %d bytes to %s\n", n, path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default export_dir/authors_export_<time>.csv)")
	return cmd
}
