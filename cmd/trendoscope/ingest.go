package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	ingestuc "github.com/kailas-cloud/trendoscope/internal/usecase/ingest"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Scrape blogs and news into the index",
	}
	cmd.AddCommand(newIngestBlogCmd(opts), newIngestNewsCmd(opts))
	return cmd
}

func newIngestBlogCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "blog <url>",
		Short: "Scrape a blog, index its posts and rebuild its style profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				n := limit
				if n <= 0 {
					n = a.cfg.Scraper.MaxPosts
				}
				rep, err := a.ingest.IngestBlog(ctx, args[0], n)
				if err != nil {
					return err
				}
				return opts.print(cmd, rep, func() { printReport(cmd, rep) })
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum posts to scrape (default scraper.max_posts)")
	return cmd
}

func newIngestNewsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Fetch configured RSS feeds and index the latest items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				n := limit
				if n <= 0 {
					n = a.cfg.News.Limit
				}
				rep, err := a.ingest.IngestNews(ctx, n)
				if err != nil {
					return err
				}
				return opts.print(cmd, rep, func() { printReport(cmd, rep) })
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum news items (default news.limit)")
	return cmd
}

func printReport(cmd *cobra.Command, rep ingestuc.Report) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Source:  %s\n", rep.SourceID)
	fmt.Fprintf(w, "Fetched: %d\n", rep.Fetched)
	fmt.Fprintf(w, "Added:   %d\n", rep.Added)
	fmt.Fprintf(w, "Skipped: %d\n", rep.Skipped)
	if rep.ProfileUpdated {
		fmt.Fprintln(w, "Style profile updated.")
	}
}
