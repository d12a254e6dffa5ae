package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/trendoscope/internal/domain/trend"
)

func newTrendsCmd(opts *rootOptions) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Fetch the latest news and print the most frequent keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				snap, err := a.trends.Refresh(ctx)
				if err != nil {
					return err
				}
				n := top
				if n <= 0 {
					n = a.cfg.News.TrendsTopN
				}
				snap.Trends = snap.Top(n)
				return opts.print(cmd, snap, func() { printTrends(cmd, snap) })
			})
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 0, "number of trends (default news.trends_top_n)")
	return cmd
}

func printTrends(cmd *cobra.Command, snap trend.Snapshot) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d news items analyzed at %s\n\n", snap.DocumentCount, snap.ComputedAt.Format("2006-01-02 15:04"))
	if len(snap.Trends) == 0 {
		fmt.Fprintln(w, "No trends found.")
		return
	}
	for i, t := range snap.Trends {
		fmt.Fprintf(w, "%3d. %-24s %3d  %s\n", i+1, t.Keyword, t.Count, strings.Join(t.Sources, ", "))
	}
}
