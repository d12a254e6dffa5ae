package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and rebuild style profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List sources with a stored style profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				ids, err := a.style.List(ctx)
				if err != nil {
					return err
				}
				return opts.print(cmd, ids, func() {
					for _, id := range ids {
						fmt.Fprintln(cmd.OutOrStdout(), id)
					}
				})
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <source>",
		Short: "Print a stored style profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.style.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return opts.print(cmd, p, func() { printProfile(cmd, p) })
			})
		},
	}

	analyze := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Rebuild a style profile from the indexed documents of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				p, err := a.style.Analyze(ctx, args[0])
				if err != nil {
					return err
				}
				return opts.print(cmd, p, func() { printProfile(cmd, p) })
			})
		},
	}

	cmd.AddCommand(list, show, analyze)
	return cmd
}

func printProfile(cmd *cobra.Command, p domstyle.Profile) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Source:     %s\n", p.SourceID)
	fmt.Fprintf(w, "Saved:      %s\n", p.SavedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Documents:  %d\n", p.DocumentCount)
	fmt.Fprintf(w, "Avg length: %.0f\n", p.AvgLength)
	fmt.Fprintf(w, "Sentiment:  %s\n", p.AvgSentiment.Label)
	fmt.Fprintf(w, "Tags:       %s\n", strings.Join(p.TypicalTags, ", "))
	fmt.Fprintf(w, "Phrases:    %s\n", strings.Join(p.CommonPhrases, "; "))
	fmt.Fprintf(w, "Vocabulary: %s\n", strings.Join(p.Vocabulary, ", "))
}
