package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/mode"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/request"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
)

const snippetRunes = 160

type searchHit struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Published time.Time `json:"published,omitzero"`
	Score     float64   `json:"score"`
	Snippet   string    `json:"snippet"`
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		searchMode string
		k          int
		minScore   float64
		source     string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find indexed documents closest in meaning to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request.New(strings.Join(args, " "), mode.Mode(searchMode), k, minScore, source)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
			}
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				results, err := a.search.Search(ctx, &req)
				if err != nil {
					return err
				}
				hits := toHits(results)
				return opts.print(cmd, hits, func() { printHits(cmd, hits) })
			})
		},
	}
	cmd.Flags().StringVar(&searchMode, "mode", string(mode.Semantic), "ranking mode: semantic or hybrid")
	cmd.Flags().IntVarP(&k, "limit", "k", request.DefaultK, "number of results")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "drop semantic results below this cosine similarity")
	cmd.Flags().StringVar(&source, "source", "", "restrict results to one source (blog URL or feed name)")
	return cmd
}

func toHits(results []result.Result) []searchHit {
	hits := make([]searchHit, 0, len(results))
	for i := range results {
		d := results[i].Document()
		hits = append(hits, searchHit{
			URL:       d.URL(),
			Title:     d.Title(),
			Source:    d.Source(),
			Published: d.Published(),
			Score:     results[i].Score(),
			Snippet:   truncateRunes(d.TextPlain(), snippetRunes),
		})
	}
	return hits
}

func printHits(cmd *cobra.Command, hits []searchHit) {
	w := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	for i, h := range hits {
		title := h.Title
		if title == "" {
			title = h.URL
		}
		fmt.Fprintf(w, "  [%d] %s (%.3f)\n", i+1, title, h.Score)
		fmt.Fprintf(w, "      %s\n", h.URL)
		if h.Snippet != "" {
			fmt.Fprintf(w, "      %s\n", h.Snippet)
		}
		fmt.Fprintln(w)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
