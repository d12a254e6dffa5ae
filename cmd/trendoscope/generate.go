package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
)

type generateOutput struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	Topic      string   `json:"topic"`
	Mode       string   `json:"mode"`
	Repaired   bool     `json:"repaired"`
	Retrieved  []string `json:"retrieved"`
	TokensUsed int      `json:"tokens_used"`
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		source     string
		topic      string
		styleMode  string
		retrieve   bool
		k          int
		fromTrends bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post about a topic in a stored blog style",
		Example: `  trendoscope generate --source https://example.com/blog --topic "ставка ЦБ" --mode ironic
  trendoscope generate --source https://example.com/blog --from-trends --retrieve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := domstyle.ParseMode(styleMode)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
			}
			if strings.TrimSpace(topic) == "" && !fromTrends {
				return fmt.Errorf("%w: --topic or --from-trends is required", domain.ErrInvalidArgument)
			}
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				t := topic
				if strings.TrimSpace(t) == "" {
					if t, err = trendingTopic(ctx, a); err != nil {
						return err
					}
					a.logger.Info("topic picked from trends", zap.String("topic", t))
				}
				res, err := a.generate.Generate(ctx, generateuc.Request{
					SourceID:     source,
					Topic:        t,
					Mode:         m,
					UseRetrieval: retrieve,
					K:            k,
				})
				if err != nil {
					return err
				}
				out := toGenerateOutput(res)
				return opts.print(cmd, out, func() { printPost(cmd, out) })
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source id of a stored style profile (the blog URL)")
	cmd.Flags().StringVar(&topic, "topic", "", "what the post is about")
	cmd.Flags().StringVar(&styleMode, "mode", string(domstyle.Analytical),
		"writing mode: philosophical, ironic, analytical or provocative")
	cmd.Flags().BoolVar(&retrieve, "retrieve", false, "add the closest indexed posts of the source as examples")
	cmd.Flags().IntVarP(&k, "k", "k", generateuc.MaxRetrieved, "number of retrieved examples")
	cmd.Flags().BoolVar(&fromTrends, "from-trends", false, "use the top trending news keyword when --topic is empty")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

// trendingTopic refreshes trends and returns the top keyword.
func trendingTopic(ctx context.Context, a *app) (string, error) {
	if _, err := a.trends.Refresh(ctx); err != nil {
		return "", fmt.Errorf("refresh trends: %w", err)
	}
	topics := a.trends.SuggestTopics(1)
	if len(topics) == 0 {
		return "", fmt.Errorf("no trending topics in the latest news: %w", domain.ErrInsufficientData)
	}
	return topics[0], nil
}

func toGenerateOutput(res generateuc.Result) generateOutput {
	tags := res.Post.Tags
	if tags == nil {
		tags = []string{}
	}
	retrieved := res.Retrieved
	if retrieved == nil {
		retrieved = []string{}
	}
	return generateOutput{
		Title:      res.Post.Title,
		Body:       res.Post.Body,
		Tags:       tags,
		Topic:      res.Topic,
		Mode:       string(res.Mode),
		Repaired:   res.Repaired,
		Retrieved:  retrieved,
		TokensUsed: res.TokensUsed,
	}
}

func printPost(cmd *cobra.Command, out generateOutput) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "# %s\n\n", out.Title)
	fmt.Fprintln(w, out.Body)
	if len(out.Tags) > 0 {
		fmt.Fprintf(w, "\nTags: %s\n", strings.Join(out.Tags, ", "))
	}
	if out.Repaired {
		fmt.Fprintln(w, "(model output was repaired before parsing)")
	}
}
