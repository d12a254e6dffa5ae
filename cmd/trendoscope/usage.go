package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domusage "github.com/kailas-cloud/trendoscope/internal/domain/usage"
)

type usageOutput struct {
	Period      string    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Provider    string    `json:"provider"`
	Used        int64     `json:"used"`
	Limit       int64     `json:"limit"`
	Remaining   int64     `json:"remaining"`
	Exhausted   bool      `json:"exhausted"`
}

func newUsageCmd(opts *rootOptions) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Print generation token usage against the configured budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ok := domusage.ParsePeriod(period)
			if !ok {
				return fmt.Errorf("%w: period must be day or month", domain.ErrInvalidArgument)
			}
			return opts.runWithApp(cmd, func(ctx context.Context, a *app) error {
				rep := a.usage.GetReport(ctx, p)
				out := usageOutput{
					Period:      string(rep.Period()),
					PeriodStart: time.UnixMilli(rep.PeriodStart()).UTC(),
					PeriodEnd:   time.UnixMilli(rep.PeriodEnd()).UTC(),
					Provider:    rep.Provider(),
					Used:        rep.Used(),
					Limit:       rep.Limit(),
					Remaining:   rep.Remaining(),
					Exhausted:   rep.Exhausted(),
				}
				return opts.print(cmd, out, func() {
					w := cmd.OutOrStdout()
					fmt.Fprintf(w, "%s usage (%s): %d tokens\n", out.Period, out.Provider, out.Used)
					if out.Limit > 0 {
						fmt.Fprintf(w, "limit %d, remaining %d\n", out.Limit, out.Remaining)
					} else {
						fmt.Fprintln(w, "no limit configured")
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", "day", "day or month")
	return cmd
}
