package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/trendoscope/internal/domain/usage"
)

// Service handles generation token usage reporting.
type Service struct {
	provider string
	br       BudgetReader
}

// New creates a Service. br can be nil (unlimited mode, nothing tracked).
func New(provider string, br BudgetReader) *Service {
	return &Service{provider: provider, br: br}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	var start, end time.Time
	var limit, used int64
	remaining := int64(-1)

	switch period {
	case domusage.PeriodMonth:
		start = truncateToMonth(now)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	default:
		start = truncateToDay(now)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		}
	}

	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), s.provider, used, limit, remaining)
}
