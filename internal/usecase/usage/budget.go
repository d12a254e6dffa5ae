package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/metrics"
)

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// ParseBudgetAction maps a config value to a BudgetAction. Anything but "reject" warns.
func ParseBudgetAction(s string) BudgetAction {
	if s == string(BudgetActionReject) {
		return BudgetActionReject
	}
	return BudgetActionWarn
}

// BudgetStore is the persistence interface for budget counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// window is one budget period (day or month) with its own limit and counter.
type window struct {
	name     string
	layout   string
	limit    int64
	used     int64
	start    time.Time
	truncate func(time.Time) time.Time
}

// roll zeroes the counter once now falls into a later period.
func (w *window) roll(now time.Time) {
	if s := w.truncate(now); s.After(w.start) {
		w.used = 0
		w.start = s
	}
}

func (w *window) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

// remaining returns tokens left, or -1 when the window has no limit.
func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(0, w.limit-w.used)
}

// BudgetTracker counts provider tokens against daily and monthly limits.
// Check reads memory only; Record updates memory first and then writes behind to the store.
type BudgetTracker struct {
	mu        sync.Mutex
	day       window
	month     window
	action    BudgetAction
	provider  string
	keyPrefix string
	now       func() time.Time
	store     BudgetStore
	logger    *zap.Logger
}

// NewBudgetTracker creates a budget tracker with the given limits (0 means unlimited).
// provider names the counters, e.g. "llm:openai" or "embedding:openai".
func NewBudgetTracker(
	provider, keyPrefix string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	b := &BudgetTracker{
		day:       window{name: "daily", layout: "2006-01-02", limit: dailyLimit, truncate: truncateToDay},
		month:     window{name: "monthly", layout: "2006-01", limit: monthlyLimit, truncate: truncateToMonth},
		action:    action,
		provider:  provider,
		keyPrefix: keyPrefix,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
	b.align(b.now())
	return b
}

// align starts both windows at the periods containing now.
func (b *BudgetTracker) align(now time.Time) {
	b.day.start = truncateToDay(now)
	b.month.start = truncateToMonth(now)
}

func (b *BudgetTracker) windows() [2]*window { return [2]*window{&b.day, &b.month} }

func (b *BudgetTracker) key(w *window, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", b.keyPrefix, b.provider, w.name, t.Format(w.layout))
}

// WithStore attaches a persistence store and loads the current counters from it.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	for _, w := range b.windows() {
		val, err := store.Get(ctx, b.key(w, now))
		if err != nil {
			b.logger.Warn("budget counter not loaded", zap.String("window", w.name), zap.Error(err))
			continue
		}
		w.used = val
	}
	b.logger.Info("budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("monthly_used", b.month.used),
	)
	return b
}

// Check fails with domain.ErrQuotaExceeded when a limit is reached and the action is reject.
// With action warn it logs and lets the request through.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roll()
	if !b.day.exceeded() && !b.month.exceeded() {
		return nil
	}
	if b.action == BudgetActionReject {
		return fmt.Errorf("%s budget: %w", b.provider, domain.ErrQuotaExceeded)
	}
	b.logger.Warn("token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("daily_limit", b.day.limit),
		zap.Int64("monthly_used", b.month.used),
		zap.Int64("monthly_limit", b.month.limit),
	)
	return nil
}

// Record adds consumed tokens, refreshes the remaining-budget gauges and persists the increment.
func (b *BudgetTracker) Record(tokens int64) {
	if tokens <= 0 {
		return
	}

	b.mu.Lock()
	b.roll()
	now := b.now()
	keys := make(map[string]string, 2)
	for _, w := range b.windows() {
		w.used += tokens
		keys[w.name] = b.key(w, now)
		metrics.BudgetTokensRemaining.WithLabelValues(b.provider, w.name).Set(float64(w.remaining()))
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the caller: the request may already be done when the write lands.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for name, key := range keys {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("budget increment not persisted",
				zap.String("window", name), zap.String("key", key), zap.Error(err))
		}
	}
}

func (b *BudgetTracker) roll() {
	now := b.now()
	b.day.roll(now)
	b.month.roll(now)
}

func (b *BudgetTracker) read(f func() int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll()
	return f()
}

// RemainingDaily returns tokens left today, -1 if unlimited.
func (b *BudgetTracker) RemainingDaily() int64 { return b.read(b.day.remaining) }

// RemainingMonthly returns tokens left this month, -1 if unlimited.
func (b *BudgetTracker) RemainingMonthly() int64 { return b.read(b.month.remaining) }

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 { return b.read(func() int64 { return b.day.used }) }

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 { return b.read(func() int64 { return b.month.used }) }

// DailyLimit returns the daily token cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.day.limit }

// MonthlyLimit returns the monthly token cap.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.month.limit }

// Provider returns the counter namespace this tracker was created with.
func (b *BudgetTracker) Provider() string { return b.provider }

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
