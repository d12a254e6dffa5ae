package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a failing optional component (cache, provider).
	Degraded Status = "degraded"
	// Unhealthy indicates the data directory is unusable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentEmbedding = "embedding"
	ComponentLLM       = "llm"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	storage   Checker
	cache     Pinger
	embedding Checker
	llm       Checker
}

// Option configures optional components.
type Option func(*Service)

// WithCache adds the Valkey cache check.
func WithCache(p Pinger) Option { return func(s *Service) { s.cache = p } }

// WithEmbedding adds the embedding provider check.
func WithEmbedding(c Checker) Option { return func(s *Service) { s.embedding = c } }

// WithLLM adds the text generation provider check.
func WithLLM(c Checker) Option { return func(s *Service) { s.llm = c } }

// New creates a Service. storage is required.
func New(storage Checker, opts ...Option) *Service {
	s := &Service{storage: storage}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentStorage] = result(s.storage.HealthCheck(ctx))
	if s.cache != nil {
		checks[ComponentCache] = result(s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		checks[ComponentEmbedding] = result(s.embedding.HealthCheck(ctx))
	}
	if s.llm != nil {
		checks[ComponentLLM] = result(s.llm.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentStorage] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
