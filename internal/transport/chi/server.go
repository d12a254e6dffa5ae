// Package chi is the HTTP transport: JSON handlers on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/mode"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/request"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	domusage "github.com/kailas-cloud/trendoscope/internal/domain/usage"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/trendoscope/internal/usecase/health"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Deps are the use cases behind the API. Trends and Usage may be nil.
type Deps struct {
	Ingest   Ingestor
	Search   Searcher
	Profiles Profiles
	Generate Generator
	Trends   Trends
	Usage    UsageReporter
	Health   HealthChecker
}

// Server serves the JSON API.
type Server struct {
	deps          Deps
	newID         func() string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		deps:   deps,
		newID:  func() string { return uuid.NewString() },
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrEmptyIndex, http.StatusConflict, CodeEmptyIndex),
		sentinelHandler(domain.ErrInsufficientData, http.StatusUnprocessableEntity, CodeInsufficientData),
		sentinelHandler(domain.ErrGenerationParse, http.StatusBadGateway, CodeGenerationParseError),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded),
		sentinelHandler(domain.ErrProvider, http.StatusBadGateway, CodeProviderError),
	}
	return s
}

// Register mounts all routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r gochi.Router) {
		r.Post("/ingest/blog", s.IngestBlog)
		r.Post("/ingest/news", s.IngestNews)
		r.Post("/search", s.Search)
		r.Get("/profiles", s.ListProfiles)
		r.Get("/profiles/{source}", s.GetProfile)
		r.Post("/profiles/{source}/analyze", s.AnalyzeProfile)
		r.Post("/generate", s.Generate)
		r.Get("/trends", s.GetTrends)
		r.Post("/trends/refresh", s.RefreshTrends)
		r.Get("/usage", s.GetUsage)
	})
}

// IngestBlog handles POST /api/v1/ingest/blog.
func (s *Server) IngestBlog(w http.ResponseWriter, r *http.Request) {
	var req IngestBlogRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "url is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rep, err := s.deps.Ingest.IngestBlog(ctx, req.URL, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setTokenHeaders(w, usage)
	writeJSON(w, http.StatusOK, rep)
}

// IngestNews handles POST /api/v1/ingest/news.
func (s *Server) IngestNews(w http.ResponseWriter, r *http.Request) {
	var req IngestNewsRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	rep, err := s.deps.Ingest.IngestNews(ctx, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setTokenHeaders(w, usage)
	writeJSON(w, http.StatusOK, rep)
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.K < 0 || req.K > request.MaxK {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, fmt.Sprintf("k must be between 1 and %d", request.MaxK))
		return
	}

	searchReq, err := request.New(req.Query, mode.Mode(req.Mode), req.K, req.MinScore, req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.deps.Search.Search(ctx, &searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToAPI(&results[i])
	}
	setTokenHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items)})
}

// ListProfiles handles GET /api/v1/profiles.
func (s *Server) ListProfiles(w http.ResponseWriter, r *http.Request) {
	ids, err := s.deps.Profiles.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileListResponse{Items: nonNil(ids)})
}

// GetProfile handles GET /api/v1/profiles/{source}.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Profiles.Get(r.Context(), source)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AnalyzeProfile handles POST /api/v1/profiles/{source}/analyze.
func (s *Server) AnalyzeProfile(w http.ResponseWriter, r *http.Request) {
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Profiles.Analyze(r.Context(), source)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Generate handles POST /api/v1/generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m, err := domstyle.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "source is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.deps.Generate.Generate(ctx, generateuc.Request{
		SourceID:     req.Source,
		Topic:        req.Topic,
		Mode:         m,
		UseRetrieval: req.UseRetrieval,
		K:            req.K,
	})
	setTokenHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResultToAPI(s.newID(), &res))
}

// GetTrends handles GET /api/v1/trends?n=.
func (s *Server) GetTrends(w http.ResponseWriter, r *http.Request) {
	if s.deps.Trends == nil {
		writeError(w, http.StatusNotImplemented, CodeNotConfigured, "news sources are not configured")
		return
	}
	n, ok := intQuery(w, r, "n")
	if !ok {
		return
	}
	snap := s.deps.Trends.Snapshot()
	snap.Trends = snap.Top(n)
	writeJSON(w, http.StatusOK, snap)
}

// RefreshTrends handles POST /api/v1/trends/refresh.
func (s *Server) RefreshTrends(w http.ResponseWriter, r *http.Request) {
	if s.deps.Trends == nil {
		writeError(w, http.StatusNotImplemented, CodeNotConfigured, "news sources are not configured")
		return
	}
	snap, err := s.deps.Trends.Refresh(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetUsage handles GET /api/v1/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Usage == nil {
		writeError(w, http.StatusNotImplemented, CodeNotConfigured, "usage tracking is not configured")
		return
	}
	period, ok := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "period must be day or month")
		return
	}
	report := s.deps.Usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, usageToAPI(&report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func sourceParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	source, err := url.PathUnescape(gochi.URLParam(r, "source"))
	if err != nil || source == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid source")
		return "", false
	}
	return source, true
}

func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setTokenHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if usage == nil || !usage.Used {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	w.Header().Set("X-Generation-Tokens", strconv.Itoa(usage.GenerationTokens))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-safe message: the sentinel text, plus the parser's
// reason for generation parse errors. Provider details stay in the logs.
func safeDomainMessage(err error) string {
	var pe *domain.GenerationParseError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrEmptyIndex,
		domain.ErrInsufficientData,
		domain.ErrGenerationParse,
		domain.ErrQuotaExceeded,
		domain.ErrProvider,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
