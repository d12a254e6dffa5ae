package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/post"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/mode"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/request"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/domain/trend"
	domusage "github.com/kailas-cloud/trendoscope/internal/domain/usage"
	generateuc "github.com/kailas-cloud/trendoscope/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/trendoscope/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/trendoscope/internal/usecase/ingest"
)

type testEnv struct {
	ingest   *mockIngestor
	search   *mockSearcher
	profiles *mockProfiles
	gen      *mockGenerator
	trends   *mockTrends
	usage    *mockUsage
	health   *mockHealth
	handler  http.Handler
}

func newTestEnv(apiKeys ...string) *testEnv {
	e := &testEnv{
		ingest:   &mockIngestor{},
		search:   &mockSearcher{},
		profiles: &mockProfiles{},
		gen:      &mockGenerator{},
		trends:   &mockTrends{},
		usage:    &mockUsage{},
		health:   &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"storage": healthuc.CheckOK}}},
	}
	srv := NewServer(Deps{
		Ingest: e.ingest, Search: e.search, Profiles: e.profiles, Generate: e.gen,
		Trends: e.trends, Usage: e.usage, Health: e.health,
	}, zap.NewNop())
	srv.newID = func() string { return "post-1" }
	e.handler = NewRouter(srv, apiKeys, zap.NewNop())
	return e
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   ErrorCode
	}{
		{fmt.Errorf("load: %w", domain.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{domain.ErrEmptyIndex, http.StatusConflict, CodeEmptyIndex},
		{domain.ErrInsufficientData, http.StatusUnprocessableEntity, CodeInsufficientData},
		{domain.NewGenerationParseError("no JSON object"), http.StatusBadGateway, CodeGenerationParseError},
		{fmt.Errorf("complete: %w", domain.ErrProvider), http.StatusBadGateway, CodeProviderError},
		{domain.ErrQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded},
		{fmt.Errorf("topic: %w", domain.ErrInvalidArgument), http.StatusBadRequest, CodeValidationFailed},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			e := newTestEnv()
			e.gen.err = tt.err
			rr := e.do("POST", "/api/v1/generate", `{"source":"blog","topic":"t"}`)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			resp := decodeError(t, rr)
			if resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
			if tt.code == CodeInternalError && resp.Message != "internal error" {
				t.Errorf("internal details leaked: %q", resp.Message)
			}
		})
	}
}

func TestErrorMessage_ParseReason(t *testing.T) {
	e := newTestEnv()
	e.gen.err = domain.NewGenerationParseError("missing body")
	rr := e.do("POST", "/api/v1/generate", `{"source":"blog","topic":"t"}`)
	if resp := decodeError(t, rr); !strings.Contains(resp.Message, "missing body") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestGenerate_OK(t *testing.T) {
	e := newTestEnv()
	e.gen.result = generateuc.Result{
		Post:       post.Post{Title: "Заголовок", Body: "Текст", Tags: []string{"a"}},
		Mode:       domstyle.Ironic,
		Topic:      "выборы",
		Focus:      generateuc.TopicFocus{Categories: []string{"politics"}, Terms: []string{"выборы"}},
		TokensUsed: 42,
	}
	e.gen.tokens = 42

	rr := e.do("POST", "/api/v1/generate", `{"source":"blog","topic":"выборы","mode":"ironic","use_retrieval":true,"k":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp GenerateResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "post-1" || resp.Title != "Заголовок" || resp.Mode != "ironic" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Retrieved == nil {
		t.Error("retrieved must encode as an empty list")
	}
	if got := rr.Header().Get("X-Generation-Tokens"); got != "42" {
		t.Errorf("X-Generation-Tokens = %q", got)
	}
	req := e.gen.last
	if req.SourceID != "blog" || req.Mode != domstyle.Ironic || !req.UseRetrieval || req.K != 2 {
		t.Errorf("request not forwarded: %+v", req)
	}
}

func TestGenerate_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"bad json", `{`, CodeBadRequest},
		{"unknown field", `{"source":"b","topic":"t","extra":1}`, CodeBadRequest},
		{"bad mode", `{"source":"b","topic":"t","mode":"sarcastic"}`, CodeValidationFailed},
		{"no source", `{"topic":"t"}`, CodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv()
			rr := e.do("POST", "/api/v1/generate", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rr.Code)
			}
			if resp := decodeError(t, rr); resp.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Code, tt.code)
			}
			if e.gen.calls != 0 {
				t.Error("generator must not be called")
			}
		})
	}
}

func TestSearch_OK(t *testing.T) {
	e := newTestEnv()
	doc, _ := domdoc.New("https://blog.example/1", "Пост", strings.Repeat("я", 400),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "https://blog.example/")
	e.search.results = []result.Result{result.New(doc, 0.87)}

	rr := e.do("POST", "/api/v1/search", `{"query":"выборы","mode":"hybrid","k":3,"source":"https://blog.example/"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].URL != "https://blog.example/1" || resp.Items[0].Score != 0.87 {
		t.Errorf("unexpected response %+v", resp)
	}
	if len([]rune(resp.Items[0].Excerpt)) != excerptRunes {
		t.Errorf("excerpt length = %d", len([]rune(resp.Items[0].Excerpt)))
	}
	if resp.Items[0].PublishedAt == nil {
		t.Error("published_at missing")
	}
	got := e.search.last
	if got.Mode() != mode.Hybrid || got.K() != 3 || got.Source() != "https://blog.example/" {
		t.Errorf("request not forwarded: mode=%s k=%d source=%s", got.Mode(), got.K(), got.Source())
	}
}

func TestSearch_Validation(t *testing.T) {
	for _, body := range []string{
		`{"query":""}`,
		`{"query":"q","mode":"keyword"}`,
		`{"query":"q","k":1000}`,
		`{"query":"q","min_score":2}`,
	} {
		e := newTestEnv()
		rr := e.do("POST", "/api/v1/search", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, rr.Code)
		}
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	e := newTestEnv()
	e.search.err = fmt.Errorf("vector search: %w", domain.ErrEmptyIndex)
	rr := e.do("POST", "/api/v1/search", `{"query":"q"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestIngest(t *testing.T) {
	e := newTestEnv()
	e.ingest.report = ingestuc.Report{SourceID: "https://blog.example/", Fetched: 3, Added: 2, Skipped: 1, ProfileUpdated: true}

	rr := e.do("POST", "/api/v1/ingest/blog", `{"url":"https://blog.example/","limit":3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var rep map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep["added"] != float64(2) || rep["profile_updated"] != true {
		t.Errorf("unexpected report %v", rep)
	}
	if e.ingest.lastURL != "https://blog.example/" || e.ingest.lastLimit != 3 {
		t.Errorf("request not forwarded: %+v", e.ingest)
	}

	if rr := e.do("POST", "/api/v1/ingest/blog", `{}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing url: status = %d", rr.Code)
	}

	if rr := e.do("POST", "/api/v1/ingest/news", ""); rr.Code != http.StatusOK {
		t.Errorf("news without body: status = %d", rr.Code)
	}
	if rr := e.do("POST", "/api/v1/ingest/news", `{"limit":7}`); rr.Code != http.StatusOK || e.ingest.lastLimit != 7 {
		t.Errorf("news: status = %d, limit = %d", rr.Code, e.ingest.lastLimit)
	}
}

func TestProfiles(t *testing.T) {
	e := newTestEnv()
	source := "https://blog.example/"
	e.profiles.profiles = map[string]domstyle.Profile{source: {SourceID: source, DocumentCount: 5}}

	rr := e.do("GET", "/api/v1/profiles/"+url.PathEscape(source), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rr.Code)
	}
	var p domstyle.Profile
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.SourceID != source || p.DocumentCount != 5 {
		t.Errorf("unexpected profile %+v", p)
	}

	if rr := e.do("GET", "/api/v1/profiles/unknown", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown: status = %d", rr.Code)
	}

	if rr := e.do("POST", "/api/v1/profiles/"+url.PathEscape(source)+"/analyze", ""); rr.Code != http.StatusOK {
		t.Errorf("analyze: status = %d", rr.Code)
	}
	if e.profiles.analyzed != source {
		t.Errorf("analyzed %q", e.profiles.analyzed)
	}

	rr = e.do("GET", "/api/v1/profiles", "")
	var list ProfileListResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0] != source {
		t.Errorf("list = %v", list.Items)
	}
}

func TestProfiles_AnalyzeInsufficientData(t *testing.T) {
	e := newTestEnv()
	rr := e.do("POST", "/api/v1/profiles/empty/analyze", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestTrends(t *testing.T) {
	e := newTestEnv()
	e.trends.snapshot = trend.Snapshot{
		DocumentCount: 10,
		Trends:        []trend.Trend{{Keyword: "нефть", Count: 5}, {Keyword: "выборы", Count: 3}},
	}

	rr := e.do("GET", "/api/v1/trends?n=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var snap trend.Snapshot
	if err := json.NewDecoder(rr.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Trends) != 1 || snap.Trends[0].Keyword != "нефть" || snap.DocumentCount != 10 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if rr := e.do("GET", "/api/v1/trends?n=x", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad n: status = %d", rr.Code)
	}
	if rr := e.do("POST", "/api/v1/trends/refresh", ""); rr.Code != http.StatusOK || e.trends.refreshes != 1 {
		t.Errorf("refresh: status = %d, refreshes = %d", rr.Code, e.trends.refreshes)
	}
}

func TestTrends_NotConfigured(t *testing.T) {
	srv := NewServer(Deps{Health: &mockHealth{}}, zap.NewNop())
	h := NewRouter(srv, nil, zap.NewNop())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/trends", http.NoBody))
	if rr.Code != http.StatusNotImplemented {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestUsage(t *testing.T) {
	e := newTestEnv()
	rr := e.do("GET", "/api/v1/usage?period=month", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp UsageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Period != "month" || resp.TokensUsed != 900 || !resp.IsExhausted {
		t.Errorf("unexpected usage %+v", resp)
	}
	if rr := e.do("GET", "/api/v1/usage?period=year", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad period: status = %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv()
	rr := e.do("GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", rr.Code)
	}

	e.health.report = healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{"llm": healthuc.CheckError}}
	if rr := e.do("GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("degraded: status = %d", rr.Code)
	}

	e.health.report = healthuc.Report{Status: healthuc.Unhealthy, Checks: map[string]healthuc.CheckResult{"storage": healthuc.CheckError}}
	rr = e.do("GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy: status = %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" || resp.Checks["storage"] != "error" {
		t.Errorf("unexpected health %+v", resp)
	}
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	e := newTestEnv("secret")

	if rr := e.do("GET", "/api/v1/profiles", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rr.Code)
	}
	rr := e.do("GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("health must be exempt: status = %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID missing")
	}
}

func TestRouter_NotFound(t *testing.T) {
	e := newTestEnv()
	rr := e.do("GET", "/api/v1/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeNotFound {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Code != CodeInternalError {
		t.Errorf("code = %s", resp.Code)
	}
}

// --- Mocks ---

type mockIngestor struct {
	report    ingestuc.Report
	err       error
	lastURL   string
	lastLimit int
}

func (m *mockIngestor) IngestBlog(_ context.Context, blogURL string, limit int) (ingestuc.Report, error) {
	m.lastURL, m.lastLimit = blogURL, limit
	return m.report, m.err
}

func (m *mockIngestor) IngestNews(_ context.Context, limit int) (ingestuc.Report, error) {
	m.lastLimit = limit
	return m.report, m.err
}

type mockSearcher struct {
	results []result.Result
	err     error
	last    request.Request
}

func (m *mockSearcher) Search(_ context.Context, req *request.Request) ([]result.Result, error) {
	m.last = *req
	return m.results, m.err
}

type mockProfiles struct {
	profiles map[string]domstyle.Profile
	analyzed string
}

func (m *mockProfiles) Analyze(_ context.Context, sourceID string) (domstyle.Profile, error) {
	m.analyzed = sourceID
	p, ok := m.profiles[sourceID]
	if !ok {
		return domstyle.Profile{}, fmt.Errorf("build profile: %w", domain.ErrInsufficientData)
	}
	return p, nil
}

func (m *mockProfiles) Get(_ context.Context, sourceID string) (domstyle.Profile, error) {
	p, ok := m.profiles[sourceID]
	if !ok {
		return domstyle.Profile{}, fmt.Errorf("load profile: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (m *mockProfiles) List(context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockGenerator struct {
	result generateuc.Result
	err    error
	tokens int
	calls  int
	last   generateuc.Request
}

func (m *mockGenerator) Generate(ctx context.Context, req generateuc.Request) (generateuc.Result, error) {
	m.calls++
	m.last = req
	domain.UsageFromContext(ctx).AddGenerationTokens(m.tokens)
	return m.result, m.err
}

type mockTrends struct {
	snapshot  trend.Snapshot
	refreshes int
}

func (m *mockTrends) Snapshot() trend.Snapshot { return m.snapshot }

func (m *mockTrends) Refresh(context.Context) (trend.Snapshot, error) {
	m.refreshes++
	return m.snapshot, nil
}

type mockUsage struct{}

func (mockUsage) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	return domusage.NewReport(period, 0, 86400000, "openai", 900, 900, 0)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }
