package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	dombatch "github.com/kailas-cloud/trendoscope/internal/domain/batch"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	domstyle "github.com/kailas-cloud/trendoscope/internal/domain/style"
	"github.com/kailas-cloud/trendoscope/internal/repository/profile"
)

const blog = "https://author.example/"

func makeDocs(t *testing.T, source string, urls ...string) []domdoc.Document {
	t.Helper()
	out := make([]domdoc.Document, len(urls))
	for i, u := range urls {
		d, err := domdoc.New(u, "t", "текст "+u, time.Time{}, source)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		out[i] = d
	}
	return out
}

type fixture struct {
	blogs *mockBlogs
	news  *mockNews
	store *mockStore
	style *mockStyle
	meta  *mockMeta
	svc   *Service
}

func newFixture() *fixture {
	f := &fixture{
		blogs: &mockBlogs{},
		news:  &mockNews{},
		store: newMockStore(),
		style: &mockStyle{},
		meta:  &mockMeta{},
	}
	f.svc = New(f.blogs, f.news, mockEnricher{}, f.store, f.style, f.meta, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestIngestBlog(t *testing.T) {
	f := newFixture()
	f.blogs.docs = makeDocs(t, blog, blog+"1.html", blog+"2.html", blog+"1.html")
	f.store.add(makeDocs(t, blog, blog+"2.html")...)

	rep, err := f.svc.IngestBlog(context.Background(), blog, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.SourceID != blog || rep.Fetched != 3 || rep.Added != 1 || rep.Skipped != 2 {
		t.Errorf("unexpected report %+v", rep)
	}
	if !rep.ProfileUpdated || f.style.calls != 1 || f.style.lastSource != blog {
		t.Errorf("profile not rebuilt: %+v", f.style)
	}
	if got := dombatch.Count(rep.Items, dombatch.StatusDuplicate); got != 2 {
		t.Errorf("duplicates = %d", got)
	}
	if len(f.store.enriched) != 1 || !f.store.enriched[0] {
		t.Error("added documents must be enriched")
	}

	m := f.meta.saved[blog]
	if m.DocumentCount != 2 || len(m.URLs) != 2 {
		t.Errorf("metadata = %+v", m)
	}
	if !m.SavedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("SavedAt = %v", m.SavedAt)
	}
	if f.blogs.lastLimit != 10 {
		t.Errorf("limit = %d", f.blogs.lastLimit)
	}
}

func TestIngestBlog_NoDocuments(t *testing.T) {
	f := newFixture()

	rep, err := f.svc.IngestBlog(context.Background(), blog, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.ProfileUpdated || f.style.calls != 0 {
		t.Error("profile must not be rebuilt without documents")
	}
	if f.blogs.lastLimit != DefaultLimit {
		t.Errorf("limit = %d, want default", f.blogs.lastLimit)
	}
}

func TestIngestBlog_ScrapeError(t *testing.T) {
	f := newFixture()
	f.blogs.err = fmt.Errorf("index: %w", domain.ErrProvider)

	_, err := f.svc.IngestBlog(context.Background(), blog, 5)
	if !errors.Is(err, domain.ErrProvider) {
		t.Errorf("expected ErrProvider, got %v", err)
	}
	if len(f.meta.saved) != 0 {
		t.Error("metadata must not be written on failure")
	}
}

func TestIngestBlog_StoreError(t *testing.T) {
	f := newFixture()
	f.blogs.docs = makeDocs(t, blog, blog+"1.html")
	f.store.addErr = domain.ErrProvider

	rep, err := f.svc.IngestBlog(context.Background(), blog, 5)
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if dombatch.Count(rep.Items, dombatch.StatusError) != 1 {
		t.Errorf("items = %+v", rep.Items)
	}
	if f.style.calls != 0 {
		t.Error("profile must not be rebuilt after a failed add")
	}
}

func TestIngestBlog_StyleError(t *testing.T) {
	f := newFixture()
	f.blogs.docs = makeDocs(t, blog, blog+"1.html")
	f.style.err = domain.ErrInsufficientData

	_, err := f.svc.IngestBlog(context.Background(), blog, 5)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestIngestNews(t *testing.T) {
	f := newFixture()
	f.news.docs = makeDocs(t, "lenta", "https://news.example/a", "https://news.example/b")

	rep, err := f.svc.IngestNews(context.Background(), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.SourceID != NewsSourceID || rep.Added != 2 || rep.Skipped != 0 || rep.ProfileUpdated {
		t.Errorf("unexpected report %+v", rep)
	}
	if f.news.lastLimit != MaxLimit {
		t.Errorf("limit = %d, want clamp to %d", f.news.lastLimit, MaxLimit)
	}
	if f.style.calls != 0 {
		t.Error("news ingest must not rebuild profiles")
	}
	if m := f.meta.saved[NewsSourceID]; m.DocumentCount != 2 {
		t.Errorf("metadata = %+v", m)
	}
}

func TestIngestNews_NotConfigured(t *testing.T) {
	f := newFixture()
	svc := New(f.blogs, nil, mockEnricher{}, f.store, f.style, f.meta, zap.NewNop())
	if _, err := svc.IngestNews(context.Background(), 5); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{-1, DefaultLimit}, {0, DefaultLimit}, {7, 7}, {MaxLimit + 1, MaxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// --- Mocks ---

type mockBlogs struct {
	docs      []domdoc.Document
	err       error
	lastLimit int
}

func (m *mockBlogs) Scrape(_ context.Context, _ string, limit int) ([]domdoc.Document, error) {
	m.lastLimit = limit
	return m.docs, m.err
}

type mockNews struct {
	docs      []domdoc.Document
	err       error
	lastLimit int
}

func (m *mockNews) Fetch(_ context.Context, limit int) ([]domdoc.Document, error) {
	m.lastLimit = limit
	return m.docs, m.err
}

type mockEnricher struct{}

func (mockEnricher) Enrich(doc domdoc.Document) domdoc.Document {
	return doc.WithAnalysis(domdoc.Analysis{Keywords: []string{"enriched"}})
}

type mockStore struct {
	docs     []domdoc.Document
	urls     map[string]struct{}
	addErr   error
	enriched []bool
}

func newMockStore() *mockStore { return &mockStore{urls: map[string]struct{}{}} }

func (m *mockStore) add(docs ...domdoc.Document) {
	for _, d := range docs {
		m.docs = append(m.docs, d)
		m.urls[d.URL()] = struct{}{}
	}
}

func (m *mockStore) Add(_ context.Context, docs []domdoc.Document) (int, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	for i := range docs {
		m.enriched = append(m.enriched, len(docs[i].Keywords()) > 0)
	}
	m.add(docs...)
	return len(docs), nil
}

func (m *mockStore) Contains(url string) bool {
	_, ok := m.urls[url]
	return ok
}

func (m *mockStore) DocumentsBySource(source string) []domdoc.Document {
	var out []domdoc.Document
	for _, d := range m.docs {
		if d.Source() == source {
			out = append(out, d)
		}
	}
	return out
}

type mockStyle struct {
	err        error
	calls      int
	lastSource string
}

func (m *mockStyle) Analyze(_ context.Context, sourceID string) (domstyle.Profile, error) {
	m.calls++
	m.lastSource = sourceID
	if m.err != nil {
		return domstyle.Profile{}, m.err
	}
	return domstyle.Profile{SourceID: sourceID}, nil
}

type mockMeta struct {
	saved map[string]profile.Metadata
}

func (m *mockMeta) SaveMetadata(_ context.Context, md profile.Metadata) error {
	if m.saved == nil {
		m.saved = map[string]profile.Metadata{}
	}
	m.saved[md.SourceID] = md
	return nil
}
