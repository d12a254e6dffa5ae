package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/mode"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/request"
	"github.com/kailas-cloud/trendoscope/internal/domain/search/result"
)

// --- Mocks ---

type mockIndex struct {
	docs     []domdoc.Document
	scores   []float64
	err      error
	lastK    int
	filtered bool
}

func (m *mockIndex) SearchFiltered(
	_ context.Context, _ string, k int, keep func(*domdoc.Document) bool,
) ([]result.Result, error) {
	m.lastK = k
	m.filtered = keep != nil
	if m.err != nil {
		return nil, m.err
	}
	var out []result.Result
	for i := range m.docs {
		if keep != nil && !keep(&m.docs[i]) {
			continue
		}
		out = append(out, result.New(m.docs[i], m.scores[i]))
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (m *mockIndex) Documents() []domdoc.Document { return m.docs }

func doc(url, source, title string, keywords ...string) domdoc.Document {
	return domdoc.Reconstruct(url, title, "text", "", time.Time{}, source, domdoc.Analysis{Keywords: keywords})
}

func newRequest(t *testing.T, q string, m mode.Mode, k int, minScore float64, source string) *request.Request {
	t.Helper()
	r, err := request.New(q, m, k, minScore, source)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

// --- Tests ---

func TestSearch_Semantic(t *testing.T) {
	idx := &mockIndex{
		docs:   []domdoc.Document{doc("https://a/1", "blog", ""), doc("https://a/2", "blog", "")},
		scores: []float64{0.9, 0.4},
	}
	svc := New(idx)

	got, err := svc.Search(context.Background(), newRequest(t, "нефть", "", 5, 0, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || idx.lastK != 5 || idx.filtered {
		t.Errorf("unexpected call: results=%d k=%d filtered=%v", len(got), idx.lastK, idx.filtered)
	}
}

func TestSearch_MinScoreFilter(t *testing.T) {
	idx := &mockIndex{
		docs:   []domdoc.Document{doc("https://a/1", "blog", ""), doc("https://a/2", "blog", "")},
		scores: []float64{0.9, 0.4},
	}
	got, err := New(idx).Search(context.Background(), newRequest(t, "q", "", 5, 0.5, ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Score() != 0.9 {
		t.Errorf("expected only the 0.9 hit, got %v", got)
	}
}

func TestSearch_SourceFilter(t *testing.T) {
	idx := &mockIndex{
		docs:   []domdoc.Document{doc("https://a/1", "blog", ""), doc("https://n/1", "lenta", "")},
		scores: []float64{0.9, 0.8},
	}
	got, err := New(idx).Search(context.Background(), newRequest(t, "q", "", 5, 0, "lenta"))
	if err != nil {
		t.Fatal(err)
	}
	if !idx.filtered || len(got) != 1 {
		t.Fatalf("expected filtered search with 1 hit, got %d", len(got))
	}
	d := got[0].Document()
	if d.Source() != "lenta" {
		t.Errorf("unexpected source %q", d.Source())
	}
}

func TestSearch_Hybrid(t *testing.T) {
	idx := &mockIndex{
		docs: []domdoc.Document{
			doc("https://a/1", "blog", "Погода", "дождь"),
			doc("https://a/2", "blog", "Рынок", "нефть", "цены"),
		},
		scores: []float64{0.6, 0.5},
	}
	got, err := New(idx).Search(context.Background(), newRequest(t, "цены на нефть", mode.Hybrid, 5, 0, ""))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	first := got[0].Document()
	if first.URL() != "https://a/2" {
		t.Errorf("keyword match must lift the oil document, got %s", first.URL())
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := &mockIndex{err: domain.ErrEmptyIndex}
	_, err := New(idx).Search(context.Background(), newRequest(t, "q", "", 5, 0, ""))
	if !errors.Is(err, domain.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestRankByKeywords(t *testing.T) {
	docs := []domdoc.Document{
		doc("https://x/1", "s", "", "футбол"),
		doc("https://x/2", "s", "", "нефть", "цены"),
		doc("https://x/3", "s", "Нефть дешевеет"),
	}
	got := rankByKeywords(docs, "цены на нефть", 10, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if u := urls(got); u[0] != "https://x/2" || u[1] != "https://x/3" {
		t.Errorf("unexpected order: %v", u)
	}
	if got[0].Score() != 1 || got[1].Score() != 0.5 {
		t.Errorf("unexpected scores: %v %v", got[0].Score(), got[1].Score())
	}
	if rankByKeywords(docs, "и на", 10, nil) != nil {
		t.Error("stopword-only query must not match")
	}
}
