package document

import (
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/trendoscope/internal/domain/sentiment"
)

func TestNew_Valid(t *testing.T) {
	pub := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	doc, err := New("https://author.livejournal.com/1.html", "  Заголовок ", "текст поста", pub, "author")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.URL() != "https://author.livejournal.com/1.html" {
		t.Errorf("URL() = %q", doc.URL())
	}
	if doc.Title() != "Заголовок" {
		t.Errorf("Title() = %q", doc.Title())
	}
	if doc.Published().Location() != time.UTC {
		t.Errorf("Published() should be UTC, got %v", doc.Published().Location())
	}
	if doc.TextPlain() != "текст поста" {
		t.Errorf("TextPlain() should fall back to raw text, got %q", doc.TextPlain())
	}
	if doc.Length() != 11 {
		t.Errorf("Length() = %d, want 11 runes", doc.Length())
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		url  string
		text string
		want string
	}{
		{"empty url", "", "x", "URL is required"},
		{"relative url", "/post/1", "x", "absolute"},
		{"ftp url", "ftp://host/x", "x", "absolute"},
		{"empty text", "https://a.b/1", "   ", "text is required"},
		{"too large", "https://a.b/1", strings.Repeat("a", MaxTextSize+1), "too large"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.url, "", tc.text, time.Time{}, "")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWithAnalysis_ClonesSlices(t *testing.T) {
	doc, _ := New("https://a.b/1", "", "text", time.Time{}, "")
	kw := []string{"ai", "go"}

	enriched := doc.WithAnalysis(Analysis{Keywords: kw, Sentiment: sentiment.FromScore(0.5)})
	kw[0] = "mutated"

	if enriched.Keywords()[0] != "ai" {
		t.Error("keyword mutation leaked into document")
	}
	if doc.Keywords() != nil {
		t.Error("original document must stay unenriched")
	}
	if enriched.Sentiment().Label != sentiment.Positive {
		t.Errorf("unexpected sentiment %+v", enriched.Sentiment())
	}
}

func TestWithTextPlain(t *testing.T) {
	doc, _ := New("https://a.b/1", "", "<p>text</p>", time.Time{}, "")
	clean := doc.WithTextPlain("text")
	if clean.TextPlain() != "text" || clean.Text() != "<p>text</p>" {
		t.Errorf("unexpected texts %q / %q", clean.Text(), clean.TextPlain())
	}
}
