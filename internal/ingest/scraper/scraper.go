// Package scraper fetches blog posts from an index page and extracts their title, body and
// publish time with CSS selectors.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/trendoscope/internal/domain"
	domdoc "github.com/kailas-cloud/trendoscope/internal/domain/document"
)

// maxPageSize caps how much of a single page is read.
const maxPageSize = 5 << 20

// Default selectors match LiveJournal markup and common blog themes.
var (
	DefaultLinkSelectors = []string{"a.subj-link", ".entry-title a", "article h2 a"}
	DefaultBodySelectors = []string{".b-singlepost-body", ".entry-content", "article", "main"}
)

var (
	titleSelectors = []string{"h1.entry-title", ".b-singlepost-title", ".entry-title", "article h1", "h1"}
	noiseSelector  = "script, style, noscript, nav, footer, header, aside, form, iframe"
	timeLayouts    = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// Config holds scraper settings.
type Config struct {
	UserAgent     string
	RPS           float64
	Burst         int
	Timeout       time.Duration
	LinkSelectors []string
	BodySelectors []string
}

// Scraper downloads blog pages. Requests share one rate limiter.
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     Config
	logger  *zap.Logger
}

// New creates a scraper. Empty selector lists fall back to the defaults.
func New(cfg Config, logger *zap.Logger) *Scraper {
	if len(cfg.LinkSelectors) == 0 {
		cfg.LinkSelectors = DefaultLinkSelectors
	}
	if len(cfg.BodySelectors) == 0 {
		cfg.BodySelectors = DefaultBodySelectors
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	return &Scraper{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		cfg:     cfg,
		logger:  logger,
	}
}

// Scrape fetches up to limit posts linked from blogURL, in page order.
// An unreachable index page is a provider error; a failing post is logged and skipped.
func (s *Scraper) Scrape(ctx context.Context, blogURL string, limit int) ([]domdoc.Document, error) {
	base, err := url.Parse(blogURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("blog url %q must be an absolute http(s) URL: %w", blogURL, domain.ErrInvalidArgument)
	}

	index, err := s.fetch(ctx, blogURL)
	if err != nil {
		return nil, fmt.Errorf("fetch blog index: %w: %w", domain.ErrProvider, err)
	}

	links := s.postLinks(index, base)
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	s.logger.Info("blog index scraped", zap.String("blog", blogURL), zap.Int("posts", len(links)))

	docs := make([]domdoc.Document, 0, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // context error
		}
		doc, err := s.scrapePost(ctx, link, blogURL)
		if err != nil {
			s.logger.Warn("skip post", zap.String("url", link), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Scraper) scrapePost(ctx context.Context, postURL, source string) (domdoc.Document, error) {
	page, err := s.fetch(ctx, postURL)
	if err != nil {
		return domdoc.Document{}, err
	}

	body := s.body(page)
	if body == "" {
		return domdoc.Document{}, fmt.Errorf("no post body found")
	}

	doc, err := domdoc.New(postURL, title(page), body, published(page), source)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}

func (s *Scraper) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d", pageURL, resp.StatusCode)
	}

	page, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	page.Url = resp.Request.URL
	return page, nil
}

// postLinks collects same-host links matched by the link selectors, deduplicated, in page order.
func (s *Scraper) postLinks(page *goquery.Document, base *url.URL) []string {
	if page.Url != nil {
		base = page.Url
	}
	seen := map[string]struct{}{base.String(): {}}
	var links []string

	for _, sel := range s.cfg.LinkSelectors {
		page.Find(sel).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			u, err := base.Parse(strings.TrimSpace(href))
			if err != nil || u.Host != base.Host {
				return
			}
			u.Fragment = ""
			abs := u.String()
			if _, dup := seen[abs]; dup {
				return
			}
			seen[abs] = struct{}{}
			links = append(links, abs)
		})
	}
	return links
}

// body returns the inner HTML of the first non-empty body selector, noise removed.
func (s *Scraper) body(page *goquery.Document) string {
	page.Find(noiseSelector).Remove()
	for _, sel := range s.cfg.BodySelectors {
		node := page.Find(sel).First()
		if node.Length() == 0 || strings.TrimSpace(node.Text()) == "" {
			continue
		}
		html, err := node.Html()
		if err == nil && strings.TrimSpace(html) != "" {
			return strings.TrimSpace(html)
		}
	}
	return ""
}

func title(page *goquery.Document) string {
	for _, sel := range titleSelectors {
		if t := strings.TrimSpace(page.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	if t, ok := page.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(page.Find("title").First().Text())
}

// published returns the first parseable publish time, zero if none.
func published(page *goquery.Document) time.Time {
	var candidates []string
	if v, ok := page.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, v)
	}
	if abbr := page.Find("abbr.datetime").First(); abbr.Length() > 0 {
		if v, ok := abbr.Attr("title"); ok {
			candidates = append(candidates, v)
		}
		candidates = append(candidates, abbr.Text())
	}
	if v, ok := page.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}

	for _, c := range candidates {
		if t, ok := parseTime(c); ok {
			return t
		}
	}
	return time.Time{}
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
