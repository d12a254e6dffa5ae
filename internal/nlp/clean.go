package nlp

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText strips HTML markup and entities from raw and collapses whitespace.
// Plain text passes through with only whitespace normalized.
func CleanText(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return collapseSpace(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapseSpace(raw)
	}
	doc.Find("script, style, noscript").Remove()
	// Block elements would otherwise glue adjacent words together.
	doc.Find("p, div, br, li, h1, h2, h3, h4, h5, h6, blockquote").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
