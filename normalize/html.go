package normalize

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/docfed/docfed"
)

// normalizeHTML treats the whole payload as one HTML document. The
// source identifier is recovered from the canonical link or og:url
// meta tag; a page without one cannot be cached and is dropped.
func (n *Normalizer) normalizeHTML(providerID string, payload []byte) ([]*docfed.Result, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q payload is not parseable HTML: %v", providerID, err)
	}

	source := canonicalURL(doc)
	if source == "" {
		return nil, 1, nil
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	markdown, err := n.toMarkdown(string(payload))
	if err != nil {
		return nil, 1, nil
	}

	technology := n.detectTechnology(title + " " + source + " " + markdown)

	return []*docfed.Result{{
		Title:      title,
		Source:     source,
		Content:    markdown,
		ProviderID: providerID,
		Technology: technology,
		Confidence: n.heuristicConfidence(len(markdown), technology),
	}}, 0, nil
}

// titleFromHTML recovers a title from an HTML fragment: the <title>
// element if present, else the first heading.
func titleFromHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1, h2").First().Text())
}

// canonicalURL extracts the page's canonical location.
func canonicalURL(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && href != "" {
		return href
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && content != "" {
		return content
	}
	return ""
}
