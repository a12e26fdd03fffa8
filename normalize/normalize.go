// Package normalize converts heterogeneous provider payloads into the
// canonical result shape. It maps provider-specific field names,
// converts HTML bodies to markdown, classifies technology against a
// vocabulary, and computes a confidence signal.
package normalize

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/docfed/docfed"
)

// Compile-time interface verification.
var _ docfed.Normalizer = (*Normalizer)(nil)

// DefaultVocabulary returns the technologies recognized out of the box.
// Operators extend or replace it through configuration.
func DefaultVocabulary() []string {
	return []string{
		"react", "react-native", "vue", "angular", "svelte", "nextjs",
		"nodejs", "typescript", "javascript", "python", "django",
		"flask", "fastapi", "go", "golang", "rust", "java", "spring",
		"kotlin", "swift", "ruby", "rails", "php", "laravel",
		"kubernetes", "docker", "terraform", "ansible",
		"postgresql", "mysql", "sqlite", "redis", "mongodb",
		"elasticsearch", "kafka", "rabbitmq", "graphql", "grpc",
		"aws", "gcp", "azure",
	}
}

// Normalizer converts provider payloads to canonical results. It
// accepts JSON documents, Atom/RSS feeds, and bare HTML pages.
type Normalizer struct {
	vocabulary []string // most specific (longest) term first
	conv       *converter.Converter
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithVocabulary replaces the default technology vocabulary.
func WithVocabulary(terms []string) Option {
	return func(n *Normalizer) {
		n.vocabulary = terms
	}
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		vocabulary: DefaultVocabulary(),
	}
	for _, opt := range opts {
		opt(n)
	}

	// Longest term first so the most specific match wins
	// (react-native before react).
	sort.Slice(n.vocabulary, func(i, j int) bool {
		if len(n.vocabulary[i]) != len(n.vocabulary[j]) {
			return len(n.vocabulary[i]) > len(n.vocabulary[j])
		}
		return n.vocabulary[i] < n.vocabulary[j]
	})

	n.conv = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	return n
}

// Normalize decodes the payload into zero or more results. The second
// return value counts malformed items dropped from the batch.
func (n *Normalizer) Normalize(providerID string, payload []byte) ([]*docfed.Result, int, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q returned an empty payload", providerID)
	}

	switch {
	case trimmed[0] == '{' || trimmed[0] == '[':
		return n.normalizeJSON(providerID, trimmed)
	case trimmed[0] == '<':
		if isFeed(trimmed) {
			return n.normalizeFeed(providerID, trimmed)
		}
		return n.normalizeHTML(providerID, trimmed)
	default:
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q payload is neither JSON, feed, nor HTML", providerID)
	}
}

// itemKeys are the envelope keys under which providers nest their
// result arrays.
var itemKeys = []string{"results", "items", "hits", "documents", "data", "entries"}

func (n *Normalizer) normalizeJSON(providerID string, payload []byte) ([]*docfed.Result, int, error) {
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q payload is not valid JSON: %v", providerID, err)
	}

	var items []any
	switch v := decoded.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range itemKeys {
			if nested, ok := v[key].([]any); ok {
				items = nested
				break
			}
		}
		if items == nil {
			// A single-item payload with result fields at the top level.
			items = []any{v}
		}
	default:
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q payload has no result items", providerID)
	}

	results := make([]*docfed.Result, 0, len(items))
	dropped := 0
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		result, err := n.itemToResult(providerID, m)
		if err != nil {
			dropped++
			continue
		}
		results = append(results, result)
	}

	return results, dropped, nil
}

// itemToResult maps one provider item onto the canonical shape.
func (n *Normalizer) itemToResult(providerID string, m map[string]any) (*docfed.Result, error) {
	title := firstString(m, "title", "name", "heading")
	source := firstString(m, "url", "link", "href", "source", "id")
	content := firstString(m, "content", "body", "snippet", "text", "description")

	if looksLikeHTML(content) {
		if title == "" {
			title = titleFromHTML(content)
		}
		markdown, err := n.toMarkdown(content)
		if err != nil {
			return nil, err
		}
		content = markdown
	}

	if source == "" {
		return nil, docfed.Errorf(docfed.EMALFORMED, "provider %q item has no source identifier", providerID)
	}

	technology := n.detectTechnology(title + " " + source + " " + content)

	confidence, declared := firstFloat(m, "score", "relevance", "confidence")
	if declared {
		confidence = clamp01(confidence)
	} else {
		confidence = n.heuristicConfidence(len(content), technology)
	}

	return &docfed.Result{
		Title:      strings.TrimSpace(title),
		Source:     strings.TrimSpace(source),
		Content:    content,
		ProviderID: providerID,
		Technology: technology,
		Confidence: confidence,
	}, nil
}

// tokenRe splits classification text into tokens. Hyphens survive so
// compound terms like react-native stay whole.
var tokenRe = regexp.MustCompile(`[a-z0-9]+(?:-[a-z0-9]+)*`)

// detectTechnology matches the text against the vocabulary. The most
// specific (longest) matching term wins; unmatched content is tagged
// generic.
func (n *Normalizer) detectTechnology(text string) string {
	tokens := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		tokens[tok] = true
	}

	for _, term := range n.vocabulary {
		if tokens[term] {
			return term
		}
	}
	return docfed.TechnologyGeneric
}

// heuristicConfidence estimates relevance when the provider declared
// no score: longer content and a recognized technology both raise it.
// The ceiling stays below provider-declared certainty.
func (n *Normalizer) heuristicConfidence(contentLen int, technology string) float64 {
	confidence := 0.25

	lengthFactor := float64(contentLen) / 2000
	if lengthFactor > 1 {
		lengthFactor = 1
	}
	confidence += 0.35 * lengthFactor

	if technology != docfed.TechnologyGeneric {
		confidence += 0.25
	}

	return clamp01(confidence)
}

// toMarkdown converts an HTML fragment to markdown.
func (n *Normalizer) toMarkdown(html string) (string, error) {
	result, err := n.conv.ConvertString(html)
	if err != nil {
		return "", docfed.Errorf(docfed.EMALFORMED, "HTML conversion failed: %v", err)
	}
	return strings.TrimSpace(result), nil
}

var htmlTagRe = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

// looksLikeHTML reports whether the content carries HTML markup.
func looksLikeHTML(s string) bool {
	return htmlTagRe.MatchString(s)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}
