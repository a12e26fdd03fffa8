package normalize

import (
	"bytes"

	"github.com/beevik/etree"
	"github.com/docfed/docfed"
)

// isFeed reports whether an XML payload is an Atom or RSS feed.
func isFeed(payload []byte) bool {
	return bytes.Contains(payload, []byte("<feed")) || bytes.Contains(payload, []byte("<rss"))
}

// normalizeFeed extracts entries from Atom and RSS payloads. Some
// documentation providers publish change feeds rather than search
// APIs; each entry becomes one result.
func (n *Normalizer) normalizeFeed(providerID string, payload []byte) ([]*docfed.Result, int, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(payload); err != nil {
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q payload is not parseable XML: %v", providerID, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q feed has no root element", providerID)
	}

	switch root.Tag {
	case "feed":
		return n.feedEntries(providerID, root.SelectElements("entry"), atomEntry)
	case "rss":
		channel := root.SelectElement("channel")
		if channel == nil {
			return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q RSS feed has no channel", providerID)
		}
		return n.feedEntries(providerID, channel.SelectElements("item"), rssItem)
	default:
		return nil, 0, docfed.Errorf(docfed.EMALFORMED, "provider %q feed root %q is not feed or rss", providerID, root.Tag)
	}
}

// feedEntry is the provider-neutral view of one feed element.
type feedEntry struct {
	title   string
	source  string
	content string
}

func atomEntry(el *etree.Element) feedEntry {
	e := feedEntry{
		title: childText(el, "title"),
	}
	if link := el.SelectElement("link"); link != nil {
		e.source = link.SelectAttrValue("href", "")
	}
	if e.source == "" {
		e.source = childText(el, "id")
	}
	e.content = childText(el, "content")
	if e.content == "" {
		e.content = childText(el, "summary")
	}
	return e
}

func rssItem(el *etree.Element) feedEntry {
	e := feedEntry{
		title:   childText(el, "title"),
		source:  childText(el, "link"),
		content: childText(el, "description"),
	}
	if e.source == "" {
		e.source = childText(el, "guid")
	}
	return e
}

func (n *Normalizer) feedEntries(providerID string, elements []*etree.Element, extract func(*etree.Element) feedEntry) ([]*docfed.Result, int, error) {
	results := make([]*docfed.Result, 0, len(elements))
	dropped := 0

	for _, el := range elements {
		entry := extract(el)
		if entry.source == "" {
			dropped++
			continue
		}

		content := entry.content
		if looksLikeHTML(content) {
			markdown, err := n.toMarkdown(content)
			if err != nil {
				dropped++
				continue
			}
			content = markdown
		}

		technology := n.detectTechnology(entry.title + " " + entry.source + " " + content)

		results = append(results, &docfed.Result{
			Title:      entry.title,
			Source:     entry.source,
			Content:    content,
			ProviderID: providerID,
			Technology: technology,
			Confidence: n.heuristicConfidence(len(content), technology),
		})
	}

	return results, dropped, nil
}

func childText(el *etree.Element, tag string) string {
	if child := el.SelectElement(tag); child != nil {
		return child.Text()
	}
	return ""
}
