package fetch

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// linkSources are the elements a notice page uses to point at its PDF
var linkSources = []struct {
	selector string
	attr     string
}{
	{"embed[src]", "src"},
	{"iframe[src]", "src"},
	{"object[data]", "data"},
	{"a[href]", "href"},
}

// FindPDFLink returns the absolute URL of the first PDF referenced by an
// HTML page. Embedded viewers win over plain anchors.
func FindPDFLink(base string, html []byte) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, src := range linkSources {
		var found string
		doc.Find(src.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			raw, _ := s.Attr(src.attr)
			ref, err := url.Parse(strings.TrimSpace(raw))
			if err != nil || !strings.EqualFold(path.Ext(ref.Path), ".pdf") {
				return true
			}
			resolved := baseURL.ResolveReference(ref)
			if resolved.Scheme != "http" && resolved.Scheme != "https" {
				return true
			}
			found = resolved.String()
			return false
		})
		if found != "" {
			return found, nil
		}
	}
	return "", fmt.Errorf("no PDF link found")
}
