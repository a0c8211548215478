package edgar

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// inlineViewerMarker identifies links that open a document in the
// registry's inline viewer; the path after the marker is the document
// itself.
const inlineViewerMarker = "/ix?doc="

// PrimaryDocumentURL fetches a filing's index page and extracts the
// canonical primary-document URL: the first inline-viewer link whose anchor
// text is not an exhibit. ok is false when no such link exists, in which
// case callers treat the index page itself as the document.
func (c *Client) PrimaryDocumentURL(ctx context.Context, indexURL string) (string, bool, error) {
	body, err := c.Fetch(ctx, indexURL)
	if err != nil {
		return "", false, fmt.Errorf("edgar: fetch index page %s: %w", indexURL, err)
	}

	docURL, ok := c.primaryDocumentLink(body)
	if !ok {
		log.Printf("edgar: no primary document link on %s, index page will serve as the document", indexURL)
	}
	return docURL, ok, nil
}

// primaryDocumentLink scans index-page hyperlinks for the first
// inline-viewer target that is not labeled as an exhibit.
func (c *Client) primaryDocumentLink(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !strings.Contains(href, inlineViewerMarker) {
			return true
		}
		text := strings.ToLower(strings.TrimSpace(link.Text()))
		if strings.Contains(text, "exhibit") {
			return true
		}
		_, path, _ := strings.Cut(href, inlineViewerMarker)
		found = c.absoluteURL(path)
		return false
	})
	return found, found != ""
}
