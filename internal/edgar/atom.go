package edgar

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/edgarfetch/pkg/models"
)

const defaultFeedLimit = 20

// RecentFilings reads the registry's syndication feed for a company and
// returns its latest filings, newest first as the feed orders them. The
// feed is fetched through the shared rate-limited client and cached
// briefly, so polling loops stay polite.
func (c *Client) RecentFilings(ctx context.Context, cik string, kind models.FilingKind, limit int) ([]models.FilingRecord, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > searchResultLimit {
		limit = searchResultLimit
	}

	cacheKey := fmt.Sprintf("atom:%s:%s:%d", cik, kind, limit)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]models.FilingRecord), nil
	}

	params := url.Values{}
	params.Set("action", "getcompany")
	params.Set("CIK", cik)
	params.Set("type", string(kind))
	params.Set("dateb", "")
	params.Set("owner", "exclude")
	params.Set("output", "atom")
	params.Set("count", strconv.Itoa(limit))

	parser := gofeed.NewParser()
	parser.Client = c.httpClient
	parser.UserAgent = c.userAgent

	feed, err := parser.ParseURLWithContext(c.searchURL+"?"+params.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("edgar: recent filings feed for %s: %w", cik, err)
	}

	records := make([]models.FilingRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		rec, ok := feedItemToRecord(item, cik)
		if !ok {
			log.Printf("edgar: skipping feed entry %q, missing date or accession number", item.Title)
			continue
		}
		records = append(records, rec)
		if len(records) == limit {
			break
		}
	}

	c.cache.Set(cacheKey, records)
	return records, nil
}

// feedItemToRecord maps one feed entry onto a filing record. The accession
// number comes from the entry id (or the link as a fallback) and the kind
// from the form-type category.
func feedItemToRecord(item *gofeed.Item, cik string) (models.FilingRecord, bool) {
	accession := accessionPattern.FindString(item.GUID)
	if accession == "" {
		accession = accessionPattern.FindString(item.Link)
	}
	if accession == "" {
		return models.FilingRecord{}, false
	}

	filedOn := item.UpdatedParsed
	if filedOn == nil {
		filedOn = item.PublishedParsed
	}
	if filedOn == nil {
		return models.FilingRecord{}, false
	}

	kindText := ""
	if len(item.Categories) > 0 {
		kindText = item.Categories[0]
	}

	return models.FilingRecord{
		AccessionNumber: accession,
		Kind:            models.KindOrDefault(kindText),
		FiledOn:         *filedOn,
		CompanyName:     companyFromFeedTitle(item.Title),
		CompanyCIK:      cik,
		IndexURL:        item.Link,
		IndexFileName:   lastPathSegment(item.Link),
	}, true
}

// companyFromFeedTitle extracts the company name from an entry title of the
// form "10-K  - Apple Inc.  (0000320193)  (Filer)".
func companyFromFeedTitle(title string) string {
	if _, after, ok := strings.Cut(title, " - "); ok {
		name := after
		if i := strings.Index(name, " ("); i >= 0 {
			name = name[:i]
		}
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(title)
}
