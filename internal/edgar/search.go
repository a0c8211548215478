package edgar

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/edgarfetch/pkg/models"
)

// searchResultLimit caps how many filings one query may return.
const searchResultLimit = 100

var (
	accessionPattern = regexp.MustCompile(`\d{10}-\d{2}-\d{6}`)
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// FilingSearch queries the registry for a company's filings of the given
// kind and returns them as normalized records. It fails closed: a company
// without a registry identifier yields an empty list, and parse problems
// degrade to however many records could be read, never an error. Only the
// search request itself failing is reported to the caller.
func (c *Client) FilingSearch(ctx context.Context, company models.CompanyIdentity, kind models.FilingKind) ([]models.FilingRecord, error) {
	if !company.HasCIK() {
		log.Printf("edgar: search skipped for %s, no registry identifier", company.Ticker)
		return nil, nil
	}

	params := url.Values{}
	params.Set("action", "getcompany")
	params.Set("CIK", company.CIK)
	params.Set("type", string(kind))
	params.Set("dateb", "")
	params.Set("datea", "")
	params.Set("owner", "exclude")
	params.Set("output", "xml")
	params.Set("count", strconv.Itoa(searchResultLimit))

	body, err := c.Fetch(ctx, c.searchURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("edgar: filing search for %s: %w", company.Ticker, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Printf("edgar: unreadable search response for %s: %v", company.Ticker, err)
		return nil, nil
	}

	return c.parseFilings(doc, company), nil
}

// parseFilings reads the structured response shape, falling back to row
// scanning when the response carries no filing elements at all. A response
// whose filing elements are all malformed does not re-trigger the fallback;
// it simply yields fewer records.
func (c *Client) parseFilings(doc *goquery.Document, company models.CompanyIdentity) []models.FilingRecord {
	elems := doc.Find("filing")
	if elems.Length() == 0 {
		log.Printf("edgar: no filing elements for %s, falling back to tabular parse", company.Ticker)
		return c.parseTabularFilings(doc, company)
	}

	var records []models.FilingRecord
	elems.Each(func(_ int, sel *goquery.Selection) {
		if rec, ok := parseFilingElement(sel, company); ok {
			records = append(records, rec)
		}
	})
	return records
}

// parseFilingElement reads one structured filing element. Elements missing
// a filed date or document link, or whose link carries no recognizable
// accession number, are dropped rather than guessed at.
func parseFilingElement(sel *goquery.Selection, company models.CompanyIdentity) (models.FilingRecord, bool) {
	dateText := strings.TrimSpace(sel.Find("datefiled").First().Text())
	href := strings.TrimSpace(sel.Find("filinghref").First().Text())
	if dateText == "" || href == "" {
		log.Printf("edgar: dropping filing element without date or link for %s", company.Ticker)
		return models.FilingRecord{}, false
	}

	filedOn, err := time.Parse("2006-01-02", dateText)
	if err != nil {
		log.Printf("edgar: dropping filing element with bad date %q for %s", dateText, company.Ticker)
		return models.FilingRecord{}, false
	}

	accession := accessionPattern.FindString(href)
	if accession == "" {
		log.Printf("edgar: dropping filing element, no accession number in %s", href)
		return models.FilingRecord{}, false
	}

	kindText := strings.TrimSpace(sel.Find("type").First().Text())

	return models.FilingRecord{
		AccessionNumber: accession,
		Kind:            models.KindOrDefault(kindText),
		FiledOn:         filedOn,
		CompanyName:     company.Name,
		CompanyCIK:      company.CIK,
		IndexURL:        href,
		IndexFileName:   lastPathSegment(href),
	}, true
}

// parseTabularFilings scans generic row markup: any row with at least three
// cells, a literal YYYY-MM-DD date in the second, and a hyperlink in the
// third is treated as one filing. The kind is read from the first cell when
// it names a known form type.
func (c *Client) parseTabularFilings(doc *goquery.Document, company models.CompanyIdentity) []models.FilingRecord {
	var records []models.FilingRecord
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(1).Text())
		if !isoDatePattern.MatchString(dateText) {
			return
		}
		filedOn, err := time.Parse("2006-01-02", dateText)
		if err != nil {
			return
		}

		href, ok := cells.Eq(2).Find("a[href]").First().Attr("href")
		if !ok || href == "" {
			return
		}
		docURL := c.absoluteURL(href)

		accession := accessionPattern.FindString(docURL)
		if accession == "" {
			accession = fmt.Sprintf("unknown-%d", len(records))
		}

		records = append(records, models.FilingRecord{
			AccessionNumber: accession,
			Kind:            models.KindOrDefault(strings.TrimSpace(cells.Eq(0).Text())),
			FiledOn:         filedOn,
			CompanyName:     company.Name,
			CompanyCIK:      company.CIK,
			IndexURL:        docURL,
			IndexFileName:   lastPathSegment(docURL),
		})
	})
	return records
}

func lastPathSegment(rawURL string) string {
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		return rawURL[i+1:]
	}
	return rawURL
}
