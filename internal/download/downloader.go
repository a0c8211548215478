// Package download orchestrates the retrieval of annual reports: resolving
// a company's identifier, searching its filings, selecting the target
// year's report, and writing a localized copy under the download root.
//
// Each company runs to one of four terminal states. Failures are isolated
// per company; a batch never aborts because one company broke.
package download

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/seenimoa/edgarfetch/internal/config"
	"github.com/seenimoa/edgarfetch/internal/edgar"
	"github.com/seenimoa/edgarfetch/internal/identity"
	"github.com/seenimoa/edgarfetch/internal/localize"
	"github.com/seenimoa/edgarfetch/pkg/models"
	"github.com/seenimoa/edgarfetch/pkg/utils"
)

// Downloader drives the per-company state machine.
type Downloader struct {
	client    *edgar.Client
	resolver  *identity.Resolver
	localizer *localize.Localizer
	root      string
	overwrite bool
}

// NewDownloader wires the orchestrator to its collaborators.
func NewDownloader(client *edgar.Client, resolver *identity.Resolver, localizer *localize.Localizer, cfg config.DownloadConfig) *Downloader {
	return &Downloader{
		client:    client,
		resolver:  resolver,
		localizer: localizer,
		root:      cfg.Root,
		overwrite: cfg.Overwrite,
	}
}

// DownloadAnnualReport resolves a ticker and downloads its annual report
// for the given year.
func (d *Downloader) DownloadAnnualReport(ctx context.Context, ticker string, year int) models.CompanyResult {
	normalized := utils.NormalizeTicker(ticker)
	company, ok, err := d.resolver.Resolve(ctx, normalized)
	if err != nil {
		return failedResult(models.CompanyIdentity{Ticker: normalized}, fmt.Errorf("resolve %s: %w", normalized, err))
	}
	if !ok {
		log.Printf("download: no registry identifier for %s", normalized)
		return models.CompanyResult{
			Identity: models.CompanyIdentity{Ticker: normalized},
			Status:   models.StatusSkippedNoIdentifier,
		}
	}
	return d.DownloadFiling(ctx, company, models.KindAnnual, year)
}

// DownloadFiling downloads one filing of the given kind for an
// already-resolved company. The existence check sits right after the
// search, since the local path needs the matched filing's year; a re-run
// of a completed year repeats the search but refetches no documents.
func (d *Downloader) DownloadFiling(ctx context.Context, company models.CompanyIdentity, kind models.FilingKind, year int) models.CompanyResult {
	if !company.HasCIK() {
		log.Printf("download: no registry identifier for %s", company.Ticker)
		return models.CompanyResult{Identity: company, Status: models.StatusSkippedNoIdentifier}
	}

	log.Printf("download: %s filing for %s (%d)", kind, company.Ticker, year)

	records, err := d.client.FilingSearch(ctx, company, kind)
	if err != nil {
		return failedResult(company, err)
	}

	filing, ok := SelectForYear(records, year)
	if !ok {
		log.Printf("download: no %s filings for %s in %d", kind, company.Ticker, year)
		return models.CompanyResult{Identity: company, Status: models.StatusSkippedNoMatch}
	}

	localPath := d.filingPath(company, filing)
	if fileExists(localPath) && !d.overwrite {
		log.Printf("download: already exists: %s", localPath)
		filing.LocalPath = localPath
		return downloadedResult(company, filing)
	}

	docURL, ok, err := d.client.PrimaryDocumentURL(ctx, filing.IndexURL)
	if err != nil {
		return failedResult(company, err)
	}
	if !ok {
		docURL = filing.IndexURL
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return failedResult(company, fmt.Errorf("create %s: %w", filepath.Dir(localPath), err))
	}

	// The localizer keys its resource layout off LocalPath, so it is set
	// before the content arrives.
	filing.LocalPath = localPath

	content, contentType, err := d.client.FetchWithContentType(ctx, docURL)
	if err != nil {
		return failedResult(company, err)
	}

	processed := d.localizer.Localize(ctx, content, contentType, docURL, &filing)

	if err := os.WriteFile(localPath, processed, 0644); err != nil {
		return failedResult(company, fmt.Errorf("write %s: %w", localPath, err))
	}

	log.Printf("download: saved %s", localPath)
	return downloadedResult(company, filing)
}

// DownloadMany processes companies sequentially, isolating each company's
// outcome. It stops early only when the context ends.
func (d *Downloader) DownloadMany(ctx context.Context, companies []models.CompanyIdentity, year int) []models.CompanyResult {
	results := make([]models.CompanyResult, 0, len(companies))
	for _, company := range companies {
		if ctx.Err() != nil {
			break
		}
		results = append(results, d.DownloadFiling(ctx, company, models.KindAnnual, year))
	}
	return results
}

// filingPath lays the filing out as root/TICKER/YEAR/TICKER_KIND_YEAR.html.
// The kind keeps its letters only; an amended 10-K/A becomes 10-KA rather
// than picking up a separator underscore.
func (d *Downloader) filingPath(company models.CompanyIdentity, filing models.FilingRecord) string {
	year := strconv.Itoa(filing.FilingYear())
	kind := strings.ReplaceAll(string(filing.Kind), "/", "")
	name := utils.SanitizeFilename(fmt.Sprintf("%s_%s_%s.html", company.Ticker, kind, year))
	return filepath.Join(d.root, company.Ticker, year, name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func failedResult(company models.CompanyIdentity, err error) models.CompanyResult {
	log.Printf("download: %s failed: %v", company.Ticker, err)
	return models.CompanyResult{Identity: company, Status: models.StatusFailed, Err: err}
}

func downloadedResult(company models.CompanyIdentity, filing models.FilingRecord) models.CompanyResult {
	return models.CompanyResult{
		Identity:  company,
		Status:    models.StatusDownloaded,
		Filing:    &filing,
		LocalPath: filing.LocalPath,
	}
}
