package download

import (
	"context"
	"log"
	"time"

	"github.com/seenimoa/edgarfetch/internal/config"
	"github.com/seenimoa/edgarfetch/internal/infra"
	"github.com/seenimoa/edgarfetch/internal/progress"
	"github.com/seenimoa/edgarfetch/pkg/models"
)

const (
	defaultDailyLimit      = 240
	defaultCallsPerCompany = 3
)

// BatchSummary reports what one batch session accomplished.
type BatchSummary struct {
	Processed     int
	Downloaded    int
	Skipped       int
	Failed        int
	FailedTickers []string
	LimitReached  bool
	NextIndex     int
}

// BatchRunner walks the company list with a persisted checkpoint and a
// daily call budget, so multi-day runs resume where they stopped. Each
// company is charged a flat per-company call estimate against the budget.
type BatchRunner struct {
	downloader      *Downloader
	companiesCSV    string
	progressPath    string
	dailyLimit      int
	callsPerCompany int
}

// NewBatchRunner builds a runner from the batch settings.
func NewBatchRunner(d *Downloader, cfg config.BatchConfig) *BatchRunner {
	limit := cfg.DailyLimit
	if limit <= 0 {
		limit = defaultDailyLimit
	}
	calls := cfg.CallsPerCompany
	if calls <= 0 {
		calls = defaultCallsPerCompany
	}
	return &BatchRunner{
		downloader:      d,
		companiesCSV:    cfg.CompaniesCSV,
		progressPath:    cfg.ProgressPath,
		dailyLimit:      limit,
		callsPerCompany: calls,
	}
}

// Run processes companies from the checkpointed position until the list
// ends or the daily budget runs out. The checkpoint advances and persists
// after every company, failures included; failed tickers are reported in
// the summary for a later retry instead of wedging the scan.
func (b *BatchRunner) Run(ctx context.Context, year int) (*BatchSummary, error) {
	return b.run(ctx, year, -1, -1)
}

// RunRange replaces the checkpointed start with an explicit half-open
// index range [start, end). Negative bounds fall back to the checkpoint
// position and the list end. Progress still records every company, so
// the checkpoint follows a manual re-run.
func (b *BatchRunner) RunRange(ctx context.Context, year, start, end int) (*BatchSummary, error) {
	return b.run(ctx, year, start, end)
}

func (b *BatchRunner) run(ctx context.Context, year, startOverride, endOverride int) (*BatchSummary, error) {
	companies, err := ReadCompaniesCSV(b.companiesCSV)
	if err != nil {
		return nil, err
	}

	cp := progress.Load(b.progressPath)
	budget := infra.NewDailyBudget(b.dailyLimit)
	budget.Restore(cp.LastProcessedDate, cp.DailyAPICalls)
	cp.ResetForDay(time.Now())

	start := cp.LastProcessedIndex + 1
	if startOverride >= 0 {
		start = startOverride
	}
	if start < 0 {
		start = 0
	}
	end := len(companies)
	if endOverride >= 0 && endOverride < end {
		end = endOverride
	}

	summary := &BatchSummary{NextIndex: start}
	if start >= end {
		log.Printf("download: batch already complete, %d companies processed", cp.TotalCompaniesProcessed)
		return summary, nil
	}

	log.Printf("download: batch resuming at index %d of %d, %d calls used today", start, len(companies), cp.DailyAPICalls)

	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !budget.Allow(b.callsPerCompany) {
			_, used := budget.Snapshot()
			log.Printf("download: daily call budget reached (%d/%d), resume at index %d", used, b.dailyLimit, i)
			summary.LimitReached = true
			break
		}

		company := companies[i]
		res := b.downloader.DownloadAnnualReport(ctx, company.Ticker, year)

		summary.Processed++
		switch res.Status {
		case models.StatusDownloaded:
			summary.Downloaded++
		case models.StatusFailed:
			summary.Failed++
			summary.FailedTickers = append(summary.FailedTickers, company.Ticker)
		default:
			summary.Skipped++
		}

		budget.Spend(b.callsPerCompany)
		cp.Record(i, company.Ticker, b.callsPerCompany, time.Now())
		if err := cp.Save(b.progressPath); err != nil {
			log.Printf("download: %v", err)
		}
		summary.NextIndex = i + 1
	}

	return summary, nil
}
