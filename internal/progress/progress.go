// Package progress persists batch-run checkpoints so an interrupted run
// resumes at the company after the last one it finished.
package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const dayFormat = "2006-01-02"

// CompanyEntry is one processed company in the checkpoint history.
type CompanyEntry struct {
	Index     int    `json:"index"`
	Ticker    string `json:"ticker"`
	Timestamp string `json:"timestamp"`
}

// Checkpoint is the persisted state of a batch run. LastProcessedIndex is
// -1 before any company has been processed; iteration resumes at the next
// index.
type Checkpoint struct {
	LastProcessedIndex      int            `json:"last_processed_index"`
	LastProcessedDate       string         `json:"last_processed_date"`
	DailyAPICalls           int            `json:"daily_api_calls"`
	TotalCompaniesProcessed int            `json:"total_companies_processed"`
	Companies               []CompanyEntry `json:"companies"`
}

// NewCheckpoint returns the state of a run that has not started.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{LastProcessedIndex: -1}
}

// Load reads a checkpoint from disk. A missing or unreadable file yields a
// fresh checkpoint rather than an error; the downloads themselves are
// idempotent, so starting over is safe.
func Load(path string) *Checkpoint {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("progress: cannot read checkpoint at %s: %v, starting fresh", path, err)
		}
		return NewCheckpoint()
	}

	cp := NewCheckpoint()
	if err := json.Unmarshal(data, cp); err != nil {
		log.Printf("progress: corrupt checkpoint at %s: %v, starting fresh", path, err)
		return NewCheckpoint()
	}
	return cp
}

// Save writes the checkpoint to disk, creating parent directories as
// needed.
func (c *Checkpoint) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("progress: encode checkpoint: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("progress: create checkpoint directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("progress: write checkpoint: %w", err)
	}
	return nil
}

// ResetForDay zeroes the daily call counter when the checkpoint was last
// written on a different calendar day.
func (c *Checkpoint) ResetForDay(now time.Time) {
	day := now.Format(dayFormat)
	if c.LastProcessedDate != day {
		c.DailyAPICalls = 0
		c.LastProcessedDate = day
	}
}

// Record marks one company as processed, charging its API calls against
// the daily counter and appending it to the run history.
func (c *Checkpoint) Record(index int, ticker string, apiCalls int, now time.Time) {
	c.LastProcessedIndex = index
	c.LastProcessedDate = now.Format(dayFormat)
	c.DailyAPICalls += apiCalls
	c.TotalCompaniesProcessed++
	c.Companies = append(c.Companies, CompanyEntry{
		Index:     index,
		Ticker:    ticker,
		Timestamp: now.Format(time.RFC3339),
	})
}
