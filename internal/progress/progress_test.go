package progress

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	cp := Load(filepath.Join(t.TempDir(), "progress.json"))
	if cp.LastProcessedIndex != -1 {
		t.Errorf("LastProcessedIndex = %d, want -1", cp.LastProcessedIndex)
	}
	if cp.DailyAPICalls != 0 || cp.TotalCompaniesProcessed != 0 {
		t.Errorf("fresh checkpoint carries state: %+v", cp)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	cp := Load(path)
	if cp.LastProcessedIndex != -1 {
		t.Errorf("LastProcessedIndex = %d, want -1 after corrupt load", cp.LastProcessedIndex)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "progress.json")
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	cp := NewCheckpoint()
	cp.ResetForDay(now)
	cp.Record(0, "AAPL", 3, now)
	cp.Record(1, "MSFT", 3, now)
	if err := cp.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded := Load(path)
	if loaded.LastProcessedIndex != 1 {
		t.Errorf("LastProcessedIndex = %d, want 1", loaded.LastProcessedIndex)
	}
	if loaded.LastProcessedDate != "2024-03-15" {
		t.Errorf("LastProcessedDate = %q, want 2024-03-15", loaded.LastProcessedDate)
	}
	if loaded.DailyAPICalls != 6 {
		t.Errorf("DailyAPICalls = %d, want 6", loaded.DailyAPICalls)
	}
	if loaded.TotalCompaniesProcessed != 2 {
		t.Errorf("TotalCompaniesProcessed = %d, want 2", loaded.TotalCompaniesProcessed)
	}
	if len(loaded.Companies) != 2 || loaded.Companies[1].Ticker != "MSFT" {
		t.Errorf("Companies = %+v", loaded.Companies)
	}
}

func TestResetForDay(t *testing.T) {
	cp := &Checkpoint{
		LastProcessedIndex: 41,
		LastProcessedDate:  "2024-03-14",
		DailyAPICalls:      240,
	}

	// Same day: the counter stands.
	cp.ResetForDay(time.Date(2024, 3, 14, 23, 59, 0, 0, time.UTC))
	if cp.DailyAPICalls != 240 {
		t.Errorf("DailyAPICalls = %d, want 240 on the same day", cp.DailyAPICalls)
	}

	// New day: the counter resets, the resume index stands.
	cp.ResetForDay(time.Date(2024, 3, 15, 0, 1, 0, 0, time.UTC))
	if cp.DailyAPICalls != 0 {
		t.Errorf("DailyAPICalls = %d, want 0 on a new day", cp.DailyAPICalls)
	}
	if cp.LastProcessedIndex != 41 {
		t.Errorf("LastProcessedIndex = %d, want 41 preserved across days", cp.LastProcessedIndex)
	}
	if cp.LastProcessedDate != "2024-03-15" {
		t.Errorf("LastProcessedDate = %q, want 2024-03-15", cp.LastProcessedDate)
	}
}
