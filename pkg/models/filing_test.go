package models

import (
	"encoding/json"
	"testing"
	"time"
)

// ── FilingKind ──

func TestParseFilingKind(t *testing.T) {
	tests := []struct {
		input string
		kind  FilingKind
		ok    bool
	}{
		{"10-K", KindAnnual, true},
		{"10-Q", KindQuarterly, true},
		{"8-K", KindCurrent, true},
		{"10-K/A", KindAnnualAmended, true},
		{"S-1", "", false},
		{"DEF 14A", "", false},
		{"", "", false},
		{"10-k", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, ok := ParseFilingKind(tt.input)
			if ok != tt.ok || kind != tt.kind {
				t.Errorf("ParseFilingKind(%q) = (%q, %v), want (%q, %v)", tt.input, kind, ok, tt.kind, tt.ok)
			}
		})
	}
}

func TestKindOrDefault(t *testing.T) {
	if got := KindOrDefault("10-Q"); got != KindQuarterly {
		t.Errorf("KindOrDefault(10-Q) = %q, want %q", got, KindQuarterly)
	}
	if got := KindOrDefault("S-1"); got != KindAnnual {
		t.Errorf("KindOrDefault(S-1) = %q, want %q", got, KindAnnual)
	}
	if got := KindOrDefault(""); got != KindAnnual {
		t.Errorf("KindOrDefault(\"\") = %q, want %q", got, KindAnnual)
	}
}

// ── FilingRecord ──

func TestFilingYearDerivedFromFiledOn(t *testing.T) {
	f := FilingRecord{
		AccessionNumber: "0000320193-23-000106",
		Kind:            KindAnnual,
		FiledOn:         time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC),
	}
	if got := f.FilingYear(); got != 2023 {
		t.Errorf("FilingYear() = %d, want 2023", got)
	}

	f.FiledOn = time.Date(2022, 10, 28, 0, 0, 0, 0, time.UTC)
	if got := f.FilingYear(); got != 2022 {
		t.Errorf("FilingYear() after FiledOn change = %d, want 2022", got)
	}
}

func TestFilingRecordJSONRoundtrip(t *testing.T) {
	f := FilingRecord{
		AccessionNumber: "0000320193-23-000106",
		Kind:            KindAnnual,
		FiledOn:         time.Date(2023, 11, 3, 0, 0, 0, 0, time.UTC),
		CompanyName:     "Apple Inc.",
		CompanyCIK:      "0000320193",
		IndexURL:        "https://www.sec.gov/Archives/edgar/data/320193/0000320193-23-000106-index.htm",
		IndexFileName:   "0000320193-23-000106-index.htm",
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("json.Marshal(FilingRecord) error: %v", err)
	}
	var decoded FilingRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal(FilingRecord) error: %v", err)
	}
	if decoded.AccessionNumber != f.AccessionNumber {
		t.Errorf("AccessionNumber: got %q, want %q", decoded.AccessionNumber, f.AccessionNumber)
	}
	if decoded.Kind != KindAnnual {
		t.Errorf("Kind: got %q, want %q", decoded.Kind, KindAnnual)
	}
	if decoded.LocalPath != "" {
		t.Errorf("LocalPath should be empty after roundtrip, got %q", decoded.LocalPath)
	}
}

// ── CompanyIdentity ──

func TestCompanyIdentityHasCIK(t *testing.T) {
	with := CompanyIdentity{Ticker: "AAPL", Name: "Apple Inc.", CIK: "0000320193"}
	without := CompanyIdentity{Ticker: "AAPL", Name: "Apple Inc."}
	if !with.HasCIK() {
		t.Error("HasCIK() = false for identity with CIK")
	}
	if without.HasCIK() {
		t.Error("HasCIK() = true for identity without CIK")
	}
}
