// Package models defines the core data structures used throughout edgarfetch.
package models

import "time"

// --- Filing kinds ---

// FilingKind is the closed set of registry form types the downloader handles.
type FilingKind string

const (
	KindAnnual        FilingKind = "10-K"
	KindQuarterly     FilingKind = "10-Q"
	KindCurrent       FilingKind = "8-K"
	KindAnnualAmended FilingKind = "10-K/A"
)

// ParseFilingKind maps a registry form-type string onto the closed kind set.
func ParseFilingKind(s string) (FilingKind, bool) {
	switch FilingKind(s) {
	case KindAnnual, KindQuarterly, KindCurrent, KindAnnualAmended:
		return FilingKind(s), true
	}
	return "", false
}

// KindOrDefault returns the parsed kind, falling back to KindAnnual for
// form-type strings outside the known set. Unknown strings never enter a
// FilingRecord as-is.
func KindOrDefault(s string) FilingKind {
	if k, ok := ParseFilingKind(s); ok {
		return k
	}
	return KindAnnual
}

// --- Filing record ---

// FilingRecord represents one filing entry parsed from a registry search
// response.
type FilingRecord struct {
	AccessionNumber string     `json:"accession_number"` // e.g., "0000320193-23-000106"
	Kind            FilingKind `json:"filing_type"`
	FiledOn         time.Time  `json:"filing_date"`
	CompanyName     string     `json:"company_name"`
	CompanyCIK      string     `json:"company_cik"`
	IndexURL        string     `json:"document_url"` // filing index page
	IndexFileName   string     `json:"file_name"`
	// LocalPath is assigned by the orchestrator right before the document
	// body is fetched; resource-directory placement keys off it being set.
	LocalPath string `json:"local_path,omitempty"`
}

// FilingYear is always derived from FiledOn, never stored separately.
func (f FilingRecord) FilingYear() int {
	return f.FiledOn.Year()
}
