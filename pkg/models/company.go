package models

// CompanyIdentity identifies one company across the pipeline.
type CompanyIdentity struct {
	Ticker string `json:"ticker"` // 1-5 uppercase letters
	Name   string `json:"name"`
	CIK    string `json:"cik,omitempty"` // 10-digit zero-padded when present
}

// HasCIK reports whether the registry identifier has been resolved.
func (c CompanyIdentity) HasCIK() bool {
	return c.CIK != ""
}

// --- Download outcome ---

// CompanyStatus is the terminal state of one company's download attempt.
type CompanyStatus string

const (
	StatusDownloaded          CompanyStatus = "downloaded"
	StatusSkippedNoMatch      CompanyStatus = "skipped_no_match"
	StatusSkippedNoIdentifier CompanyStatus = "skipped_no_identifier"
	StatusFailed              CompanyStatus = "failed"
)

// CompanyResult records the outcome of one company in a batch run.
type CompanyResult struct {
	Identity  CompanyIdentity `json:"company"`
	Status    CompanyStatus   `json:"status"`
	Filing    *FilingRecord   `json:"filing,omitempty"`
	LocalPath string          `json:"local_path,omitempty"`
	Err       error           `json:"-"`
}
