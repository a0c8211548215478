package download

import "github.com/seenimoa/edgarfetch/pkg/models"

// SelectForYear picks the filing to download for a target year: the most
// recently filed record of that year. Ties keep the first record
// encountered. ok is false when the year has no filings.
func SelectForYear(records []models.FilingRecord, year int) (models.FilingRecord, bool) {
	var selected models.FilingRecord
	found := false
	for _, rec := range records {
		if rec.FilingYear() != year {
			continue
		}
		if !found || rec.FiledOn.After(selected.FiledOn) {
			selected = rec
			found = true
		}
	}
	return selected, found
}
