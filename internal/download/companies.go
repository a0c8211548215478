package download

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/seenimoa/edgarfetch/pkg/models"
	"github.com/seenimoa/edgarfetch/pkg/utils"
)

// ReadCompaniesCSV loads the batch company list. The first row is a
// header; the symbol and name columns are located by name and default to
// the first two columns. Rows whose ticker fails validation are skipped.
func ReadCompaniesCSV(path string) ([]models.CompanyIdentity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("download: open company list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("download: read company list: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	symbolCol, nameCol := 0, 1
	for i, col := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "symbol", "ticker":
			symbolCol = i
		case "name":
			nameCol = i
		}
	}

	var companies []models.CompanyIdentity
	skipped := 0
	for _, row := range rows[1:] {
		if symbolCol >= len(row) {
			skipped++
			continue
		}
		ticker := utils.NormalizeTicker(row[symbolCol])
		if !utils.ValidTicker(ticker) {
			skipped++
			continue
		}
		name := ""
		if nameCol < len(row) {
			name = strings.TrimSpace(row[nameCol])
		}
		companies = append(companies, models.CompanyIdentity{Ticker: ticker, Name: name})
	}

	log.Printf("download: loaded %d companies from %s, skipped %d invalid rows", len(companies), path, skipped)
	return companies, nil
}

// WriteCompaniesCSV writes a symbol,name company list, keeping only valid
// tickers. The input order is preserved; callers wanting a sorted file
// pass a sorted slice.
func WriteCompaniesCSV(path string, companies []models.CompanyIdentity) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("download: create company list directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("download: create company list: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"symbol", "name"}); err != nil {
		return fmt.Errorf("download: write company list header: %w", err)
	}
	written := 0
	for _, company := range companies {
		if !utils.ValidTicker(company.Ticker) {
			continue
		}
		if err := w.Write([]string{company.Ticker, company.Name}); err != nil {
			return fmt.Errorf("download: write company row: %w", err)
		}
		written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("download: flush company list: %w", err)
	}

	log.Printf("download: wrote %d companies to %s", written, path)
	return nil
}
