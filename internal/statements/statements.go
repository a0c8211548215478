// Package statements exports a company's annual financial statements as
// CSV files, one file per statement type, fetched from the Financial
// Modeling Prep API. The contents are exported verbatim; nothing is
// interpreted or derived.
package statements

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/edgarfetch/internal/config"
	"github.com/seenimoa/edgarfetch/internal/edgar"
	"github.com/seenimoa/edgarfetch/pkg/utils"
)

const (
	defaultBaseURL   = "https://financialmodelingprep.com/api/v3"
	defaultOutputDir = "./statements"
	requestTimeout   = 30 * time.Second
)

// StatementTypes lists the exported statements in processing order.
var StatementTypes = []string{"income", "balance", "cashflow"}

var statementPaths = map[string]string{
	"income":   "income-statement",
	"balance":  "balance-sheet-statement",
	"cashflow": "cash-flow-statement",
}

// Exporter fetches annual statements and writes them under
// outputDir/TICKER/. The statements API has its own access key and its
// own limits, so the exporter carries its own HTTP client rather than
// sharing the registry's rate-limited one.
type Exporter struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	outputDir  string
}

// NewExporter validates the settings and builds an exporter. The API key
// is required.
func NewExporter(cfg config.StatementsConfig) (*Exporter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &edgar.ConfigurationError{Setting: "statements.api_key", Reason: "an API key is required for statement export"}
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = defaultOutputDir
	}
	return &Exporter{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		outputDir:  outputDir,
	}, nil
}

// ExportAll writes all three statements for one ticker, returning the
// paths written so far and the first error hit.
func (e *Exporter) ExportAll(ctx context.Context, ticker string) ([]string, error) {
	var paths []string
	for _, statementType := range StatementTypes {
		path, err := e.ExportStatement(ctx, ticker, statementType)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportStatement fetches one statement type and writes it as
// outputDir/TICKER/<type>.csv, returning the file path.
func (e *Exporter) ExportStatement(ctx context.Context, ticker, statementType string) (string, error) {
	apiPath, ok := statementPaths[statementType]
	if !ok {
		return "", fmt.Errorf("statements: unknown statement type %q", statementType)
	}
	ticker = utils.NormalizeTicker(ticker)
	if ticker == "" {
		return "", fmt.Errorf("statements: empty ticker")
	}

	// The display URL stays key-free so error text never leaks the key.
	display := fmt.Sprintf("%s/%s/%s", e.baseURL, apiPath, ticker)
	requestURL := fmt.Sprintf("%s?period=annual&apikey=%s", display, e.apiKey)

	rows, err := e.fetchRows(ctx, requestURL, display)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("statements: no %s data for %s", statementType, ticker)
	}

	dir := filepath.Join(e.outputDir, ticker)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("statements: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, statementType+".csv")
	if err := writeStatementCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

// fetchRows decodes the API's JSON array of period objects. Numbers stay
// in their literal form so the CSV reproduces the API's values exactly.
func (e *Exporter) fetchRows(ctx context.Context, requestURL, display string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("statements: build request for %s: %w", display, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &edgar.TransientNetworkError{URL: display, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &edgar.TransientNetworkError{URL: display, StatusCode: resp.StatusCode}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, &edgar.MalformedResponseError{URL: display, Err: err}
	}
	return rows, nil
}

// writeStatementCSV writes the rows with a stable header: the first row's
// columns in sorted order. Columns a later row lacks serialize empty.
func writeStatementCSV(path string, rows []map[string]any) error {
	header := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		header = append(header, col)
	}
	sort.Strings(header)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("statements: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("statements: write header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, col := range header {
			if v, ok := row[col]; ok && v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("statements: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("statements: flush %s: %w", path, err)
	}
	return nil
}
