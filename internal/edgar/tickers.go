package edgar

import (
	"context"
	"encoding/json"
	"fmt"
)

// BulkTicker is one entry of the registry's full ticker export.
type BulkTicker struct {
	Ticker string
	Title  string
	CIK    int
}

// bulkTickerEntry mirrors the wire shape: an object keyed by an opaque
// index, each value carrying ticker, title, and the raw numeric CIK.
type bulkTickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// BulkTickers downloads the registry's complete ticker-to-identifier
// export. Entries without a ticker or an identifier are dropped; everything
// else is returned untouched for the identity layer to normalize and
// persist.
func (c *Client) BulkTickers(ctx context.Context) ([]BulkTicker, error) {
	body, err := c.Fetch(ctx, c.tickersURL)
	if err != nil {
		return nil, fmt.Errorf("edgar: bulk ticker export: %w", err)
	}

	var raw map[string]bulkTickerEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &MalformedResponseError{URL: c.tickersURL, Err: err}
	}

	out := make([]BulkTicker, 0, len(raw))
	for _, entry := range raw {
		if entry.Ticker == "" || entry.CIK == 0 {
			continue
		}
		out = append(out, BulkTicker{
			Ticker: entry.Ticker,
			Title:  entry.Title,
			CIK:    entry.CIK,
		})
	}
	return out, nil
}
