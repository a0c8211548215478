// Package identity maps ticker symbols to registry identifiers through a
// persisted lookup table built from the registry's bulk ticker export.
//
// The table is all-or-nothing: a readable file on disk is trusted in full,
// and an absent or unreadable file triggers a wholesale rebuild. Individual
// lookup misses never trigger network traffic.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/seenimoa/edgarfetch/internal/config"
	"github.com/seenimoa/edgarfetch/internal/edgar"
	"github.com/seenimoa/edgarfetch/internal/infra"
	"github.com/seenimoa/edgarfetch/pkg/models"
	"github.com/seenimoa/edgarfetch/pkg/utils"
)

const (
	defaultTableTTL = 24 * time.Hour
	tableCacheKey   = "identity:table"
)

// cachedCompany is one persisted table entry.
type cachedCompany struct {
	Name   string `json:"name"`
	CIK    string `json:"cik"`
	CIKRaw int    `json:"cik_raw"`
}

// Resolver resolves tickers against the cached identifier table, rebuilding
// it from the bulk export when no usable file exists.
type Resolver struct {
	client    *edgar.Client
	cachePath string
	ttl       time.Duration

	mu    sync.Mutex
	cache *infra.Cache
}

// NewResolver wires a resolver to the shared registry client.
func NewResolver(client *edgar.Client, cfg config.IdentityConfig) *Resolver {
	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = defaultTableTTL
	}
	return &Resolver{
		client:    client,
		cachePath: cfg.CachePath,
		ttl:       ttl,
		cache:     infra.NewCache(ttl),
	}
}

// Resolve looks a ticker up in the identifier table. ok is false when the
// ticker is unknown to the registry; err is non-nil only when the caller's
// context ended while the table was being built, so a canceled run is not
// misread as a wall of unknown tickers.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (models.CompanyIdentity, bool, error) {
	normalized := utils.NormalizeTicker(ticker)
	if normalized == "" {
		return models.CompanyIdentity{}, false, nil
	}

	table, err := r.lookupTable(ctx)
	if err != nil {
		return models.CompanyIdentity{}, false, err
	}

	entry, ok := table[normalized]
	if !ok {
		return models.CompanyIdentity{}, false, nil
	}
	return models.CompanyIdentity{
		Ticker: normalized,
		Name:   entry.Name,
		CIK:    entry.CIK,
	}, true, nil
}

// Companies returns every identity in the table, sorted by ticker.
func (r *Resolver) Companies(ctx context.Context) ([]models.CompanyIdentity, error) {
	table, err := r.lookupTable(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CompanyIdentity, 0, len(table))
	for ticker, entry := range table {
		out = append(out, models.CompanyIdentity{Ticker: ticker, Name: entry.Name, CIK: entry.CIK})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

// Refresh discards the persisted table and rebuilds it from the bulk
// export, returning how many companies the new table covers.
func (r *Resolver) Refresh(ctx context.Context) (int, error) {
	table, err := r.rebuild(ctx)
	if err != nil {
		return 0, err
	}
	if err := r.persist(table); err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.cache.SetWithTTL(tableCacheKey, table, r.ttl)
	r.mu.Unlock()
	return len(table), nil
}

// lookupTable returns the in-memory table, reloading it from disk (or
// rebuilding it) when the cached copy has aged out.
func (r *Resolver) lookupTable(ctx context.Context) (map[string]cachedCompany, error) {
	if cached, ok := r.cache.Get(tableCacheKey); ok {
		return cached.(map[string]cachedCompany), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache.Get(tableCacheKey); ok {
		return cached.(map[string]cachedCompany), nil
	}

	table, err := r.loadOrRebuild(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetWithTTL(tableCacheKey, table, r.ttl)
	return table, nil
}

// loadOrRebuild reads the persisted table, falling back to a full rebuild
// when the file is missing or unreadable. A failed rebuild degrades to an
// empty table so a batch run skips rather than aborts.
func (r *Resolver) loadOrRebuild(ctx context.Context) (map[string]cachedCompany, error) {
	data, err := os.ReadFile(r.cachePath)
	if err == nil {
		var table map[string]cachedCompany
		if jsonErr := json.Unmarshal(data, &table); jsonErr == nil {
			return table, nil
		}
		log.Printf("identity: unreadable table at %s, rebuilding", r.cachePath)
	} else if !os.IsNotExist(err) {
		log.Printf("identity: cannot read table at %s: %v, rebuilding", r.cachePath, err)
	}

	table, err := r.rebuild(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("identity: build table: %w", err)
		}
		log.Printf("identity: bulk export failed: %v, all lookups will miss this run", err)
		return map[string]cachedCompany{}, nil
	}

	if err := r.persist(table); err != nil {
		log.Printf("identity: cannot persist table: %v", err)
	}
	return table, nil
}

// rebuild downloads the bulk export and reshapes it into the lookup table,
// normalizing identifiers to their 10-digit form.
func (r *Resolver) rebuild(ctx context.Context) (map[string]cachedCompany, error) {
	tickers, err := r.client.BulkTickers(ctx)
	if err != nil {
		return nil, err
	}

	table := make(map[string]cachedCompany, len(tickers))
	for _, bt := range tickers {
		ticker := utils.NormalizeTicker(bt.Ticker)
		if ticker == "" {
			continue
		}
		table[ticker] = cachedCompany{
			Name:   bt.Title,
			CIK:    utils.NormalizeCIK(strconv.Itoa(bt.CIK)),
			CIKRaw: bt.CIK,
		}
	}
	log.Printf("identity: built table with %d companies", len(table))
	return table, nil
}

func (r *Resolver) persist(table map[string]cachedCompany) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("identity: encode table: %w", err)
	}
	if dir := filepath.Dir(r.cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("identity: create table directory: %w", err)
		}
	}
	if err := os.WriteFile(r.cachePath, data, 0644); err != nil {
		return fmt.Errorf("identity: write table: %w", err)
	}
	return nil
}
