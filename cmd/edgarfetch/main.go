// edgarfetch retrieves corporate filings from the SEC EDGAR system and
// localizes them for offline reading.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/edgarfetch/internal/config"
	"github.com/seenimoa/edgarfetch/internal/download"
	"github.com/seenimoa/edgarfetch/internal/edgar"
	"github.com/seenimoa/edgarfetch/internal/identity"
	"github.com/seenimoa/edgarfetch/internal/localize"
	"github.com/seenimoa/edgarfetch/internal/statements"
	"github.com/seenimoa/edgarfetch/pkg/models"
	"github.com/seenimoa/edgarfetch/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "edgarfetch",
	Short: "Retrieve and localize SEC EDGAR filings for offline reading",
	Long: `edgarfetch downloads corporate filings from the SEC EDGAR system,
rewrites their remote images and stylesheets into local copies so the
saved reports open without a network connection, and keeps multi-day
bulk runs resumable under EDGAR's fair-access limits.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		return setupLogging(cfg.Logging)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(statementsCmd)
	rootCmd.AddCommand(statusCmd)
}

// setupLogging applies the logging section: an optional log file, and
// caller locations on every line at debug level.
func setupLogging(lc config.LoggingConfig) error {
	if strings.EqualFold(lc.Level, "debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", lc.File, err)
		}
		log.SetOutput(f)
	}
	return nil
}

// newStack wires the registry client, identity resolver, localizer and
// downloader from the loaded config.
func newStack() (*download.Downloader, *identity.Resolver, *edgar.Client, error) {
	client, err := edgar.NewClient(cfg.Edgar)
	if err != nil {
		return nil, nil, nil, err
	}
	resolver := identity.NewResolver(client, cfg.Identity)
	localizer := localize.NewLocalizer(client, cfg.Download)
	d := download.NewDownloader(client, resolver, localizer, cfg.Download)
	return d, resolver, client, nil
}

// parseKind maps the --kind flag onto the supported form types,
// defaulting to the annual report.
func parseKind(flag string) (models.FilingKind, error) {
	if flag == "" {
		return models.KindAnnual, nil
	}
	kind, ok := models.ParseFilingKind(flag)
	if !ok {
		return "", fmt.Errorf("unsupported filing kind %q (supported: 10-K, 10-K/A, 10-Q, 8-K)", flag)
	}
	return kind, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edgarfetch %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Download Command ---

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download one company's filing and localize it",
	Long: `Download a company's filing for a given year, rewrite its remote
images and stylesheets into local files, and save it under the download
root. Re-running is free: an already-saved filing is not fetched again
unless --overwrite is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		if ticker == "" {
			return fmt.Errorf("provide a ticker with --ticker")
		}
		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = cfg.Download.Year
		}
		kindFlag, _ := cmd.Flags().GetString("kind")
		kind, err := parseKind(kindFlag)
		if err != nil {
			return err
		}
		if overwrite, _ := cmd.Flags().GetBool("overwrite"); overwrite {
			cfg.Download.Overwrite = true
		}

		d, resolver, _, err := newStack()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		normalized := utils.NormalizeTicker(ticker)
		company, ok, err := resolver.Resolve(ctx, normalized)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no registry identifier found for %s", normalized)
		}

		res := d.DownloadFiling(ctx, company, kind, year)
		switch res.Status {
		case models.StatusDownloaded:
			fmt.Printf("✅ %s %s %d → %s\n", company.Ticker, kind, year, res.LocalPath)
		case models.StatusSkippedNoMatch:
			fmt.Printf("⚠️  No %s filings found for %s in %d\n", kind, company.Ticker, year)
		case models.StatusFailed:
			return fmt.Errorf("download failed for %s: %w", company.Ticker, res.Err)
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().String("ticker", "", "company ticker symbol (required)")
	downloadCmd.Flags().Int("year", 0, "filing year (default: configured year)")
	downloadCmd.Flags().String("kind", "", "filing form type (default: 10-K)")
	downloadCmd.Flags().Bool("overwrite", false, "re-download even if the file already exists")
}

// --- Batch Command ---

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Download annual reports for a CSV of companies",
	Long: `Walk a companies CSV and download each company's annual report,
checkpointing progress after every row. The run stops at the daily call
budget and resumes from the checkpoint on the next invocation, so large
lists spread naturally across days.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
			cfg.Batch.CompaniesCSV = csvPath
		}
		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = cfg.Download.Year
		}
		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")

		d, _, _, err := newStack()
		if err != nil {
			return err
		}

		runner := download.NewBatchRunner(d, cfg.Batch)
		summary, err := runner.RunRange(cmd.Context(), year, start, end)
		if err != nil {
			return err
		}

		fmt.Printf("📦 Processed %d companies: %d downloaded, %d skipped, %d failed\n",
			summary.Processed, summary.Downloaded, summary.Skipped, summary.Failed)
		if len(summary.FailedTickers) > 0 {
			fmt.Printf("   Failed: %s\n", strings.Join(summary.FailedTickers, ", "))
		}
		if summary.LimitReached {
			fmt.Printf("   Daily call budget reached, resume tomorrow at index %d\n", summary.NextIndex)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().String("csv", "", "companies CSV path (default: configured path)")
	batchCmd.Flags().Int("year", 0, "filing year (default: configured year)")
	batchCmd.Flags().Int("start", -1, "start index, overriding the checkpoint")
	batchCmd.Flags().Int("end", -1, "stop before this index")
}

// --- Resolve Command ---

var resolveCmd = &cobra.Command{
	Use:   "resolve [ticker...]",
	Short: "Resolve tickers to registry CIK identifiers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, _, err := newStack()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		for _, arg := range args {
			ticker := utils.NormalizeTicker(arg)
			company, ok, err := resolver.Resolve(ctx, ticker)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Printf("%-8s not found\n", ticker)
				continue
			}
			fmt.Printf("%-8s %s  %s\n", company.Ticker, company.CIK, company.Name)
		}
		return nil
	},
}

// --- Refresh Command ---

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the ticker-to-CIK identifier table",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, resolver, _, err := newStack()
		if err != nil {
			return err
		}
		count, err := resolver.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("🔄 Identifier table rebuilt: %d tickers\n", count)
		return nil
	},
}

// --- Recent Command ---

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List a company's most recent filings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		if ticker == "" {
			return fmt.Errorf("provide a ticker with --ticker")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		kindFlag, _ := cmd.Flags().GetString("kind")
		var kind models.FilingKind
		if kindFlag != "" {
			var err error
			if kind, err = parseKind(kindFlag); err != nil {
				return err
			}
		}

		_, resolver, client, err := newStack()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		normalized := utils.NormalizeTicker(ticker)
		company, ok, err := resolver.Resolve(ctx, normalized)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no registry identifier found for %s", normalized)
		}

		records, err := client.RecentFilings(ctx, company.CIK, kind, limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Printf("No recent filings for %s\n", company.Ticker)
			return nil
		}

		fmt.Printf("📰 Recent filings for %s (%s):\n", company.Ticker, company.Name)
		for _, rec := range records {
			fmt.Printf("  %s  %-7s %s\n", rec.FiledOn.Format("2006-01-02"), rec.Kind, rec.AccessionNumber)
		}
		return nil
	},
}

func init() {
	recentCmd.Flags().String("ticker", "", "company ticker symbol (required)")
	recentCmd.Flags().Int("limit", 20, "maximum number of filings to list")
	recentCmd.Flags().String("kind", "", "restrict to one form type (default: all)")
}

// --- Companies Command ---

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Export the known ticker list as a batch input CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Batch.CompaniesCSV
		}

		_, resolver, _, err := newStack()
		if err != nil {
			return err
		}
		companies, err := resolver.Companies(cmd.Context())
		if err != nil {
			return err
		}
		if err := download.WriteCompaniesCSV(out, companies); err != nil {
			return err
		}
		fmt.Printf("📋 Wrote %d companies to %s\n", len(companies), out)
		return nil
	},
}

func init() {
	companiesCmd.Flags().String("out", "", "output CSV path (default: configured companies CSV)")
}

// --- Statements Command ---

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "Export a company's annual financial statements as CSVs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker, _ := cmd.Flags().GetString("ticker")
		if ticker == "" {
			return fmt.Errorf("provide a ticker with --ticker")
		}

		exporter, err := statements.NewExporter(cfg.Statements)
		if err != nil {
			return err
		}
		paths, exportErr := exporter.ExportAll(cmd.Context(), ticker)
		for _, p := range paths {
			fmt.Printf("  %s\n", p)
		}
		if exportErr != nil {
			return exportErr
		}
		fmt.Printf("💾 Exported %d statements for %s\n", len(paths), utils.NormalizeTicker(ticker))
		return nil
	},
}

func init() {
	statementsCmd.Flags().String("ticker", "", "company ticker symbol (required)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  edgarfetch System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:  %s (%s)\n", version, commit)
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    User Agent:      %s\n", cfg.Edgar.UserAgent)
		fmt.Printf("    Rate Limit:      %d req/s\n", cfg.Edgar.RequestsPerSecond)
		fmt.Printf("    Download Root:   %s\n", cfg.Download.Root)
		fmt.Printf("    Default Year:    %d\n", cfg.Download.Year)
		fmt.Printf("    Identity Cache:  %s\n", cfg.Identity.CachePath)
		fmt.Printf("    Progress File:   %s\n", cfg.Batch.ProgressPath)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set (filing download works without it)"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
