package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kubambe/webscraper2/config"
	"github.com/Kubambe/webscraper2/db"
	"github.com/Kubambe/webscraper2/fetcher"
	"github.com/Kubambe/webscraper2/filter"
	"github.com/Kubambe/webscraper2/logging"
	"github.com/Kubambe/webscraper2/models"
	"github.com/Kubambe/webscraper2/output"
	"github.com/Kubambe/webscraper2/parser"
	"github.com/Kubambe/webscraper2/scraper"
	"github.com/Kubambe/webscraper2/sheets"
)

func main() {
	// Parse command line arguments
	urlFlag := flag.String("url", "", "Start URL to scrape (required)")
	elements := flag.String("elements", "", "Elements to extract, e.g. \"h1:class,id a:href\" (required)")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	pages := flag.Int("pages", 0, "Maximum number of pages to scrape")
	format := flag.String("format", "", "Output format: json or csv")
	outputBase := flag.String("output", "", "Output file base name (without extension)")
	engine := flag.String("engine", "http", "Fetch engine: http or colly")
	proxy := flag.String("proxy", "", "Proxy URL for requests")
	timeout := flag.Int("timeout", 0, "Per-attempt request timeout in seconds")
	retries := flag.Int("retries", -1, "Number of retries after the first failed attempt")
	userAgent := flag.String("user-agent", "", "User-Agent header to send")
	dbDriver := flag.String("db-driver", "", "Database driver: postgres or sqlite3 (empty disables persistence)")
	dsn := flag.String("dsn", "", "Database connection string")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL to export results to (optional)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	pretty := flag.Bool("pretty", false, "Human-readable log output")
	flag.Parse()

	cfg := loadConfig(*configPath)

	// CLI flags override config file values
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["pages"] {
		cfg.Crawl.MaxPages = *pages
	}
	if set["format"] {
		cfg.Output.Format = *format
	}
	if set["output"] {
		cfg.Output.Basename = *outputBase
	}
	if set["proxy"] {
		cfg.Fetch.Proxy = *proxy
	}
	if set["timeout"] {
		cfg.Fetch.TimeoutSeconds = *timeout
	}
	if set["retries"] {
		cfg.Fetch.MaxRetries = *retries
	}
	if set["user-agent"] {
		cfg.Fetch.UserAgent = *userAgent
	}
	if set["db-driver"] {
		cfg.Database.Driver = *dbDriver
	}
	if set["dsn"] {
		cfg.Database.DSN = *dsn
	}
	if set["log-level"] {
		cfg.Log.Level = *logLevel
	}
	if set["pretty"] {
		cfg.Log.Pretty = *pretty
	}

	log := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	if *urlFlag == "" {
		log.Fatal().Msg("-url is required")
	}
	if *elements == "" {
		log.Fatal().Msg("-elements is required")
	}
	spec, err := models.ParseSpec(*elements)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -elements value")
	}
	if cfg.Output.Format != "json" && cfg.Output.Format != "csv" {
		log.Fatal().Str("format", cfg.Output.Format).Msg("unsupported output format, use json or csv")
	}
	if cfg.Fetch.MaxRetries < 0 {
		log.Fatal().Int("retries", cfg.Fetch.MaxRetries).Msg("retries must be >= 0")
	}

	var fetchImpl fetcher.Fetcher
	switch *engine {
	case "http":
		fetchImpl = fetcher.NewHTTPFetcher(log)
	case "colly":
		fetchImpl = fetcher.NewCollyFetcher(log)
	default:
		log.Fatal().Str("engine", *engine).Msg("unknown fetch engine, use http or colly")
	}

	opts := fetcher.Options{
		UserAgent:  cfg.Fetch.UserAgent,
		Proxy:      cfg.Fetch.Proxy,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	}

	// Interrupt cancels the crawl; whatever was gathered is still saved.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	crawler := scraper.NewCrawler(fetchImpl, parser.NewParser(), log)
	results, err := crawler.Crawl(ctx, *urlFlag, spec, cfg.Crawl.MaxPages, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("crawl failed")
	}

	total := 0
	for _, records := range results {
		total += len(records)
	}
	fmt.Printf("Extracted %d records across %d element types\n", total, len(results))

	if cfg.Filters.MinTextLength > 0 || len(cfg.Filters.RequiredAttributes) > 0 {
		results = filter.NewFilter(cfg.Filters).Apply(results)
		kept := 0
		for _, records := range results {
			kept += len(records)
		}
		fmt.Printf("Kept %d records after filtering\n", kept)
	}

	if err := output.Save(results, cfg.Output.Format, cfg.Output.Basename, log); err != nil {
		log.Fatal().Err(err).Msg("failed to save results")
	}

	if cfg.Database.Driver != "" {
		saveToDatabase(cfg.Database, results, log)
	}

	if *spreadsheetURL != "" {
		exportToSheets(*spreadsheetURL, *credentialsPath, results, log)
	}
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	if _, err := os.Stat(configPath); err != nil {
		return config.Default()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config file %s: %v\n", configPath, err)
		os.Exit(1)
	}
	return cfg
}

// saveToDatabase persists results to the configured store. Persistence
// failures are logged but never abort the run; file output already
// happened.
func saveToDatabase(dbCfg config.DatabaseConfig, results models.AggregateResult, log zerolog.Logger) {
	store, err := db.Open(dbCfg.Driver, dbCfg.DSN, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open database")
		return
	}
	defer store.Close()

	if err := store.Save(results); err != nil {
		log.Error().Err(err).Msg("failed to save results to database")
	}
}

// exportToSheets writes results to a Google Sheets spreadsheet. Export
// failures are logged warnings, never fatal.
func exportToSheets(spreadsheetURL, credentialsPath string, results models.AggregateResult, log zerolog.Logger) {
	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		log.Warn().Str("spreadsheet", spreadsheetURL).Msg("could not extract spreadsheet ID from URL")
		return
	}

	writer, err := sheets.NewWriter(spreadsheetID, credentialsPath, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Google Sheets writer")
		return
	}

	if err := writer.WriteResults(results); err != nil {
		log.Warn().Err(err).Msg("failed to write results to Google Sheets")
	}
}
