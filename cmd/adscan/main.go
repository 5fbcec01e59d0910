package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/cache"
	"github.com/fwojciec/adscan/crawl"
	"github.com/fwojciec/adscan/fs"
	"github.com/fwojciec/adscan/goquery"
	adscanprom "github.com/fwojciec/adscan/prometheus"
	"github.com/fwojciec/adscan/rod"
	adscanslog "github.com/fwojciec/adscan/slog"
	"github.com/fwojciec/adscan/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database backing the ledger and cache persistence.
	DB *sqlite.DB

	// Tracker for end-to-end testing.
	Tracker adscan.Tracker
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("adscan"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'adscan --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))
	deps.Logger = logger

	// Open database. A run cannot proceed without the ledger.
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set ADSCAN_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.Tracker = adscanslog.NewLoggingTracker(sqlite.NewTracker(m.DB, logger), logger)
	deps.DB = m.DB
	deps.Tracker = m.Tracker

	if cmd == "crawl" {
		health := crawl.NewHealthTracker()
		contentCache := cache.NewPersistent(cli.Crawl.CacheEntries, cli.Crawl.CacheBytes, m.DB, logger)
		contentCache.Load(ctx)
		defer contentCache.Flush(context.WithoutCancel(ctx))

		var metrics adscan.Metrics = adscan.NopMetrics{}
		if cli.Crawl.MetricsAddr != "" {
			reg := prometheus.NewRegistry()
			metrics = adscanprom.NewCollector(reg)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(cli.Crawl.MetricsAddr, mux); err != nil {
					logger.Warn("metrics endpoint failed", "addr", cli.Crawl.MetricsAddr, "err", err)
				}
			}()
		}

		errorLog := fs.NewErrorLog(cli.Crawl.Errors)
		defer errorLog.Close()

		factory := rod.NewFactory(goquery.NewDetector(),
			rod.WithCache(contentCache),
			rod.WithManagerOptions(rod.WithManagerLogger(logger)),
		)

		deps.Crawler = &crawl.Crawler{
			Dispatcher: &crawl.Dispatcher{
				Factory:     factory,
				Tracker:     m.Tracker,
				Health:      health,
				RateLimiter: crawl.NewDomainLimiter(cli.Crawl.RPS, 1),
				Metrics:     metrics,
				Logger:      logger,
			},
			Tracker:   m.Tracker,
			Health:    health,
			Preflight: crawl.NewPreflightChecker(logger, crawl.WithHealth(health)),
			Writer:    fs.NewResultStore(cli.Crawl.Output),
			ErrorLog:  errorLog,
			Cache:     contentCache,
			Metrics:   metrics,
			Logger:    logger,
			Progress: func(processed, total int) {
				fmt.Fprintf(stdout, "  %d/%d processed\n", processed, total)
			},
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("ADSCAN_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "adscan.db"
	}
	dir := filepath.Join(home, ".adscan")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "adscan.db")
}
