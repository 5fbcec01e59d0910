package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
	"github.com/fwojciec/adscan/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	DB      *sqlite.DB
	Tracker adscan.Tracker
	Crawler *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl a URL list and detect ad-tech integrations"`
	Stats  StatsCmd  `cmd:"" help:"Show ledger statistics and unprocessed ranges"`
	Import ImportCmd `cmd:"" help:"Backfill the ledger from historical result files"`
	Reset  ResetCmd  `cmd:"" help:"Clear all processed-URL tracking"`
	Vacuum VacuumCmd `cmd:"" help:"Compact the database file"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	List string `arg:"" help:"URL list file, or '-' for stdin"`

	Concurrency    int           `short:"c" default:"10" help:"Concurrent page limit"`
	Range          string        `short:"r" help:"1-based inclusive list range, e.g. 100-500"`
	ChunkSize      int           `help:"Split the range into sequential chunks of this size"`
	SkipProcessed  bool          `default:"true" negatable:"" help:"Skip URLs already recorded with a terminal outcome"`
	Force          bool          `short:"f" help:"Reprocess URLs even if already recorded"`
	ResetTracking  bool          `help:"Clear the ledger before the run"`
	Preflight      bool          `default:"true" negatable:"" help:"Probe DNS and SSL before dispatch"`
	SkipDNSFailed  bool          `default:"true" negatable:"" help:"Exclude URLs that fail the DNS probe"`
	SkipSSLFailed  bool          `help:"Exclude URLs that fail the SSL probe"`
	Timeout        time.Duration `default:"30s" help:"Per-page navigation timeout"`
	RPS            float64       `name:"rps" default:"1.0" help:"Requests per second per domain"`
	Output         string        `short:"o" default:"results" help:"Result artifact directory"`
	Errors         string        `default:"errors" help:"Error log directory"`
	CacheEntries   int           `default:"10000" help:"Content cache entry bound"`
	CacheBytes     int64         `default:"268435456" help:"Content cache size bound in bytes"`
	MetricsAddr    string        `help:"Expose Prometheus metrics on this address, e.g. :9090"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	List       string `arg:"" optional:"" help:"URL list file for range analysis"`
	Range      string `short:"r" help:"Analyze this range of the list"`
	Suggest    int    `help:"Suggest up to this many unprocessed ranges"`
	WindowSize int    `default:"1000" help:"Window size for range suggestions"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Dir string `arg:"" help:"Directory of historical result files"`
}

// ResetCmd is the "reset" subcommand.
type ResetCmd struct {
	Force bool `help:"Confirm the reset"`
}

// VacuumCmd is the "vacuum" subcommand.
type VacuumCmd struct{}
