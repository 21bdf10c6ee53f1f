// Command recipecrawl scrapes recipe pages into a structured report
// and serves read-only queries over the result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/recipecrawl/internal/batch"
	"github.com/go-scripts/recipecrawl/internal/config"
	"github.com/go-scripts/recipecrawl/internal/extract"
	"github.com/go-scripts/recipecrawl/internal/fetch"
	"github.com/go-scripts/recipecrawl/internal/pricing"
	"github.com/go-scripts/recipecrawl/internal/refs"
	"github.com/go-scripts/recipecrawl/internal/report"
	"github.com/go-scripts/recipecrawl/internal/server"
)

type cli struct {
	Config string `help:"Path to configuration file." default:"config.yaml"`
	Debug  bool   `help:"Enable debug logging."`

	Scrape scrapeCmd `cmd:"" help:"Scrape the reference list and write a report."`
	Serve  serveCmd  `cmd:"" help:"Serve the query API over a scraped report."`
}

type runContext struct {
	cfg config.Config
}

type scrapeCmd struct {
	URLs       string  `help:"Reference list to scrape (overrides config)." short:"u"`
	Output     string  `help:"Report output directory (overrides config)." short:"o"`
	MaxRetries int     `help:"Total attempts per reference (overrides config)."`
	Delay      float64 `help:"Base backoff delay in seconds (overrides config)."`
	NoProgress bool    `help:"Disable the progress spinner."`
}

// batchOptions resolves the retry knobs: a flag that was set wins over
// the config file, same as the file knobs above.
func (c *scrapeCmd) batchOptions(s config.Scraper) batch.Options {
	opts := batch.Options{
		MaxRetries: s.MaxRetries,
		Delay:      s.Delay.Std(),
	}
	if c.MaxRetries > 0 {
		opts.MaxRetries = c.MaxRetries
	}
	if c.Delay > 0 {
		opts.Delay = time.Duration(c.Delay * float64(time.Second))
	}
	return opts
}

func (c *scrapeCmd) Run(rc *runContext) error {
	cfg := rc.cfg
	urlsPath := cfg.Files.URLs
	if c.URLs != "" {
		urlsPath = c.URLs
	}
	outputDir := cfg.Files.OutputDir
	if c.Output != "" {
		outputDir = c.Output
	}

	validator := refs.NewValidator(cfg.Source.Host)
	references, err := validator.LoadFile(urlsPath)
	if err != nil {
		return err
	}
	if len(references) == 0 {
		return fmt.Errorf("no valid references in %s", urlsPath)
	}
	log.Info("loaded references", "count", len(references), "file", urlsPath)

	browser, err := fetch.NewBrowser(fetch.BrowserOptions{
		Timeout:   cfg.Scraper.Timeout.Std(),
		Settle:    cfg.Scraper.Settle.Std(),
		RateLimit: cfg.Scraper.RateLimit.Std(),
		Headless:  cfg.Scraper.Headless,
	})
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}
	defer browser.Close()

	runner := batch.New(browser, extract.NewAssembler(), c.batchOptions(cfg.Scraper))
	if !c.NoProgress {
		runner = runner.WithProgress()
	}

	// Interrupts stop the batch between references; whatever completed
	// still gets flushed below.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, runErr := runner.Run(ctx, references)

	writer, err := report.NewWriter(outputDir)
	if err != nil {
		return err
	}
	if err := writer.Write(rep, cfg.Files.Recipes, cfg.Files.Failed); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	log.Info("batch finished",
		"total", rep.TotalReferences,
		"succeeded", rep.SuccessCount,
		"failed", rep.FailureCount)
	return runErr
}

type serveCmd struct {
	Addr string `help:"Listen address (overrides config)."`
}

func (c *serveCmd) Run(rc *runContext) error {
	cfg := rc.cfg
	addr := cfg.Server.Addr
	if c.Addr != "" {
		addr = c.Addr
	}

	records, err := loadRecords(filepath.Join(cfg.Files.OutputDir, cfg.Files.Recipes))
	if err != nil {
		return err
	}
	snapshot, err := pricing.LoadSnapshot(cfg.Files.Materials)
	if err != nil {
		log.Warn("no materials snapshot, prices default to vendor values", "err", err)
		snapshot = pricing.Snapshot{}
	}

	return server.New(addr, records, snapshot).ListenAndServe()
}

func loadRecords(path string) ([]extract.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []extract.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func main() {
	var flags cli
	ctx := kong.Parse(&flags,
		kong.Name("recipecrawl"),
		kong.Description("Recipe page scraper and profit query service."))

	if flags.Debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(flags.Config)
	if err != nil {
		log.Fatal("loading configuration", "err", err)
	}

	if err := ctx.Run(&runContext{cfg: cfg}); err != nil {
		log.Fatal("command failed", "err", err)
	}
}
