// Command mc-crawler crawls an FBAS payment network from a bootstrap
// list of peer URIs and writes a federation-view and/or crawl-report
// JSON snapshot of what it found.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/trudi-group/mc-crawler/crawl"
	"github.com/trudi-group/mc-crawler/internal/crawlconfig"
	"github.com/trudi-group/mc-crawler/internal/flags"
	"github.com/trudi-group/mc-crawler/internal/geoip"
	"github.com/trudi-group/mc-crawler/internal/peerrpc"
	"github.com/trudi-group/mc-crawler/internal/report"
	"github.com/trudi-group/mc-crawler/log"
)

var gitCommit = ""
var gitDate = ""

var (
	outputFlag = &cli.StringFlag{
		Name: "output", Aliases: []string{"o"},
		Usage: "directory for output files", Value: "crawl_data",
		Category: flags.MiscCategory,
	}
	debugFlag = &cli.BoolFlag{
		Name: "debug", Aliases: []string{"d"},
		Usage: "verbose logging", Category: flags.LoggingCategory,
	}
	fbasFlag = &cli.BoolFlag{
		Name: "fbas", Aliases: []string{"f"},
		Usage: "write the federation-view JSON", Category: flags.MiscCategory,
	}
	completeFlag = &cli.BoolFlag{
		Name: "complete", Aliases: []string{"c"},
		Usage: "write the full crawl-report JSON", Category: flags.MiscCategory,
	}
	configFlag = &cli.StringFlag{
		Name: "config", Usage: "TOML config file", Category: flags.MiscCategory,
	}
	concurrencyFlag = &cli.IntFlag{
		Name: "concurrency", Usage: "worker pool size", Category: flags.PerfCategory,
	}
	timeoutFlag = &cli.DurationFlag{
		Name: "timeout", Usage: "per-RPC deadline", Category: flags.PerfCategory,
	}
	rateFlag = &cli.IntFlag{
		Name:     "rate",
		Usage:    "max peer probes per second across the whole crawl (0 disables limiting)",
		Category: flags.PerfCategory,
	}
	asnDBFlag = &cli.StringFlag{
		Name: "asn-db", Usage: "offline ASN database file", Category: flags.MiscCategory,
	}
	countryDBFlag = &cli.StringFlag{
		Name: "country-db", Usage: "offline Country database file", Category: flags.MiscCategory,
	}
)

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, gitDate, "a crawler for FBAS payment networks")
	app.Flags = []cli.Flag{
		outputFlag, debugFlag, fbasFlag, completeFlag, configFlag,
		concurrencyFlag, timeoutFlag, rateFlag, asnDBFlag, countryDBFlag,
	}
	app.Action = run
	app.ArgsUsage = "[bootstrap-file]"
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Bool(debugFlag.Name) {
		log.SetLevel(log.LvlDebug)
	}
	if env := os.Getenv("MY_LOG_LEVEL"); env != "" {
		log.SetLevel(log.LvlFromString(env))
	}

	bootstrapPath := ctx.Args().First()
	if bootstrapPath == "" {
		bootstrapPath = "./bootstrap.txt"
	}
	bootstrapURIs, err := readBootstrapFile(bootstrapPath)
	if err != nil {
		return err
	}

	cfg := crawlconfig.Default
	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err = crawlconfig.LoadFile(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	cfg = crawlconfig.ApplyFlagOverrides(cfg,
		ctx.Int(concurrencyFlag.Name),
		ctx.Duration(timeoutFlag.Name),
		ctx.Int(rateFlag.Name),
		"",
		ctx.String(asnDBFlag.Name),
		ctx.String(countryDBFlag.Name),
	)
	if cfg.Scheme != "" {
		crawl.Scheme = cfg.Scheme
	}

	outputDir := ctx.String(outputFlag.Name)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	wantsReport := ctx.Bool(fbasFlag.Name) || ctx.Bool(completeFlag.Name)
	resolver, err := loadGeoIP(cfg, wantsReport)
	if err != nil {
		return err
	}

	state := crawl.NewCrawlerState(bootstrapURIs, log.Root())
	dialer := peerrpc.NewDialer(cfg.Timeout())
	prober := crawl.NewProber(dialer, cfg.Timeout(), log.Root())

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}
	engine := crawl.NewEngine(state, prober, cfg.Concurrency, limiter, log.Root())

	if err := engine.Crawl(context.Background()); err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	nodes, verdict, fee := crawl.Reconcile(state)
	start, duration := state.CrawlTimes()

	if ctx.Bool(fbasFlag.Name) {
		err := writeJSONFile(filepath.Join(outputDir, "federation_view.json"), func(f *os.File) error {
			return report.WriteFederationView(f, nodes, resolver)
		})
		if err != nil {
			return err
		}
	}
	if ctx.Bool(completeFlag.Name) {
		err := writeJSONFile(filepath.Join(outputDir, "crawl_report.json"), func(f *os.File) error {
			return report.WriteCrawlReport(f, start, duration, state.ReachableCount(), nodes, verdict, fee, resolver)
		})
		if err != nil {
			return err
		}
	}

	log.Info("crawl complete", "runId", state.RunID, "discovered", len(nodes), "reachable", state.ReachableCount(), "duration", duration)
	return nil
}

// readBootstrapFile parses a plain text bootstrap file: one PeerURI per
// line, "//"-prefixed lines treated as comments, blank lines skipped.
// The error message deliberately contains "Error opening bootstrap
// file" for a missing file, the exact substring downstream tooling
// greps for.
func readBootstrapFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Error opening bootstrap file %s: %w", path, err)
	}
	defer f.Close()

	var uris []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		uris = append(uris, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading bootstrap file %s: %w", path, err)
	}
	return uris, nil
}

func loadGeoIP(cfg crawlconfig.Config, required bool) (geoip.Resolver, error) {
	var resolver geoip.Resolver
	if cfg.ASNDB != "" {
		db, err := geoip.Load(cfg.ASNDB)
		if err != nil {
			if required {
				return resolver, fmt.Errorf("loading ASN database: %w", err)
			}
			log.Warn("could not load ASN database", "err", err)
		} else {
			resolver.ASN = db
		}
	}
	if cfg.CountryDB != "" {
		db, err := geoip.Load(cfg.CountryDB)
		if err != nil {
			if required {
				return resolver, fmt.Errorf("loading Country database: %w", err)
			}
			log.Warn("could not load Country database", "err", err)
		} else {
			resolver.Country = db
		}
	}
	return resolver, nil
}

func writeJSONFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return write(f)
}
