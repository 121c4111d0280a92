// emptyletters fetches catalog metadata for a list of system numbers from
// Aleph X and writes one empty letter XML document per number.
//
//	$ emptyletters -numbers input/all_numbers.txt -exclude input/exclude.txt
//
// Raw responses are cached under cache/, subsequent runs only fetch numbers
// that are not cached yet, unless -overwrite or -refresh-before is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ubbasel/emptyletters"
)

func main() {
	defaults := emptyletters.DefaultConfig()

	configFile := flag.String("config", "", "path to TOML config file")
	numbersFile := flag.String("numbers", defaults.NumbersFile, "file with one system number per line")
	excludeFile := flag.String("exclude", defaults.ExcludeFile, "file with system numbers to skip, optional")
	cacheDir := flag.String("cache", defaults.CacheDir, "directory for raw catalog responses")
	outputDir := flag.String("output", defaults.OutputDir, "directory for generated letters")
	endpoint := flag.String("endpoint", defaults.Endpoint, "Aleph X endpoint")
	base := flag.String("base", defaults.Base, "Aleph base (collection code)")
	workers := flag.Int("w", defaults.Workers, "requests in parallel")
	timeout := flag.Int("timeout", defaults.TimeoutSeconds, "request timeout in seconds")
	maxRetries := flag.Int("retry", defaults.MaxRetries, "max attempts per request")
	refreshBefore := flag.String("refresh-before", "", "refetch cached documents written before this date, e.g. 2018-01-01")
	overwrite := flag.Bool("overwrite", false, "refetch all documents, ignoring the cache")
	verbose := flag.Bool("verbose", false, "be verbose")
	showProgress := flag.Bool("progress", true, "show a progress bar on terminals")
	showVersion := flag.Bool("v", false, "prints current program version")

	flag.Parse()

	if *showVersion {
		fmt.Println(emptyletters.Version)
		os.Exit(0)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := emptyletters.LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	// flags given explicitly win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "numbers":
			cfg.NumbersFile = *numbersFile
		case "exclude":
			cfg.ExcludeFile = *excludeFile
		case "cache":
			cfg.CacheDir = *cacheDir
		case "output":
			cfg.OutputDir = *outputDir
		case "endpoint":
			cfg.Endpoint = *endpoint
		case "base":
			cfg.Base = *base
		case "w":
			cfg.Workers = *workers
		case "timeout":
			cfg.TimeoutSeconds = *timeout
		case "retry":
			cfg.MaxRetries = *maxRetries
		case "refresh-before":
			cfg.RefreshBefore = *refreshBefore
		}
	})
	if err := cfg.ExpandPaths(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	numbers, err := emptyletters.LoadNumbers(cfg.NumbersFile, cfg.ExcludeFile)
	if err != nil {
		log.Fatal(err)
	}
	log.WithField("count", len(numbers)).Info("got numbers")

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		log.Fatal(err)
	}
	lock := flock.New(filepath.Join(cfg.CacheDir, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatal(err)
	}
	if !locked {
		log.Fatalf("cache %s is in use by another process", cfg.CacheDir)
	}
	defer lock.Unlock()

	cache, err := cfg.NewMetadataCache()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := emptyletters.Batch{
		Cache:     cache,
		OutputDir: cfg.OutputDir,
		Overwrite: *overwrite,
		Workers:   cfg.Workers,
	}
	var bar *progressbar.ProgressBar
	if *showProgress && !*verbose && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(numbers),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("metadata"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish())
		batch.Progress = func(s emptyletters.Stats) {
			_ = bar.Set(s.Requested)
		}
	} else if *verbose {
		batch.Progress = func(s emptyletters.Stats) {
			log.WithFields(log.Fields{
				"requested": s.Requested,
				"available": fmt.Sprintf("%0.1f%%", 100*s.Progress()),
			}).Debug("progress")
		}
	}

	report := batch.Run(ctx, numbers)
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Println(renderSummary(report))
	if failures := report.Failures(); len(failures) > 0 {
		fmt.Println(renderFailures(failures))
		lock.Unlock()
		os.Exit(1)
	}
}
