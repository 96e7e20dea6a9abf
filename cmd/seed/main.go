// Command seed fills a running flowfit server with generated survey
// submissions and checks the team analysis it reports back.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/flowfit/internal/seed"
	"github.com/okian/flowfit/pkg/logger"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitMismatch = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg := seed.DefaultConfig()
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the flowfit server")
	fs.IntVar(&cfg.Respondents, "respondents", cfg.Respondents, "Number of profiles to generate and submit")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent submitters")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed; 0 derives one from the clock")
	fs.IntVar(&cfg.Probes, "probes", cfg.Probes, "Submissions resent to check duplicate handling")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the generated profiles to this JSON file")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Log every failed submission")
	logFormat := fs.String("log-format", "text", "Log format: text or json")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	log := logger.New(logger.WithWriter(stderr), logger.WithFormat(*logFormat)).Named("seed")
	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "invalid flags", logger.Error(err))
		return exitUsage
	}

	if _, err := seed.Run(ctx, cfg, log); err != nil {
		if errors.Is(err, seed.ErrVerification) {
			log.Warn(ctx, "verification failed", logger.Error(err))
			return exitMismatch
		}
		log.Error(ctx, "seed run failed", logger.Error(err))
		return exitFailure
	}
	log.Info(ctx, "seed run completed")
	return exitOK
}
