package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/flowfit/internal/adapters/interchange"
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/pkg/logger"
)

const (
	directoryPermission  = 0o750
	percentageMultiplier = 100
	progressInterval     = time.Second
)

// job is one profile queued for submission under its idempotency key.
type job struct {
	profile model.Profile
	key     string
}

// Run seeds the service described by cfg and verifies the team analysis
// grew by exactly the number of newly stored submissions.
func Run(ctx context.Context, cfg Config, log logger.Logger) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting flowfit seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("respondents", cfg.Respondents),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Any("seed", cfg.Seed))

	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	domains, scale, err := client.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	before, err := client.Team(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch team baseline: %w", err)
	}
	stats.RespondentsBase = before.Respondents

	jobs := make([]job, cfg.Respondents)
	for i, p := range NewGenerator(domains, scale, cfg.Seed).Profiles(cfg.Respondents) {
		jobs[i] = job{profile: p, key: uuid.NewString()}
	}
	stats.Generated = len(jobs)
	log.Info(ctx, "generated profiles", logger.Int("count", len(jobs)), logger.Int("domains", len(domains)))

	submit(ctx, client, cfg, jobs, stats, log)

	probe(ctx, client, cfg, jobs, stats, log)

	after, err := client.Team(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch team: %w", err)
	}
	stats.RespondentsNow = after.Respondents
	stats.CRI = after.CRI
	stats.Band = after.Band

	if cfg.OutputFile != "" {
		if err := saveProfiles(cfg.OutputFile, jobs); err != nil {
			log.Warn(ctx, "failed to save profiles", logger.Error(err))
		} else {
			log.Info(ctx, "profiles saved", logger.String("file", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	return stats, verify(cfg, stats)
}

// submit posts every job through a fixed pool of workers.
func submit(ctx context.Context, client *Client, cfg Config, jobs []job, stats *Stats, log logger.Logger) {
	var submitted, created, duplicate, failed atomic.Int64
	var lastReport atomic.Int64

	queue := make(chan job, cfg.Workers*workerMultiplier)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				res, _, err := client.Submit(ctx, j.profile, j.key)
				submitted.Add(1)
				switch res {
				case OutcomeCreated:
					created.Add(1)
				case OutcomeDuplicate:
					duplicate.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed", logger.String("key", j.key), logger.Error(err))
					}
				}
				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int("submitted", int(submitted.Load())),
						logger.Int("total", len(jobs)),
						logger.Int("created", int(created.Load())),
						logger.Int("duplicate", int(duplicate.Load())),
						logger.Int("failed", int(failed.Load())))
				}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, j := range jobs {
			select {
			case <-ctx.Done():
				return
			case queue <- j:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Created = int(created.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())
}

// probe resends the first submissions with their original keys; each must
// come back as a duplicate.
func probe(ctx context.Context, client *Client, cfg Config, jobs []job, stats *Stats, log logger.Logger) {
	n := min(cfg.Probes, len(jobs))
	for _, j := range jobs[:n] {
		res, _, err := client.Submit(ctx, j.profile, j.key)
		if res == OutcomeDuplicate {
			stats.ProbesConfirmed++
			continue
		}
		log.Warn(ctx, "resent submission was not reported as duplicate",
			logger.String("key", j.key), logger.Any("outcome", res), logger.Error(err))
	}
}

// verify checks the counts a healthy service must report.
func verify(cfg Config, stats *Stats) error {
	if grown := stats.RespondentsNow - stats.RespondentsBase; grown != stats.Created {
		return fmt.Errorf("%w: team grew by %d respondents, %d submissions were stored",
			ErrVerification, grown, stats.Created)
	}
	if want := min(cfg.Probes, stats.Generated); stats.ProbesConfirmed != want {
		return fmt.Errorf("%w: %d of %d resent submissions reported as duplicate",
			ErrVerification, stats.ProbesConfirmed, want)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d submissions failed", ErrVerification, stats.Failed)
	}
	return nil
}

// saveProfiles writes the generated profiles as a JSON array that the team
// upload endpoint and the report tool both accept.
func saveProfiles(filename string, jobs []job) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	profiles := make([]model.Profile, len(jobs))
	for i, j := range jobs {
		profiles[i] = j.profile
	}
	if err := interchange.EncodeJSON(f, profiles); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Created) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("created", stats.Created),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("probesConfirmed", stats.ProbesConfirmed),
		logger.Int("respondents", stats.RespondentsNow),
		logger.Float64("cri", stats.CRI),
		logger.String("band", stats.Band),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("submissionsPerSecond", perSecond))
}
