// Package service composes the flow-fit engine with storage, idempotency,
// logging and metrics. It implements the dependencies of the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/flowfit/internal/adapters/interchange"
	"github.com/okian/flowfit/internal/adapters/mq/queue"
	"github.com/okian/flowfit/internal/adapters/repository"
	"github.com/okian/flowfit/internal/domain/catalog"
	"github.com/okian/flowfit/internal/domain/dedupe"
	"github.com/okian/flowfit/internal/domain/fit"
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/internal/domain/perception"
	"github.com/okian/flowfit/internal/domain/person"
	"github.com/okian/flowfit/internal/domain/report"
	"github.com/okian/flowfit/internal/domain/team"
	"github.com/okian/flowfit/pkg/logger"
	"github.com/okian/flowfit/pkg/metrics"
)

// Evaluation is the personal result returned for one profile.
type Evaluation struct {
	Result person.Result     `json:"result"`
	Plan   []report.PlanItem `json:"plan"`
	Report string            `json:"report"`
}

// TeamAnalysis is the team result returned for a set of profiles.
type TeamAnalysis struct {
	Result team.Result `json:"result"`
	Advice string      `json:"advice"`
	Report string      `json:"report"`
}

// DomainInfo is the public part of a catalog domain.
type DomainInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
	Theory      string `json:"theory"`
}

// CatalogView is what a survey form needs to render its questions.
type CatalogView struct {
	Domains        []DomainInfo       `json:"domains"`
	TimePerception []perception.Entry `json:"time_perception"`
	SkillRange     [2]int             `json:"skill_range"`
	ChallengeRange [2]int             `json:"challenge_range"`
}

// Service implements the API dependencies of the flow-fit system.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog *catalog.Catalog
	store   repository.Store
	tracker dedupe.Tracker
	events  Publisher

	// Configuration
	catalogPath string
	storeDriver string
	storeDSN    string
	dedupeSize  int
	now         func() time.Time

	// State
	started bool

	logger logger.Logger
}

// Publisher receives an event for every newly stored submission.
type Publisher interface {
	Enqueue(ctx context.Context, e queue.Event) bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the domain catalog. It takes precedence over WithCatalogPath.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithCatalogPath loads the catalog from a YAML file on Start.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithStore sets a ready submission store. The service closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithStoreDriver selects the store opened on Start when none was given.
func WithStoreDriver(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
			s.storeDSN = dsn
		}
	}
}

// WithDedupeSize sets the size of the submission idempotency tracker.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithEvents publishes an event after every stored submission.
func WithEvents(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver: repository.DriverMemory,
		dedupeSize:  50_000,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the catalog, opens the store and builds the tracker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting flowfit service...")

	if s.catalog == nil {
		if s.catalogPath != "" {
			c, err := catalog.Load(s.catalogPath)
			if err != nil {
				return err
			}
			s.catalog = c
			s.logger.Info(ctx, "loaded catalog", logger.String("path", s.catalogPath), logger.Int("domains", c.Len()))
		} else {
			s.catalog = catalog.Default()
		}
	}

	if s.store == nil {
		st, err := repository.Open(ctx, s.storeDriver, s.storeDSN)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = st
	}
	s.tracker = dedupe.NewInMemory(dedupe.WithMaxSize(s.dedupeSize))

	s.started = true
	s.logger.Info(ctx, "flowfit service started",
		logger.String("store", s.storeDriver),
		logger.Int("domains", s.catalog.Len()),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping flowfit service...")
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing store failed", logger.Error(err))
		}
		s.store = nil
	}
	s.started = false
	s.logger.Info(ctx, "flowfit service stopped")
}

func (s *Service) deps() (*catalog.Catalog, repository.Store, dedupe.Tracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.catalog, s.store, s.tracker, nil
}

// Evaluate validates a complete profile and returns its personal result,
// development plan and text report. Nothing is stored.
func (s *Service) Evaluate(ctx context.Context, in model.Profile) (Evaluation, error) {
	cat, _, _, err := s.deps()
	if err != nil {
		return Evaluation{}, err
	}
	p, err := model.NewProfile(cat, in.Name, in.Ratings)
	if err != nil {
		return Evaluation{}, s.rejected(ctx, err)
	}
	agg, err := person.Aggregate(cat, p)
	if err != nil {
		return Evaluation{}, s.rejected(ctx, err)
	}
	for _, d := range agg.Domains {
		metrics.RecordZone(d.Fit.Zone.String())
	}

	start := time.Now()
	text, err := report.ComposePersonal(cat, p, agg)
	if err != nil {
		return Evaluation{}, err
	}
	metrics.RecordComposeLatency("personal", sinceMs(start))

	s.logger.Debug(ctx, "profile evaluated",
		logger.Float64("averageFit", agg.AverageFit),
		logger.Int("inFlow", len(agg.InFit)),
	)
	return Evaluation{Result: agg, Plan: report.Plan(agg), Report: text}, nil
}

// Submit validates and stores a complete profile. key is an optional client
// idempotency key stored with the submission; resending with a known key
// returns the stored submission together with ErrDuplicateSubmission. Without
// a key every call stores a new respondent, even for identical answers.
func (s *Service) Submit(ctx context.Context, in model.Profile, key string) (repository.Submission, error) {
	cat, store, tracker, err := s.deps()
	if err != nil {
		return repository.Submission{}, err
	}
	p, err := model.NewProfile(cat, in.Name, in.Ratings)
	if err != nil {
		return repository.Submission{}, s.rejected(ctx, err)
	}
	if err := p.CheckComplete(cat); err != nil {
		return repository.Submission{}, s.rejected(ctx, err)
	}

	sub := repository.Submission{ID: uuid.NewString(), CreatedAt: s.now().UTC(), Profile: p, IdempotencyKey: key}

	if key != "" {
		if prevID, dup := tracker.Claim(ctx, key, sub.ID); dup {
			return s.duplicate(ctx, store, prevID, key)
		}
	}

	if err := store.Save(ctx, sub); err != nil {
		if key != "" {
			tracker.Release(ctx, key)
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Stored by an earlier process; remember it for the next resend.
			prev, gerr := store.GetByKey(ctx, key)
			if gerr == nil {
				tracker.Claim(ctx, key, prev.ID)
			}
			return s.duplicate(ctx, store, prev.ID, key)
		}
		s.logger.Error(ctx, "storing submission failed", logger.String("id", sub.ID), logger.Error(err))
		return repository.Submission{}, fmt.Errorf("save submission: %w", err)
	}
	metrics.RecordSubmission()
	s.logger.Info(ctx, "submission stored", logger.String("id", sub.ID), logger.Int("ratings", len(sub.Ratings)))
	if s.events != nil && !s.events.Enqueue(ctx, queue.Event{SubmissionID: sub.ID, StoredAt: sub.CreatedAt}) {
		s.logger.Warn(ctx, "submission event dropped", logger.String("id", sub.ID))
	}
	return sub, nil
}

// duplicate reports a resend of the submission stored under key.
func (s *Service) duplicate(ctx context.Context, store repository.Store, prevID, key string) (repository.Submission, error) {
	metrics.RecordDuplicateSubmission()
	s.logger.Debug(ctx, "duplicate submission detected", logger.String("id", prevID))
	prev, err := store.GetByKey(ctx, key)
	if err != nil {
		return repository.Submission{ID: prevID}, ErrDuplicateSubmission
	}
	return prev, ErrDuplicateSubmission
}

// Submission returns a stored submission.
func (s *Service) Submission(ctx context.Context, id string) (repository.Submission, error) {
	_, store, _, err := s.deps()
	if err != nil {
		return repository.Submission{}, err
	}
	return store.Get(ctx, id)
}

// TeamReport analyses every stored submission and publishes the CRI gauge.
func (s *Service) TeamReport(ctx context.Context) (TeamAnalysis, error) {
	_, store, _, err := s.deps()
	if err != nil {
		return TeamAnalysis{}, err
	}
	subs, err := store.List(ctx)
	if err != nil {
		return TeamAnalysis{}, fmt.Errorf("list submissions: %w", err)
	}
	profiles := make([]model.Profile, len(subs))
	for i, sub := range subs {
		profiles[i] = sub.Profile
	}
	out, err := s.TeamReportFrom(ctx, profiles)
	if err != nil {
		return TeamAnalysis{}, err
	}
	metrics.UpdateTeam(out.Result.CRI, out.Result.Respondents)
	return out, nil
}

// TeamReportFrom analyses the given profiles, which may each cover only part
// of the catalog.
func (s *Service) TeamReportFrom(ctx context.Context, profiles []model.Profile) (TeamAnalysis, error) {
	cat, _, _, err := s.deps()
	if err != nil {
		return TeamAnalysis{}, err
	}
	snap := model.Snapshot{Profiles: make([]model.Profile, 0, len(profiles))}
	for _, in := range profiles {
		p, err := model.NewProfile(cat, in.Name, in.Ratings)
		if err != nil {
			return TeamAnalysis{}, s.rejected(ctx, err)
		}
		snap.Profiles = append(snap.Profiles, p)
	}

	agg, err := team.Aggregate(cat, snap)
	if err != nil {
		return TeamAnalysis{}, s.rejected(ctx, err)
	}

	start := time.Now()
	text, err := report.ComposeTeam(cat, snap, agg)
	if err != nil {
		return TeamAnalysis{}, err
	}
	metrics.RecordComposeLatency("team", sinceMs(start))

	s.logger.Debug(ctx, "team analysed",
		logger.Int("respondents", agg.Respondents),
		logger.Float64("cri", agg.CRI),
		logger.String("band", string(agg.Band)),
	)
	return TeamAnalysis{Result: agg, Advice: agg.Band.Advice(), Report: text}, nil
}

// Export writes every stored submission to w. CSV uses the wide layout in
// catalog order; JSON writes the submission records.
func (s *Service) Export(ctx context.Context, f interchange.Format, w io.Writer) error {
	cat, store, _, err := s.deps()
	if err != nil {
		return err
	}
	subs, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	switch f {
	case interchange.FormatCSV:
		profiles := make([]model.Profile, len(subs))
		for i, sub := range subs {
			profiles[i] = sub.Profile
		}
		return interchange.EncodeCSV(w, cat.IDs(), profiles)
	case interchange.FormatJSON:
		if subs == nil {
			subs = []repository.Submission{}
		}
		return interchange.EncodeJSON(w, subs)
	default:
		return fmt.Errorf("%w: export as %q", interchange.ErrUnsupportedFormat, f)
	}
}

// Catalog describes the rated domains and scales.
func (s *Service) Catalog() (CatalogView, error) {
	cat, _, _, err := s.deps()
	if err != nil {
		return CatalogView{}, err
	}
	domains := cat.Domains()
	v := CatalogView{
		Domains:        make([]DomainInfo, len(domains)),
		TimePerception: perception.Entries(),
		SkillRange:     [2]int{fit.MinLevel, fit.MaxLevel},
		ChallengeRange: [2]int{fit.MinLevel, fit.MaxLevel},
	}
	for i, d := range domains {
		v.Domains[i] = DomainInfo{ID: d.ID, Label: d.Label, Explanation: d.Explanation, Theory: d.Theory}
	}
	return v, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"storeDriver": s.storeDriver,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		stats["domains"] = s.catalog.Len()
		stats["trackedKeys"] = s.tracker.Size()
		if n, err := s.store.Count(ctx); err == nil {
			stats["submissions"] = n
		}
	}
	return stats
}

// rejected counts and logs an input error before returning it.
func (s *Service) rejected(ctx context.Context, err error) error {
	kind := errorKind(err)
	metrics.RecordValidationError(kind)
	s.logger.Debug(ctx, "input rejected", logger.String("kind", kind), logger.Error(err))
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrRange):
		return "range"
	case errors.Is(err, model.ErrUnknownDomain):
		return "unknown_domain"
	case errors.Is(err, model.ErrIncompleteProfile):
		return "incomplete_profile"
	case errors.Is(err, model.ErrDuplicateRating):
		return "duplicate_rating"
	case errors.Is(err, model.ErrMissingField):
		return "missing_field"
	case errors.Is(err, model.ErrEmptySnapshot):
		return "empty_snapshot"
	default:
		return "other"
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
