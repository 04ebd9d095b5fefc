package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/bullionwatch/collector/internal/config"
	"github.com/bullionwatch/collector/internal/domain"
	"github.com/bullionwatch/collector/internal/ports"
)

// RunOutcome is the internal result of one ingestion run. The scheduler
// never sees it: RunScheduled converts every outcome into log entries and
// a neutral return, so a failed run costs a missed update, not a crashed
// job.
type RunOutcome struct {
	RunID    string
	Snapshot *domain.RatesSnapshot
	Wrote    bool
	Err      error
}

// IngestService runs the scheduled gold/silver ingestion pipeline:
// concurrent fetch, validation, merge-upsert into the store, then
// best-effort cache mirror and history append.
type IngestService struct {
	provider ports.RateProvider
	store    ports.RatesStore
	cache    ports.RatesCache
	history  ports.HistoryRecorder
	logger   *slog.Logger

	goldSymbol   string
	silverSymbol string
	source       string
	runTimeout   time.Duration
	schedule     string
	timezone     string

	cron *cron.Cron
}

func NewIngestService(
	provider ports.RateProvider,
	store ports.RatesStore,
	cache ports.RatesCache,
	history ports.HistoryRecorder,
	cfg *config.Config,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		provider:     provider,
		store:        store,
		cache:        cache,
		history:      history,
		logger:       logger,
		goldSymbol:   cfg.GoldSymbol,
		silverSymbol: cfg.SilverSymbol,
		source:       cfg.RateSource,
		runTimeout:   cfg.RunTimeout,
		schedule:     cfg.FetchSchedule,
		timezone:     cfg.ScheduleTimezone,
	}
}

// Run executes one complete ingestion pass. Both instrument fetches run
// concurrently; a failure on either leg cancels the other and discards
// the run. There is no partial-success path and no intra-run retry: the
// next scheduled trigger is the retry mechanism.
func (s *IngestService) Run(ctx context.Context) RunOutcome {
	out := RunOutcome{RunID: uuid.NewString()}

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	var gold, silver domain.QuoteReading
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gold, err = s.provider.Quote(gctx, s.goldSymbol)
		return err
	})
	g.Go(func() error {
		var err error
		silver, err = s.provider.Quote(gctx, s.silverSymbol)
		return err
	})
	if err := g.Wait(); err != nil {
		out.Err = fmt.Errorf("fetch: %w", err)
		return out
	}

	// The provider validates on parse; re-check the invariant here so a
	// misbehaving provider implementation can never reach the store.
	if err := gold.Validate(); err != nil {
		out.Err = fmt.Errorf("validate %s: %w", gold.Symbol, err)
		return out
	}
	if err := silver.Validate(); err != nil {
		out.Err = fmt.Errorf("validate %s: %w", silver.Symbol, err)
		return out
	}

	snap := domain.NewSnapshot(gold, silver, s.source, time.Now())
	out.Snapshot = snap

	if err := s.store.UpsertLatest(ctx, snap); err != nil {
		out.Err = fmt.Errorf("persist: %w", err)
		return out
	}
	out.Wrote = true

	// Cache and history are best-effort: the record of truth is already
	// written.
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, snap); err != nil {
			s.logger.Warn("failed to cache snapshot", "run_id", out.RunID, "error", err)
		}
	}
	if s.history != nil {
		if err := s.history.Record(ctx, snap); err != nil {
			s.logger.Warn("failed to record history", "run_id", out.RunID, "error", err)
		} else if err := s.history.Flush(ctx); err != nil {
			s.logger.Warn("failed to flush history", "run_id", out.RunID, "error", err)
		}
	}

	return out
}

// RunScheduled is the boundary adapter between the pipeline and the
// scheduler: it never returns an error and never panics, so the scheduler
// always observes a neutral completion regardless of internal outcome.
func (s *IngestService) RunScheduled() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ingestion run panicked", "panic", r)
		}
	}()

	out := s.Run(context.Background())
	logger := s.logger.With("run_id", out.RunID)

	if out.Err != nil {
		logger.Error("ingestion run failed", "error", out.Err)
		return
	}

	logger.Info("rates updated",
		"gold", out.Snapshot.GoldPrice,
		"silver", out.Snapshot.SilverPrice,
		"source", out.Snapshot.Source,
	)
}

// Start registers the cron schedule in the configured time zone and
// primes the record with one immediate run.
func (s *IngestService) Start() error {
	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(loc))
	if _, err := s.cron.AddFunc(s.schedule, s.RunScheduled); err != nil {
		return fmt.Errorf("register schedule %q: %w", s.schedule, err)
	}

	s.logger.Info("ingestion scheduled",
		"schedule", s.schedule,
		"timezone", s.timezone,
		"gold", s.goldSymbol,
		"silver", s.silverSymbol,
	)

	go s.RunScheduled()
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for any in-flight run to finish.
func (s *IngestService) Stop() error {
	if s.cron == nil {
		return nil
	}
	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.history != nil {
		if err := s.history.Close(); err != nil {
			return fmt.Errorf("close history recorder: %w", err)
		}
	}
	return nil
}
