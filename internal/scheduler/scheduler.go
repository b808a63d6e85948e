package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"TickerLens/internal/collector"
	"TickerLens/internal/logger"
	"TickerLens/internal/metrics"
	"TickerLens/internal/notifier"
	"TickerLens/internal/session"
	"TickerLens/internal/strategy"
)

// Sender delivers a formatted message to the configured chat.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

const (
	defaultConcurrency = 4
	sendRetries        = 3
)

// Scheduler runs the watchlist digest on a cron schedule and answers bot
// commands.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   *collector.Collector
	Notifier    Sender
	Sessions    *session.Store
	Watchlist   []string
	Concurrency int
	Ctx         context.Context

	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// NewScheduler creates a new Scheduler. sender may be nil, in which case
// digests are only logged.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, watchlist []string, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Notifier:    sender,
		Sessions:    session.NewStore(),
		Watchlist:   watchlist,
		Concurrency: defaultConcurrency,
		Ctx:         ctx,
		metrics:     m,
		logger:      logger.Component("scheduler"),
		now:         time.Now,
	}
}

// Register schedules the digest task.
func (s *Scheduler) Register(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("Scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// RunDigestNow builds and sends the digest immediately.
func (s *Scheduler) RunDigestNow() (string, error) {
	return s.runDigest(s.Ctx)
}

func (s *Scheduler) digestTask() {
	if _, err := s.runDigest(s.Ctx); err != nil {
		s.logger.Error().Err(err).Msg("Digest failed")
	}
}

// runDigest analyses every watchlist symbol concurrently. A failing symbol
// becomes an error line; the digest only fails when every symbol fails or
// the message cannot be delivered.
func (s *Scheduler) runDigest(ctx context.Context) (string, error) {
	s.logger.Info().Strs("watchlist", s.Watchlist).Msg("Running digest")
	entries := make([]notifier.DigestEntry, len(s.Watchlist))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, sym := range s.Watchlist {
		g.Go(func() error {
			entries[i].Symbol = sym
			a, err := s.Collector.Collect(gctx, sym)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", sym).Msg("Digest symbol failed")
				entries[i].Err = err
				return nil
			}
			entries[i].Symbol = a.Symbol
			entries[i].Analysis = a
			entries[i].Outlook = strategy.Evaluate(a.Symbol, a.Snapshot)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, e := range entries {
		if e.Err != nil {
			failed++
		}
	}
	report := notifier.FormatDigest(s.now(), entries)

	var err error
	if len(entries) > 0 && failed == len(entries) {
		err = fmt.Errorf("all %d watchlist symbols failed: %w", failed, entries[0].Err)
	}
	if sendErr := s.trySend(ctx, report); sendErr != nil && err == nil {
		err = sendErr
	}
	s.metrics.IncDigest(err)
	s.logger.Info().Int("symbols", len(entries)).Int("failed", failed).Msg("Digest finished")
	return report, err
}

func (s *Scheduler) trySend(ctx context.Context, text string) error {
	if s.Notifier == nil {
		s.logger.Info().Msg("Telegram disabled, digest not sent")
		return nil
	}
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.logger.Error().Err(err).Msg("Send notification failed")
		return err
	}
	return nil
}
