package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/loanledger/internal/infrastructure/metrics"
	"github.com/iho/loanledger/internal/usecase"
)

// SweepRunner is the slice of the delinquency use case the worker needs.
type SweepRunner interface {
	RunSweep(ctx context.Context, asOf time.Time) (*usecase.SweepReport, error)
}

// Sweeper runs the delinquency sweep on a fixed interval. The sweep is also
// exposed over HTTP for ad-hoc runs; this worker covers the nightly case.
type Sweeper struct {
	delinquencyUC SweepRunner
	logger        zerolog.Logger
	metrics       *metrics.Metrics
	interval      time.Duration
}

// Config for Sweeper.
type Config struct {
	DelinquencyUC SweepRunner
	Logger        zerolog.Logger
	Metrics       *metrics.Metrics
	Interval      time.Duration
}

// NewSweeper creates a new Sweeper.
func NewSweeper(cfg Config) *Sweeper {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}

	return &Sweeper{
		delinquencyUC: cfg.DelinquencyUC,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		interval:      cfg.Interval,
	}
}

// Start begins the sweep worker. It runs continuously until the context is
// cancelled. The first sweep runs immediately so a restarted service does
// not wait a full interval to catch up on overdue accounts.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("delinquency sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("delinquency sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	started := time.Now()

	report, err := s.delinquencyUC.RunSweep(ctx, started.UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("delinquency sweep failed")
		return
	}

	if s.metrics != nil {
		s.metrics.SweepsRun.Inc()
		s.metrics.SweepDuration.Observe(time.Since(started).Seconds())
		s.metrics.AccountsOverdue.Set(float64(report.AccountsOverdue))
		s.metrics.EntriesOverdue.Set(float64(report.EntriesOverdue))
		s.metrics.AccountsDefaulted.Add(float64(report.AccountsDefaulted))
	}

	s.logger.Info().
		Int("accounts_checked", report.AccountsChecked).
		Int("accounts_overdue", report.AccountsOverdue).
		Int("accounts_defaulted", report.AccountsDefaulted).
		Int("entries_overdue", report.EntriesOverdue).
		Dur("took", time.Since(started)).
		Msg("delinquency sweep completed")
}
