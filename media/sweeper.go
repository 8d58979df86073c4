package media

import (
	"context"
	"errors"
	"time"

	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically retries the removal of queued orphans.
type Sweeper struct {
	host        Host
	queue       Queue
	interval    time.Duration
	batchSize   int
	maxAttempts int
	logger      zerolog.Logger
}

type SweeperOption func(*Sweeper)

func WithInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithBatchSize(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithMaxAttempts(n int) SweeperOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func NewSweeper(host Host, queue Queue, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		host:        host,
		queue:       queue,
		interval:    5 * time.Minute,
		batchSize:   50,
		maxAttempts: 5,
		logger:      log.With().Str("component", "orphan-sweeper").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Int("maxAttempts", s.maxAttempts).Msg("Orphan sweeper started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Orphan sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Orphan sweep failed")
			}
		}
	}
}

// Sweep retries up to one batch of orphans and returns how many were removed.
// Failures go back on the queue until they reach the attempt limit, including
// when the sweep stops early on a queue error.
func (s *Sweeper) Sweep(ctx context.Context) (removed int, err error) {
	var retry []Orphan
	// Requeued after the batch so one sweep never retries the same orphan twice.
	defer func() {
		if pushErr := s.requeue(context.WithoutCancel(ctx), retry); pushErr != nil && err == nil {
			err = pushErr
		}
	}()

	for i := 0; i < s.batchSize; i++ {
		orphan, ok, popErr := s.queue.Pop(ctx)
		if popErr != nil {
			return removed, popErr
		}
		if !ok {
			break
		}

		if removeErr := s.host.Remove(ctx, orphan.ID); removeErr != nil {
			orphan.Attempts++
			orphan.FailedAt = time.Now().UTC()
			if orphan.Attempts >= s.maxAttempts {
				s.logger.Error().Err(errs.NewMediaRemoveError(s.host.Name(), orphan.ID, removeErr)).Str("url", orphan.URL).
					Int("attempts", orphan.Attempts).Msg("Giving up on orphaned image")
				continue
			}
			retry = append(retry, orphan)
			continue
		}
		removed++
		s.logger.Info().Str("id", orphan.ID).Int("attempts", orphan.Attempts).Msg("Orphaned image removed")
	}
	return removed, nil
}

// requeue pushes every orphan back, even after a failed push.
func (s *Sweeper) requeue(ctx context.Context, orphans []Orphan) error {
	var failed error
	for _, orphan := range orphans {
		if err := s.queue.Push(ctx, orphan); err != nil {
			s.logger.Error().Err(err).Str("id", orphan.ID).Str("url", orphan.URL).Msg("Could not requeue orphaned image")
			failed = errors.Join(failed, err)
		}
	}
	return failed
}
