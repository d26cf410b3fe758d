package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultReportInterval is how often the reporter looks at the best board.
const DefaultReportInterval = 10 * time.Second

// Strategy is a search over boards. Search offers every board it considers
// worth keeping to best and returns when it is finished, when ctx is done,
// or on failure.
type Strategy interface {
	Name() string
	Parameters() []Parameter
	Search(ctx context.Context, best *Best) error
}

type runOptions struct {
	interval time.Duration
	width    int
	height   int
}

// Option configures Run.
type Option func(*runOptions)

// WithReportInterval changes how often the reporter runs.
func WithReportInterval(d time.Duration) Option {
	return func(o *runOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithBoardSize records the grid dimensions as run parameters.
func WithBoardSize(width, height int) Option {
	return func(o *runOptions) {
		o.width, o.height = width, height
	}
}

// Run executes s. Parameters are logged first, then a reporter snapshots the
// best board every interval while it keeps changing. The reporter is stopped
// and the final best board is snapshotted on every exit path, including a
// panic inside Search. Cancellation of ctx is not an error.
func Run(ctx context.Context, s Strategy, rec Recorder, opts ...Option) (err error) {
	o := runOptions{interval: DefaultReportInterval}
	for _, opt := range opts {
		opt(&o)
	}
	logger := zerolog.Ctx(ctx)
	driver := s.Name()

	if o.width > 0 {
		rec.LogParameter("board.width", o.width)
		rec.LogParameter("board.height", o.height)
	}
	for _, p := range s.Parameters() {
		rec.LogParameter(p.Name, p.Value)
	}

	best := &Best{}
	rep := &reporter{driver: driver, best: best, rec: rec}

	reportCtx, stopReporter := context.WithCancel(ctx)
	g, reportCtx := errgroup.WithContext(reportCtx)
	g.Go(func() error {
		return rep.loop(reportCtx, o.interval)
	})

	defer func() {
		stopReporter()
		if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
			logger.Err(werr).Msg("reporter-error")
		}
		if _, b := best.Load(); b != nil {
			rec.LogSnapshot(NewSnapshot(driver, b))
		}
		logger.Info().Str("driver", driver).Msg("run-ended")
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy %s panicked: %v", driver, r)
		}
	}()

	logger.Info().Str("driver", driver).Dur("report-interval", o.interval).Msg("run-started")
	err = s.Search(ctx, best)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Debug().AnErr("err", err).Msg("search stopped by context")
		err = nil
	}
	return err
}

type reporter struct {
	driver string
	best   *Best
	rec    Recorder

	logged      bool
	fingerprint uint64
}

func (r *reporter) loop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick snapshots the best board if it changed since the last snapshot.
func (r *reporter) tick(ctx context.Context) {
	rating, b := r.best.Load()
	if b == nil {
		return
	}
	fp := b.Fingerprint()
	if r.logged && fp == r.fingerprint {
		zerolog.Ctx(ctx).Info().Str("driver", r.driver).Int("rating-to-beat", rating).
			Msg("no new best board")
		return
	}
	r.rec.LogSnapshot(NewSnapshot(r.driver, b))
	r.logged = true
	r.fingerprint = fp
}
