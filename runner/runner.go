// Package runner turns a configuration into a running strategy with its
// recorders attached.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/config"
	"github.com/domino14/castleplan/experiment"
	"github.com/domino14/castleplan/montecarlo"
	"github.com/domino14/castleplan/store"
	"github.com/domino14/castleplan/strategy"
)

// ErrUnknownStrategy is returned for a strategy name that is not registered.
var ErrUnknownStrategy = errors.New("unknown strategy")

type factory func(cfg *config.Config, g strategy.Grid) experiment.Strategy

var registry = map[string]factory{
	"EndlessConstruction": func(cfg *config.Config, g strategy.Grid) experiment.Strategy {
		s := strategy.NewEndless(g, cfg.Seed)
		s.HouseProbability = cfg.Endless.HouseProbability
		s.ShrinkThreshold = cfg.Endless.ShrinkThreshold
		s.KeepPerBucket = cfg.Endless.KeepPerBucket
		s.MaxSteps = cfg.MaxSteps
		return s
	},
	"DeepSearchPlacement": func(cfg *config.Config, g strategy.Grid) experiment.Strategy {
		s := strategy.NewDeepSearch(g, cfg.Seed)
		s.TailProbability = cfg.Deep.TailProbability
		s.UpperBound = cfg.Deep.UpperBound
		s.LowerBound = cfg.Deep.LowerBound
		s.Pause = cfg.Deep.Pause
		s.MaxExpansions = cfg.MaxSteps
		return s
	},
	"RandomDeepSearchPlacement":  beam("RandomDeepSearchPlacement"),
	"RandomDeepSearchPlacement2": beam("RandomDeepSearchPlacement2"),
	"MonteCarloSearchTree": func(cfg *config.Config, g strategy.Grid) experiment.Strategy {
		s := montecarlo.New(g, cfg.Seed)
		s.RolloutBudget = cfg.MonteCarlo.RolloutBudget
		s.MaxTurns = cfg.MaxSteps
		return s
	},
}

func beam(name string) factory {
	return func(cfg *config.Config, g strategy.Grid) experiment.Strategy {
		s := strategy.NewBeam(name, g, cfg.Seed)
		s.BucketCapacity = cfg.Beam.BucketCapacity
		s.KeepPerReset = cfg.Beam.KeepPerReset
		s.RoundsPerReset = cfg.Beam.RoundsPerReset
		s.MaxRounds = cfg.MaxSteps
		return s
	}
}

// Names lists the registered strategies.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func grid(cfg *config.Config) strategy.Grid {
	return strategy.Grid{Width: cfg.Width, Height: cfg.Height, Footprints: cfg.Footprints}
}

// NewStrategy builds the strategy cfg.Strategy names.
func NewStrategy(cfg *config.Config) (experiment.Strategy, error) {
	f, ok := registry[cfg.Strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownStrategy, cfg.Strategy, Names())
	}
	return f(cfg, grid(cfg)), nil
}

// OpenRecorder builds the recorders cfg asks for. The log recorder is
// always present. done releases whatever was opened.
func OpenRecorder(ctx context.Context, cfg *config.Config, driver string) (rec experiment.Recorder, done func() error, err error) {
	recs := store.Multi{store.NewLogRecorder(*zerolog.Ctx(ctx), cfg.Footprints)}
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for _, c := range slices.Backward(closers) {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, closeAll())
		}
	}()

	if cfg.YAMLPath != "" {
		f, ferr := os.OpenFile(cfg.YAMLPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if ferr != nil {
			return nil, nil, fmt.Errorf("opening yaml log: %w", ferr)
		}
		yr := store.NewYAMLRecorder(f)
		closers = append(closers, func() error {
			return errors.Join(yr.Err(), f.Close())
		})
		recs = append(recs, yr)
	}
	if cfg.SQLitePath != "" {
		sr, serr := store.OpenSQLite(ctx, cfg.SQLitePath, driver)
		if serr != nil {
			return nil, nil, serr
		}
		closers = append(closers, sr.Close)
		recs = append(recs, sr)
	}
	if cfg.NATSURL != "" {
		nr, nerr := store.DialNATS(cfg.NATSURL, cfg.NATSPrefix)
		if nerr != nil {
			return nil, nil, nerr
		}
		closers = append(closers, nr.Close)
		recs = append(recs, nr)
	}
	return recs, closeAll, nil
}

// Run runs the configured strategy until it finishes or ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	s, err := NewStrategy(cfg)
	if err != nil {
		return err
	}
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		ctx = log.Logger.WithContext(ctx)
		logger = zerolog.Ctx(ctx)
	}

	logReference(logger, grid(cfg))

	rec, closeRec, err := OpenRecorder(ctx, cfg, s.Name())
	if err != nil {
		return err
	}
	runErr := experiment.Run(ctx, s, rec,
		experiment.WithBoardSize(cfg.Width, cfg.Height),
		experiment.WithReportInterval(cfg.ReportInterval))
	return errors.Join(runErr, closeRec())
}

func logReference(logger *zerolog.Logger, g strategy.Grid) {
	ref := strategy.Reference(g.Empty())
	logger.Info().Int("rating", ref.Rating()).Msg("Reference to be challenged")
	for _, line := range board.Display(ref) {
		logger.Info().Msg(line)
	}
}
