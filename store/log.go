// Package store holds the recorders a run can report to.
package store

import (
	"github.com/rs/zerolog"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
)

// LogRecorder writes parameters and snapshots to a zerolog logger. Boards
// are printed one row per line.
type LogRecorder struct {
	logger     zerolog.Logger
	footprints board.Footprints
}

func NewLogRecorder(logger zerolog.Logger, fp board.Footprints) *LogRecorder {
	return &LogRecorder{logger: logger, footprints: fp}
}

func (r *LogRecorder) LogParameter(name string, value any) {
	r.logger.Info().Str("name", name).Interface("value", value).Msg("parameter")
}

func (r *LogRecorder) LogSnapshot(s experiment.Snapshot) {
	r.logger.Info().Str("driver", s.Driver).Int("rating", s.Rating).Int("houses", s.Houses).
		Int("ways", s.Ways).Int("tiles", s.Tiles).Uint64("mem-usage", s.MemUsage).
		Uint64("boards", s.Boards).Msg("best board until now")
	b, err := s.Board(r.footprints)
	if err != nil {
		r.logger.Err(err).Msg("cannot decode snapshot")
		return
	}
	for _, line := range board.Display(b) {
		r.logger.Info().Msg(line)
	}
}
