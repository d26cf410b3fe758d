// Package strategy contains the board exploration strategies that only need
// the board, the rule engine and a frontier: endless random construction,
// deque search and bucketed beam search.
package strategy

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"lukechampine.com/frand"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
)

// Grid is the board every strategy starts from.
type Grid struct {
	Width      int
	Height     int
	Footprints board.Footprints
}

// DefaultGrid is the 24x20 board of the real game.
var DefaultGrid = Grid{Width: 24, Height: 20, Footprints: board.DefaultFootprints}

// Empty returns a new board of the grid's size with nothing on it.
func (g Grid) Empty() *board.Packed {
	return board.NewPacked(g.Width, g.Height, g.Footprints)
}

// Parameters describes the footprints as run parameters.
func (g Grid) Parameters() []experiment.Parameter {
	return []experiment.Parameter{
		{Name: "footprint.castle", Value: g.Footprints.Castle.String()},
		{Name: "footprint.house", Value: g.Footprints.House.String()},
		{Name: "footprint.way", Value: g.Footprints.Way.String()},
	}
}

// ResolveSeed returns seed, or a freshly drawn non-zero seed if seed is 0.
func ResolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return frand.Uint64n(math.MaxUint64) + 1
}

// NewRand returns the deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// bounded reports whether the loop counter i is still below limit. A limit
// of 0 means no limit.
func bounded(i, limit int) bool {
	return limit <= 0 || i < limit
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
