package montecarlo

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
	"github.com/domino14/castleplan/movegen"
	"github.com/domino14/castleplan/strategy"
)

var tinyGrid = strategy.Grid{Width: 3, Height: 3, Footprints: board.Footprints{
	Castle: board.Footprint{W: 2, H: 2},
	House:  board.Footprint{W: 1, H: 1},
	Way:    board.Footprint{W: 1, H: 1},
}}

var smallGrid = strategy.Grid{Width: 9, Height: 7, Footprints: board.Footprints{
	Castle: board.Footprint{W: 3, H: 2},
	House:  board.Footprint{W: 2, H: 2},
	Way:    board.Footprint{W: 1, H: 1},
}}

func withRollouts(ratings ...float64) *candidate {
	c := &candidate{}
	for _, r := range ratings {
		c.result.Push(r)
	}
	return c
}

func TestCandidateBeats(t *testing.T) {
	for _, tc := range []struct {
		name string
		c    *candidate
		old  *candidate
		want bool
	}{
		{"anything beats nothing", withRollouts(), nil, true},
		{"anything beats an unplayed candidate", withRollouts(), withRollouts(), true},
		{"unplayed never wins", withRollouts(), withRollouts(-100), false},
		{"higher average wins", withRollouts(10, 20), withRollouts(14), true},
		{"ties keep the first", withRollouts(10, 20), withRollouts(15), false},
		{"lower average loses", withRollouts(1), withRollouts(2), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(tc.c.beats(tc.old), tc.want)
		})
	}
}

func TestRolloutFillsBoard(t *testing.T) {
	is := is.New(t)
	b := tinyGrid.Empty()
	b.PlaceRect(0, 0, board.Castle)
	best := &experiment.Best{}
	rating, placed := rollout(strategy.NewRand(1), b, best)

	is.Equal(b.Rating(), rating)
	is.True(placed > 0)
	is.Equal(len(movegen.LegalOptions(b, board.House)), 0)
	is.Equal(len(movegen.LegalOptions(b, board.Way)), 0)
	bestRating, _ := best.Load()
	is.True(bestRating >= rating)
}

func TestEvaluateStopsOnTerminalChild(t *testing.T) {
	is := is.New(t)
	b := tinyGrid.Empty()
	b.PlaceRect(0, 0, board.Castle)
	for _, cell := range [][2]int{{2, 0}, {2, 1}, {2, 2}, {0, 2}, {1, 2}} {
		b.PlaceRect(cell[0], cell[1], board.Way)
	}
	c := &candidate{b: b}
	New(tinyGrid, 1).evaluate(strategy.NewRand(1), c, 500, &experiment.Best{})
	is.Equal(c.result.Iterations(), 1)
	is.Equal(c.result.Mean(), float64(b.Rating()))
}

func TestSearchFindsOptimumOnTinyBoard(t *testing.T) {
	is := is.New(t)
	r := New(tinyGrid, 21)
	best := &experiment.Best{}
	is.NoErr(r.Search(context.Background(), best))
	rating, b := best.Load()
	is.Equal(rating, 58)
	is.Equal(b.Tile(0, 0), board.Castle)
}

func TestSearchIsDeterministic(t *testing.T) {
	is := is.New(t)
	run := func() uint64 {
		r := New(smallGrid, 77)
		r.RolloutBudget = 200
		r.MaxTurns = 5
		best := &experiment.Best{}
		is.NoErr(r.Search(context.Background(), best))
		_, b := best.Load()
		return b.Fingerprint()
	}
	is.Equal(run(), run())
}

func TestSearchCastleDoesNotFit(t *testing.T) {
	is := is.New(t)
	g := strategy.Grid{Width: 2, Height: 2, Footprints: smallGrid.Footprints}
	best := &experiment.Best{}
	is.NoErr(New(g, 1).Search(context.Background(), best))
	rating, b := best.Load()
	is.Equal(rating, -20)
	is.Equal(b.OccupiedTiles(), 0)
}

func TestSearchStopsOnCancel(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(smallGrid, 1).Search(ctx, &experiment.Best{})
	is.Equal(err, context.Canceled)
}

func TestAveragesHistogram(t *testing.T) {
	is := is.New(t)
	is.Equal(len(averagesHistogram([]float64{1})), 0)
	lines := averagesHistogram([]float64{-10, -5, 0, 3, 3, 8, 12})
	is.True(len(lines) > 0)
}
