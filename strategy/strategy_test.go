package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
)

// tinyGrid has a single optimum: the castle in a corner and the five
// remaining cells split into two ways and three houses, rated 58.
var tinyGrid = Grid{Width: 3, Height: 3, Footprints: board.Footprints{
	Castle: board.Footprint{W: 2, H: 2},
	House:  board.Footprint{W: 1, H: 1},
	Way:    board.Footprint{W: 1, H: 1},
}}

var smallGrid = Grid{Width: 10, Height: 8, Footprints: board.Footprints{
	Castle: board.Footprint{W: 3, H: 2},
	House:  board.Footprint{W: 2, H: 2},
	Way:    board.Footprint{W: 1, H: 1},
}}

func TestResolveSeed(t *testing.T) {
	assert.Equal(t, uint64(17), ResolveSeed(17))
	assert.NotZero(t, ResolveSeed(0))
	assert.Equal(t, NewRand(5).Uint64(), NewRand(5).Uint64())
}

func endlessTrace(t *testing.T, seed uint64, steps int) []uint64 {
	t.Helper()
	best := &experiment.Best{}
	c := NewEndless(smallGrid, seed).start(best)
	trace := make([]uint64, 0, steps)
	for range steps {
		b, err := c.step(best)
		require.NoError(t, err)
		trace = append(trace, b.Fingerprint())
	}
	return trace
}

func TestEndlessIsDeterministic(t *testing.T) {
	trace1 := endlessTrace(t, 42, 600)
	trace2 := endlessTrace(t, 42, 600)
	assert.Equal(t, trace1, trace2)
	trace3 := endlessTrace(t, 43, 600)
	assert.NotEqual(t, trace1, trace3)

	search := func() (int, board.Board) {
		e := NewEndless(smallGrid, 42)
		e.MaxSteps = 600
		e.ShrinkThreshold = 150
		e.KeepPerBucket = 3
		best := &experiment.Best{}
		require.NoError(t, e.Search(context.Background(), best))
		return best.Load()
	}
	r1, b1 := search()
	r2, b2 := search()
	assert.Equal(t, r1, r2)
	assert.True(t, board.Equal(b1, b2))
}

func TestEndlessBestIsHighestSeen(t *testing.T) {
	best := &experiment.Best{}
	c := NewEndless(smallGrid, 7).start(best)
	highest := c.current.Rating()
	for range 300 {
		b, err := c.step(best)
		require.NoError(t, err)
		highest = max(highest, b.Rating())
	}
	rating, b := best.Load()
	assert.Equal(t, highest, rating)
	assert.Equal(t, 1, board.Buildings(b, board.Castle))
}

func TestEndlessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewEndless(smallGrid, 1).Search(ctx, &experiment.Best{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEndlessParameters(t *testing.T) {
	e := NewEndless(smallGrid, 99)
	params := map[string]any{}
	for _, p := range e.Parameters() {
		params[p.Name] = p.Value
	}
	assert.Equal(t, uint64(99), params["random.seed"])
	assert.Equal(t, 0.5, params["house.probability"])
	assert.Equal(t, "3x2", params["footprint.castle"])
}

func TestDeepSearchFindsOptimum(t *testing.T) {
	d := NewDeepSearch(tinyGrid, 3)
	best := &experiment.Best{}
	require.NoError(t, d.Search(context.Background(), best))
	rating, b := best.Load()
	assert.Equal(t, 58, rating)
	assert.Equal(t, 3, b.Count(board.House))
	assert.Equal(t, 2, b.Count(board.Way))
}

func TestDeepSearchExpansionLimit(t *testing.T) {
	d := NewDeepSearch(smallGrid, 3)
	d.MaxExpansions = 50
	best := &experiment.Best{}
	require.NoError(t, d.Search(context.Background(), best))
	_, b := best.Load()
	assert.NotNil(t, b)
}

func TestBoundedQueueBackpressure(t *testing.T) {
	q := &boundedQueue{rng: NewRand(1), tail: 0, upper: 3, lower: 1}
	ctx := context.Background()
	b := tinyGrid.Empty()
	for i := 0; i < 3; i++ {
		require.NoError(t, q.offer(ctx, b))
	}
	assert.False(t, q.full)

	// Reaching the bound flips the queue to full but still takes this one.
	require.NoError(t, q.offer(ctx, b))
	assert.True(t, q.full)
	assert.Equal(t, 4, q.items.Len())

	require.NoError(t, q.offer(ctx, b))
	assert.Equal(t, 4, q.items.Len())

	for i := 0; i < 3; i++ {
		q.items.PopFront()
	}
	// Draining to the lower bound clears the flag; that offer is still
	// dropped.
	require.NoError(t, q.offer(ctx, b))
	assert.False(t, q.full)
	assert.Equal(t, 1, q.items.Len())

	require.NoError(t, q.offer(ctx, b))
	assert.Equal(t, 2, q.items.Len())
}

func TestBoundedQueuePauseHonoursContext(t *testing.T) {
	q := &boundedQueue{rng: NewRand(1), upper: 1, lower: 0, pause: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.offer(ctx, tinyGrid.Empty()))
	cancel()
	assert.ErrorIs(t, q.offer(ctx, tinyGrid.Empty()), context.Canceled)
}

func TestBoundedQueueTailProbability(t *testing.T) {
	q := &boundedQueue{rng: NewRand(1), tail: 1, upper: 100, lower: 10}
	first := tinyGrid.Empty()
	second := tinyGrid.Empty()
	require.NoError(t, q.offer(context.Background(), first))
	require.NoError(t, q.offer(context.Background(), second))
	got, _ := q.items.PopFront()
	assert.Same(t, first, got)
}

func TestBeamGrow(t *testing.T) {
	s := NewBeam("RandomDeepSearchPlacement2", smallGrid, 11)
	rng := NewRand(11)
	empty := smallGrid.Empty()

	withCastle := s.grow(rng, empty)
	require.NotNil(t, withCastle)
	assert.Equal(t, 6, withCastle.Count(board.Castle))
	assert.Equal(t, 0, empty.OccupiedTiles())

	for i := 0; i < 20; i++ {
		child := s.grow(rng, withCastle)
		if child == nil {
			continue
		}
		assert.Equal(t, withCastle.OccupiedTiles()+1, child.OccupiedTiles(),
			"the only legal buildings next to a bare castle are ways")
	}
}

func TestBeamSnapshotOrder(t *testing.T) {
	buckets := beamBuckets{}
	mk := func(houses int) rated {
		b := tinyGrid.Empty()
		for i := 0; i < houses; i++ {
			b.PlaceRect(i%3, i/3, board.House)
		}
		return rate(b)
	}
	for _, n := range []int{2, 0, 1, 2} {
		buckets.insert(mk(n), 10)
	}
	// A worse board with occupancy 2.
	worse := tinyGrid.Empty()
	worse.PlaceRect(0, 0, board.Way)
	worse.PlaceRect(1, 0, board.Way)
	buckets.insert(rate(worse), 10)

	work := buckets.snapshot()
	var got []int
	var ratings []int
	for work.HasNext() {
		r := work.Next()
		got = append(got, r.occupied)
		ratings = append(ratings, r.rating)
	}
	assert.Equal(t, []int{0, 1, 2, 2, 2}, got)
	assert.Equal(t, -45, ratings[0])
	assert.Equal(t, -5*7-2, ratings[4])
	assert.Equal(t, 5, buckets.size())

	top, ok := buckets.top()
	require.True(t, ok)
	assert.Equal(t, 2*20-5*7, top.rating)
	assert.Equal(t, 2, top.occupied)

	_, ok = beamBuckets{}.top()
	assert.False(t, ok)
}

func TestBeamRespectsCapacityAndResets(t *testing.T) {
	s := NewBeam("RandomDeepSearchPlacement", smallGrid, 5)
	s.BucketCapacity = 4
	s.RoundsPerReset = 6
	s.KeepPerReset = 1
	s.MaxRounds = 12
	best := &experiment.Best{}
	require.NoError(t, s.Search(context.Background(), best))
	rating, b := best.Load()
	assert.Greater(t, rating, smallGrid.Empty().Rating())
	assert.Equal(t, rating, b.Rating())
	assert.Equal(t, "RandomDeepSearchPlacement", s.Name())
}

func TestBeamIsDeterministic(t *testing.T) {
	run := func() uint64 {
		s := NewBeam("RandomDeepSearchPlacement2", smallGrid, 8)
		s.MaxRounds = 30
		best := &experiment.Best{}
		require.NoError(t, s.Search(context.Background(), best))
		_, b := best.Load()
		return b.Fingerprint()
	}
	assert.Equal(t, run(), run())
}

func TestReferenceLayout(t *testing.T) {
	empty := DefaultGrid.Empty()
	ref := Reference(empty)

	assert.Equal(t, 0, empty.OccupiedTiles())
	assert.Equal(t, board.Castle, ref.Tile(0, 0))
	assert.Equal(t, board.Castle, ref.Tile(6, 5))
	for x := 0; x < DefaultGrid.Width; x++ {
		assert.Equal(t, board.Way, ref.Tile(x, 6), "way row, x=%d", x)
	}
	// right of the castle
	assert.Equal(t, board.Way, ref.Tile(9, 0))
	assert.Equal(t, board.House, ref.Tile(7, 0))
	assert.Equal(t, board.House, ref.Tile(8, 1))
	assert.Equal(t, board.House, ref.Tile(10, 0))
	// below the way row
	assert.Equal(t, board.Way, ref.Tile(0, 7))
	assert.Equal(t, board.House, ref.Tile(1, 7))
	assert.Equal(t, board.House, ref.Tile(3, 7))
	assert.Equal(t, board.Way, ref.Tile(5, 7))
	assert.Equal(t, board.House, ref.Tile(6, 7))
	assert.Equal(t, 1, board.Buildings(ref, board.Castle))
	assert.Greater(t, ref.Rating(), 0)
}
