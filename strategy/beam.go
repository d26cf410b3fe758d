package strategy

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
	"github.com/domino14/castleplan/frontier"
	"github.com/domino14/castleplan/movegen"
)

// rated caches the two numbers a beam bucket is ordered by.
type rated struct {
	b        board.Board
	rating   int
	occupied int
}

func rate(b board.Board) rated {
	return rated{b: b, rating: b.Rating(), occupied: b.OccupiedTiles()}
}

func compareRated(a, b rated) int {
	if c := cmp.Compare(a.rating, b.rating); c != 0 {
		return c
	}
	return cmp.Compare(a.occupied, b.occupied)
}

// Beam keeps the best boards of every occupancy in bounded buckets. Each
// round, every kept board gets one random building stamped onto a copy of
// it and the copy is filed back into the buckets. Every RoundsPerReset
// rounds each bucket is cut down to its KeepPerReset best boards.
type Beam struct {
	Grid           Grid
	Seed           uint64
	BucketCapacity int
	KeepPerReset   int
	RoundsPerReset int
	// MaxRounds stops the search after that many rounds; 0 runs until ctx
	// is done.
	MaxRounds int

	name string
}

// NewBeam returns a beam search registered under name.
func NewBeam(name string, g Grid, seed uint64) *Beam {
	return &Beam{
		Grid:           g,
		Seed:           ResolveSeed(seed),
		BucketCapacity: 300,
		KeepPerReset:   2,
		RoundsPerReset: 500,
		name:           name,
	}
}

func (s *Beam) Name() string { return s.name }

func (s *Beam) Parameters() []experiment.Parameter {
	return append(s.Grid.Parameters(),
		experiment.Parameter{Name: "random.seed", Value: s.Seed},
		experiment.Parameter{Name: "beam.bucket-capacity", Value: s.BucketCapacity},
		experiment.Parameter{Name: "beam.keep-per-reset", Value: s.KeepPerReset},
		experiment.Parameter{Name: "beam.rounds-per-reset", Value: s.RoundsPerReset},
	)
}

type beamBuckets map[int]*frontier.Ranked[rated]

func (bb beamBuckets) insert(r rated, capacity int) {
	bucket, ok := bb[r.occupied]
	if !ok {
		bucket = frontier.NewRanked(capacity, compareRated)
		bb[r.occupied] = bucket
	}
	bucket.Insert(r)
}

// snapshot loads a work list with every kept board, the lowest occupancy
// coming out first.
func (bb beamBuckets) snapshot() *frontier.WorkList[rated] {
	keys := lo.Keys(bb)
	slices.Sort(keys)
	work := &frontier.WorkList[rated]{}
	for i := len(keys) - 1; i >= 0; i-- {
		items := slices.Collect(bb[keys[i]].All())
		for j := len(items) - 1; j >= 0; j-- {
			work.Offer(items[j])
		}
	}
	return work
}

// top is the best kept board over all buckets.
func (bb beamBuckets) top() (rated, bool) {
	var best rated
	found := false
	for _, bucket := range bb {
		if r, ok := bucket.Highest(); ok && (!found || compareRated(r, best) > 0) {
			best, found = r, true
		}
	}
	return best, found
}

func (bb beamBuckets) size() int {
	return lo.SumBy(lo.Values(bb), func(r *frontier.Ranked[rated]) int { return r.Len() })
}

func (s *Beam) Search(ctx context.Context, best *experiment.Best) error {
	logger := zerolog.Ctx(ctx)
	rng := NewRand(s.Seed)
	buckets := beamBuckets{}

	start := rate(s.Grid.Empty())
	buckets.insert(start, s.BucketCapacity)
	best.Offer(start.b)

	sinceReset := 0
	for round := 0; bounded(round, s.MaxRounds); round++ {
		work := buckets.snapshot()
		parents := work.Len()
		for work.HasNext() {
			if err := ctx.Err(); err != nil {
				return err
			}
			child := s.grow(rng, work.Next().b)
			if child == nil {
				continue
			}
			r := rate(child)
			buckets.insert(r, s.BucketCapacity)
			best.Offer(child)
		}

		sinceReset++
		if sinceReset >= s.RoundsPerReset {
			for _, bucket := range buckets {
				bucket.ShrinkTo(s.KeepPerReset)
			}
			e := logger.Info().Int("round", round).Int("last-round-parents", parents).
				Int("kept", buckets.size())
			if top, ok := buckets.top(); ok {
				e = e.Int("top-rating", top.rating).Int("top-occupied", top.occupied)
			}
			e.Msg("beam-reset")
			sinceReset = 0
		}
	}
	return nil
}

// grow returns a copy of b with one more building, or nil if the kind of
// building drawn does not fit anywhere. The castle always goes first.
func (s *Beam) grow(rng *rand.Rand, b board.Board) board.Board {
	if b.OccupiedTiles() == 0 {
		return movegen.Choose(rng, movegen.LegalOptions(b, board.Castle)).On(b)
	}
	kind := board.Way
	if rng.IntN(2) == 0 {
		kind = board.House
	}
	return movegen.PlaceRandom(rng, b, kind)
}
