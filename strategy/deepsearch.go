package strategy

import (
	"context"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
	"github.com/domino14/castleplan/frontier"
	"github.com/domino14/castleplan/movegen"
)

// DeepSearch expands every legal child of every board it pops off a deque.
// Children mostly go to the front, which makes the search lean depth-first.
// Once the deque reaches UpperBound it stops taking children until it has
// drained to LowerBound.
type DeepSearch struct {
	Grid            Grid
	Seed            uint64
	TailProbability float64
	UpperBound      int
	LowerBound      int
	// Pause is how long to wait for memory to be reclaimed when the deque
	// fills up.
	Pause time.Duration
	// MaxExpansions stops the search after that many boards were popped; 0
	// runs until the deque is empty or ctx is done.
	MaxExpansions int
}

func NewDeepSearch(g Grid, seed uint64) *DeepSearch {
	return &DeepSearch{
		Grid:            g,
		Seed:            ResolveSeed(seed),
		TailProbability: 0.2,
		UpperBound:      2_000_000,
		LowerBound:      900_000,
		Pause:           10 * time.Second,
	}
}

func (d *DeepSearch) Name() string { return "DeepSearchPlacement" }

func (d *DeepSearch) Parameters() []experiment.Parameter {
	return append(d.Grid.Parameters(),
		experiment.Parameter{Name: "random.seed", Value: d.Seed},
		experiment.Parameter{Name: "queue.tail-probability", Value: d.TailProbability},
		experiment.Parameter{Name: "queue.upper-bound", Value: d.UpperBound},
		experiment.Parameter{Name: "queue.lower-bound", Value: d.LowerBound},
	)
}

func (d *DeepSearch) Search(ctx context.Context, best *experiment.Best) error {
	q := &boundedQueue{
		rng:   NewRand(d.Seed),
		tail:  d.TailProbability,
		upper: d.UpperBound,
		lower: d.LowerBound,
		pause: d.Pause,
	}
	q.items.PushBack(d.Grid.Empty())

	for n := 0; q.items.Len() > 0 && bounded(n, d.MaxExpansions); n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, _ := q.items.PopFront()
		best.Offer(b)

		var children []board.Board
		if b.OccupiedTiles() == 0 {
			children = movegen.Children(b, board.Castle)
		} else {
			children = movegen.Children(b, board.Way, board.House)
		}
		for _, c := range children {
			if err := q.offer(ctx, c); err != nil {
				return err
			}
		}
	}
	zerolog.Ctx(ctx).Debug().Int("remaining", q.items.Len()).Msg("deep-search-ended")
	return nil
}

type boundedQueue struct {
	items frontier.Deque[board.Board]
	rng   *rand.Rand
	tail  float64
	upper int
	lower int
	pause time.Duration
	full  bool
}

// offer queues b unless the queue is full. Reaching the upper bound flips
// the queue to full and pauses; it stays full, dropping everything offered,
// until it has drained to the lower bound.
func (q *boundedQueue) offer(ctx context.Context, b board.Board) error {
	if q.full {
		if q.items.Len() <= q.lower {
			q.full = false
		}
		return nil
	}
	if q.items.Len() >= q.upper {
		q.full = true
		zerolog.Ctx(ctx).Info().Int("size", q.items.Len()).Msg("queue is full, pausing for gc")
		runtime.GC()
		if err := sleep(ctx, q.pause); err != nil {
			return err
		}
	}
	if q.rng.Float64() < q.tail {
		q.items.PushBack(b)
	} else {
		q.items.PushFront(b)
	}
	return nil
}
