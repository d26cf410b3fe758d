package strategy

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
	"github.com/domino14/castleplan/movegen"
	"github.com/domino14/castleplan/repository"
)

// Endless keeps stamping random legal buildings onto a board. When nothing
// more fits it restarts from a board out of its repository, which is shrunk
// to the best few boards per occupancy whenever it grows too large.
type Endless struct {
	Grid             Grid
	Seed             uint64
	HouseProbability float64
	ShrinkThreshold  int
	KeepPerBucket    int
	// MaxSteps stops the search after that many steps; 0 runs until ctx is
	// done.
	MaxSteps int
}

// NewEndless returns an Endless search with the usual settings.
func NewEndless(g Grid, seed uint64) *Endless {
	return &Endless{
		Grid:             g,
		Seed:             ResolveSeed(seed),
		HouseProbability: 0.5,
		ShrinkThreshold:  1_000_000,
		KeepPerBucket:    5,
	}
}

func (e *Endless) Name() string { return "EndlessConstruction" }

func (e *Endless) Parameters() []experiment.Parameter {
	return append(e.Grid.Parameters(),
		experiment.Parameter{Name: "random.seed", Value: e.Seed},
		experiment.Parameter{Name: "house.probability", Value: e.HouseProbability},
		experiment.Parameter{Name: "repository.shrink-threshold", Value: e.ShrinkThreshold},
		experiment.Parameter{Name: "repository.keep-per-bucket", Value: e.KeepPerBucket},
	)
}

// construction is the state of one Endless search.
type construction struct {
	e       *Endless
	rng     *rand.Rand
	repo    *repository.Repository
	current board.Board
}

func (e *Endless) start(best *experiment.Best) *construction {
	c := &construction{
		e:       e,
		rng:     NewRand(e.Seed),
		repo:    repository.New(),
		current: e.Grid.Empty(),
	}
	c.repo.Add(c.current)
	best.Offer(c.current)
	return c
}

// step stamps one building onto the current board, or restarts from the
// repository when the wanted kind does not fit. It returns the new current
// board.
func (c *construction) step(best *experiment.Best) (board.Board, error) {
	want := board.Castle
	if c.current.OccupiedTiles() > 0 {
		want = board.Way
		if c.rng.Float64() < c.e.HouseProbability {
			want = board.House
		}
	}
	opts := movegen.LegalOptions(c.current, want)
	if len(opts) == 0 {
		next, err := c.repo.NextStartingBoard(c.rng)
		if err != nil {
			return nil, err
		}
		c.current = next
	} else {
		c.current = movegen.Choose(c.rng, opts).On(c.current)
		best.Offer(c.current)
	}
	c.repo.Add(c.current)
	return c.current, nil
}

func (e *Endless) Search(ctx context.Context, best *experiment.Best) error {
	logger := zerolog.Ctx(ctx)
	c := e.start(best)

	for step := 0; bounded(step, e.MaxSteps); step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.step(best); err != nil {
			return fmt.Errorf("restarting at step %d: %w", step, err)
		}

		if c.repo.Len() >= e.ShrinkThreshold {
			c.repo.Shrink(e.KeepPerBucket)
			top := c.repo.TopRated()
			logger.Info().Int("step", step).Int("remaining", c.repo.Len()).Int("top-rating", top.Rating()).
				Msg("repository-shrunk")
			for _, line := range board.Display(top) {
				logger.Info().Msg(line)
			}
		}
	}
	return nil
}
