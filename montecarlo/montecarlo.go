// Package montecarlo grows a board one building at a time, choosing each
// building by the average rating of random completions.
package montecarlo

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/experiment"
	"github.com/domino14/castleplan/movegen"
	"github.com/domino14/castleplan/stats"
	"github.com/domino14/castleplan/strategy"
)

const (
	// DefaultRolloutBudget is the number of buildings placed by rollouts per
	// turn, shared among all candidate children.
	DefaultRolloutBudget = 10000
	histogramBins        = 10
	confidence           = 99
)

// Rollout starts with the castle on the first square it fits, then keeps
// adopting the one-building extension whose random completions rate best
// on average. It stops when no building can be added.
type Rollout struct {
	Grid          strategy.Grid
	Seed          uint64
	RolloutBudget int
	// MaxTurns stops the search after that many adopted buildings; 0 runs
	// until the board is complete or ctx is done.
	MaxTurns int
}

func New(g strategy.Grid, seed uint64) *Rollout {
	return &Rollout{
		Grid:          g,
		Seed:          strategy.ResolveSeed(seed),
		RolloutBudget: DefaultRolloutBudget,
	}
}

func (r *Rollout) Name() string { return "MonteCarloSearchTree" }

func (r *Rollout) Parameters() []experiment.Parameter {
	return append(r.Grid.Parameters(),
		experiment.Parameter{Name: "random.seed", Value: r.Seed},
		experiment.Parameter{Name: "rollout.budget", Value: r.RolloutBudget},
	)
}

// candidate is a child of the current board and the ratings of its
// rollouts.
type candidate struct {
	b      board.Board
	result stats.Statistic
}

// beats reports whether c should replace the best candidate so far. A
// candidate without rollouts never wins, and any candidate beats one
// without rollouts; otherwise only a strictly higher average wins.
func (c *candidate) beats(old *candidate) bool {
	switch {
	case old == nil:
		return true
	case old.result.Empty():
		return true
	case c.result.Empty():
		return false
	}
	return c.result.Mean() > old.result.Mean()
}

func (r *Rollout) Search(ctx context.Context, best *experiment.Best) error {
	logger := zerolog.Ctx(ctx)
	rng := strategy.NewRand(r.Seed)

	empty := r.Grid.Empty()
	castles := movegen.LegalOptions(empty, board.Castle)
	if len(castles) == 0 {
		best.Offer(empty)
		logger.Info().Msg("castle does not fit")
		return nil
	}
	current := castles[0].On(empty)
	best.Offer(current)

	for turn := 0; r.MaxTurns <= 0 || turn < r.MaxTurns; turn++ {
		children := movegen.Children(current, board.House, board.Way)
		if len(children) == 0 {
			logger.Info().Int("turns", turn).Int("rating", current.Rating()).Msg("rollouts-finished")
			return nil
		}
		perChild := max(r.RolloutBudget/len(children), 1)

		var chosen *candidate
		averages := make([]float64, 0, len(children))
		for _, child := range children {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := &candidate{b: child}
			r.evaluate(rng, c, perChild, best)
			if !c.result.Empty() {
				averages = append(averages, c.result.Mean())
			}
			if c.beats(chosen) {
				chosen = c
			}
		}
		current = chosen.b
		best.Offer(current)

		if e := logger.Debug(); e.Enabled() {
			e.Int("turn", turn).Int("children", len(children)).Int("rollouts-per-child", perChild).
				Float64("chosen-avg", chosen.result.Mean()).
				Float64("chosen-ci", chosen.result.HalfWidth(confidence)).
				Float64("chosen-min", chosen.result.Min()).Float64("chosen-max", chosen.result.Max()).
				Msg("turn-evaluated")
			for _, line := range averagesHistogram(averages) {
				logger.Debug().Msg(line)
			}
		}
	}
	return nil
}

// evaluate spends up to budget placements on random completions of c.
func (r *Rollout) evaluate(rng *rand.Rand, c *candidate, budget int, best *experiment.Best) {
	for spent := 0; spent < budget; {
		rating, placed := rollout(rng, c.b.Clone(), best)
		c.result.Push(float64(rating))
		spent += placed
		if placed == 0 {
			// nothing can be added to this child; more rollouts won't differ
			return
		}
	}
}

// rollout fills b at random, picking uniformly among all house and way
// placements at every step, and offers every intermediate board to best.
func rollout(rng *rand.Rand, b board.Board, best *experiment.Best) (rating, placed int) {
	for {
		houses := movegen.LegalOptions(b, board.House)
		ways := movegen.LegalOptions(b, board.Way)
		n := len(houses) + len(ways)
		if n == 0 {
			best.Offer(b)
			return b.Rating(), placed
		}
		if i := rng.IntN(n); i < len(houses) {
			houses[i].Apply(b)
		} else {
			ways[i-len(houses)].Apply(b)
		}
		placed++
		best.Offer(b)
	}
}

func averagesHistogram(averages []float64) []string {
	if len(averages) < 2 {
		return nil
	}
	var sb strings.Builder
	h := histogram.Hist(histogramBins, averages)
	if err := histogram.Fprint(&sb, h, histogram.Linear(40)); err != nil {
		return nil
	}
	return strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
}
