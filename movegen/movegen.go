// Package movegen contains the placement rules. Given a board and a kind of
// structure it generates every legal top-left anchor for that structure.
package movegen

import (
	"math/rand/v2"

	"github.com/domino14/castleplan/board"
	"github.com/domino14/castleplan/move"
)

// LegalOptions returns every legal placement of t on b, in row-major order.
func LegalOptions(b board.Board, t board.TileState) []move.Placement {
	switch t {
	case board.Castle:
		return castleOptions(b)
	case board.Way:
		return wayOptions(b)
	case board.House:
		return houseOptions(b)
	}
	return nil
}

// castleOptions assumes the board is still empty; occupancy is not checked.
func castleOptions(b board.Board) []move.Placement {
	fp := b.Footprint(board.Castle)
	var opts []move.Placement
	for y := 0; y <= b.Height()-fp.H; y++ {
		for x := 0; x <= b.Width()-fp.W; x++ {
			opts = append(opts, move.Placement{X: x, Y: y, Tile: board.Castle})
		}
	}
	return opts
}

func wayOrCastle(b board.Board, x, y int) bool {
	t, ok := b.At(x, y)
	return ok && (t == board.Way || t == board.Castle)
}

func isWay(b board.Board, x, y int) bool {
	t, ok := b.At(x, y)
	return ok && t == board.Way
}

func wayOptions(b board.Board) []move.Placement {
	var opts []move.Placement
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if b.Tile(x, y) != board.Free {
				continue
			}
			if wayOrCastle(b, x-1, y) || wayOrCastle(b, x+1, y) ||
				wayOrCastle(b, x, y-1) || wayOrCastle(b, x, y+1) {
				opts = append(opts, move.Placement{X: x, Y: y, Tile: board.Way})
			}
		}
	}
	return opts
}

func houseOptions(b board.Board) []move.Placement {
	fp := b.Footprint(board.House)
	var opts []move.Placement
	for y := 0; y <= b.Height()-fp.H; y++ {
		for x := 0; x <= b.Width()-fp.W; x++ {
			if areaFree(b, x, y, fp) && touchesWay(b, x, y, fp) {
				opts = append(opts, move.Placement{X: x, Y: y, Tile: board.House})
			}
		}
	}
	return opts
}

func areaFree(b board.Board, x, y int, fp board.Footprint) bool {
	for dy := 0; dy < fp.H; dy++ {
		for dx := 0; dx < fp.W; dx++ {
			if t, ok := b.At(x+dx, y+dy); !ok || t != board.Free {
				return false
			}
		}
	}
	return true
}

// touchesWay checks the ring of cells directly outside each side of the
// footprint. Diagonal corners do not count.
func touchesWay(b board.Board, x, y int, fp board.Footprint) bool {
	for dx := 0; dx < fp.W; dx++ {
		if isWay(b, x+dx, y-1) || isWay(b, x+dx, y+fp.H) {
			return true
		}
	}
	for dy := 0; dy < fp.H; dy++ {
		if isWay(b, x-1, y+dy) || isWay(b, x+fp.W, y+dy) {
			return true
		}
	}
	return false
}

// Choose picks one option uniformly. Asking for a pick out of nothing is a
// bug in the caller, so it panics.
func Choose[T any](rng *rand.Rand, options []T) T {
	if len(options) == 0 {
		panic("movegen: no options to choose from")
	}
	return options[rng.IntN(len(options))]
}

// PlaceRandom returns a clone of b with one random legal t placed on it, or
// nil when t cannot be placed anywhere.
func PlaceRandom(rng *rand.Rand, b board.Board, t board.TileState) board.Board {
	opts := LegalOptions(b, t)
	if len(opts) == 0 {
		return nil
	}
	return Choose(rng, opts).On(b)
}

// Children returns one cloned board per legal placement of each kind, in the
// order the kinds are given.
func Children(b board.Board, kinds ...board.TileState) []board.Board {
	var children []board.Board
	for _, k := range kinds {
		for _, p := range LegalOptions(b, k) {
			children = append(children, p.On(b))
		}
	}
	return children
}
