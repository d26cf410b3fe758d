// Package move describes a single placement on a board.
package move

import (
	"fmt"

	"github.com/domino14/castleplan/board"
)

// Placement is the top-left anchor and kind of a structure. It is only valid
// for the board it was generated from.
type Placement struct {
	X    int
	Y    int
	Tile board.TileState
}

func (p Placement) String() string {
	return fmt.Sprintf("%v@(%d,%d)", p.Tile, p.X, p.Y)
}

// Apply stamps the placement onto b without any checks.
func (p Placement) Apply(b board.Board) {
	b.PlaceRect(p.X, p.Y, p.Tile)
}

// On clones b and applies the placement to the clone. b is left unchanged.
func (p Placement) On(b board.Board) board.Board {
	c := b.Clone()
	p.Apply(c)
	return c
}
