package board

import "fmt"

// A TileState is the content of a single cell. It needs exactly two bits.
type TileState uint8

const (
	// Free must stay the zero value; zeroed storage means an empty board.
	Free TileState = iota
	Way
	House
	Castle
)

// NumTileStates is the number of distinct tile states.
const NumTileStates = 4

// AllTileStates lists every state, Free first.
var AllTileStates = [NumTileStates]TileState{Free, Way, House, Castle}

var tileValues = [NumTileStates]int{
	Free:   -5,
	Way:    -1,
	House:  20,
	Castle: 0,
}

var tileRunes = [NumTileStates]rune{
	Free:   '.',
	Way:    'w',
	House:  'H',
	Castle: 'C',
}

var tileNames = [NumTileStates]string{
	Free:   "free",
	Way:    "way",
	House:  "house",
	Castle: "castle",
}

// Value is the score contribution of one cell in this state.
func (t TileState) Value() int {
	return tileValues[t&0b11]
}

// Rune is the single-character encoding used in snapshots.
func (t TileState) Rune() rune {
	return tileRunes[t&0b11]
}

func (t TileState) String() string {
	if t >= NumTileStates {
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
	return tileNames[t]
}

// ParseTileState turns an encoded rune back into a tile state.
func ParseTileState(r rune) (TileState, error) {
	for _, t := range AllTileStates {
		if tileRunes[t] == r {
			return t, nil
		}
	}
	return Free, fmt.Errorf("unknown tile rune %q", r)
}

// Footprint is the rectangle a structure covers, in cells.
type Footprint struct {
	W int
	H int
}

// Area is the number of cells covered.
func (f Footprint) Area() int {
	return f.W * f.H
}

func (f Footprint) String() string {
	return fmt.Sprintf("%dx%d", f.W, f.H)
}

// Footprints holds the size of each placeable structure. Free is always 1x1.
type Footprints struct {
	Castle Footprint
	House  Footprint
	Way    Footprint
}

// DefaultFootprints are the structure sizes of the real game.
var DefaultFootprints = Footprints{
	Castle: Footprint{W: 7, H: 6},
	House:  Footprint{W: 2, H: 2},
	Way:    Footprint{W: 1, H: 1},
}

// Of returns the footprint of t.
func (f Footprints) Of(t TileState) Footprint {
	switch t {
	case Castle:
		return f.Castle
	case House:
		return f.House
	case Way:
		return f.Way
	}
	return Footprint{W: 1, H: 1}
}

// Validate makes sure every footprint is at least one cell in size.
func (f Footprints) Validate() error {
	for _, t := range []TileState{Castle, House, Way} {
		fp := f.Of(t)
		if fp.W < 1 || fp.H < 1 {
			return fmt.Errorf("footprint of %v must be positive, got %v", t, fp)
		}
	}
	return nil
}
