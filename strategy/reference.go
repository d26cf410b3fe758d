package strategy

import (
	"github.com/domino14/castleplan/board"
)

// Reference builds the hand-made layout a search has to beat: the castle in
// the top-left corner, a full row of ways below it, and columns of
// "H H w H H" fanning out from there, to the right of the castle and below
// the way row.
func Reference(empty board.Board) board.Board {
	b := empty.Clone()
	fp := b.Footprints()
	house, castle := fp.House, fp.Castle
	stride := house.W + 1 + house.W

	// houseColumn stamps ways in column x for rows [fromY, toY) and a pair
	// of houses flanking the way every house.H rows.
	houseColumn := func(x, fromY, toY int) {
		left := x - house.W
		right := left
		if x+house.W < b.Width() {
			right = x + 1
		}
		for y := fromY; y < toY; y++ {
			if (y-fromY)%house.H == house.H-1 {
				b.PlaceRect(left, y-house.H+1, board.House)
				b.PlaceRect(right, y-house.H+1, board.House)
			}
			b.PlaceRect(x, y, board.Way)
		}
	}

	for x := house.W + castle.W; x < b.Width(); x += stride {
		houseColumn(x, 0, castle.H)
	}
	for x := 0; x < b.Width(); x++ {
		b.PlaceRect(x, castle.H, board.Way)
	}
	for x := 0; x < b.Width(); x += stride {
		houseColumn(x, castle.H+fp.Way.H, b.Height())
	}
	b.PlaceRect(0, 0, board.Castle)
	return b
}
