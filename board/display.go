package board

import (
	"fmt"
	"strings"
)

// Encode renders one character per cell, row-major, a newline after each row.
func Encode(b Board) string {
	var sb strings.Builder
	sb.Grow((b.Width() + 1) * b.Height())
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			sb.WriteRune(b.Tile(x, y).Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Decode parses the output of Encode. Every row must have the same width.
// A decoded board restores one already counted, so it is not added to
// Allocations.
func Decode(s string, fp Footprints) (*Packed, error) {
	rows := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(rows) == 0 || rows[0] == "" {
		return nil, fmt.Errorf("empty board encoding")
	}
	width := len([]rune(rows[0]))
	b := newPacked(width, len(rows), fp)
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", y, len(runes), width)
		}
		for x, r := range runes {
			t, err := ParseTileState(r)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", y, x, err)
			}
			b.set(y*width+x, t)
		}
	}
	return b, nil
}

// Buildings is the number of structures of kind t, assuming they are all
// placed whole.
func Buildings(b Board, t TileState) int {
	return b.Count(t) / b.Footprint(t).Area()
}

// Display returns a human readable picture of the board, with a short
// header.
func Display(b Board) []string {
	lines := []string{
		fmt.Sprintf("- size    : %d x %d", b.Width(), b.Height()),
		fmt.Sprintf("- rating  : %d", b.Rating()),
		fmt.Sprintf("- occupied: %d  (Houses = %d, Ways = %d, Free = %d)",
			b.OccupiedTiles(), Buildings(b, House), Buildings(b, Way), b.Count(Free)),
	}
	for y := 0; y < b.Height(); y++ {
		var sb strings.Builder
		for x := 0; x < b.Width(); x++ {
			sb.WriteByte(' ')
			sb.WriteRune(b.Tile(x, y).Rune())
		}
		lines = append(lines, sb.String())
	}
	return lines
}
