// Package board contains the packed game board: a fixed-size grid where every
// cell holds one of four tile states in two bits.
package board

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash"
)

// ErrOutOfRange is wrapped by the panic raised when the validated accessor
// is used outside the grid.
var ErrOutOfRange = errors.New("coordinates out of range")

// Board is everything the search code needs from a board.
type Board interface {
	Width() int
	Height() int
	// Tile returns the state at (x, y). It panics if (x, y) is not on the board;
	// callers are expected to bound their scans to the dimensions.
	Tile(x, y int) TileState
	// At is the raw accessor. ok is false outside the board.
	At(x, y int) (t TileState, ok bool)
	// PlaceRect stamps t over its whole footprint with (x, y) as the top-left
	// cell. There is no legality check; cells outside the board are skipped.
	PlaceRect(x, y int, t TileState)
	Footprint(t TileState) Footprint
	Footprints() Footprints
	Rating() int
	OccupiedTiles() int
	Count(t TileState) int
	Clone() Board
	Fingerprint() uint64
}

const (
	bitsPerCell  = 2
	cellsPerWord = 64 / bitsPerCell
	cellMask     = 0b11
)

var allocations atomic.Uint64

// Allocations is the number of boards created or cloned by this process.
func Allocations() uint64 {
	return allocations.Load()
}

// Packed stores 32 cells per uint64 word.
type Packed struct {
	width      int
	height     int
	footprints *Footprints
	words      []uint64
}

// NewPacked creates an empty board.
func NewPacked(width, height int, fp Footprints) *Packed {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("board dimensions must be positive, got %dx%d", width, height))
	}
	allocations.Add(1)
	return newPacked(width, height, fp)
}

func newPacked(width, height int, fp Footprints) *Packed {
	return &Packed{
		width:      width,
		height:     height,
		footprints: &fp,
		words:      make([]uint64, wordsFor(width*height)),
	}
}

func wordsFor(cells int) int {
	return (cells*bitsPerCell + 63) / 64
}

func (b *Packed) Width() int  { return b.width }
func (b *Packed) Height() int { return b.height }

func (b *Packed) Footprint(t TileState) Footprint {
	return b.footprints.Of(t)
}

func (b *Packed) Footprints() Footprints {
	return *b.footprints
}

func (b *Packed) inside(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Packed) get(idx int) TileState {
	shift := uint(idx%cellsPerWord) * bitsPerCell
	return TileState((b.words[idx/cellsPerWord] >> shift) & cellMask)
}

func (b *Packed) set(idx int, t TileState) {
	shift := uint(idx%cellsPerWord) * bitsPerCell
	w := &b.words[idx/cellsPerWord]
	*w = (*w &^ (cellMask << shift)) | (uint64(t&cellMask) << shift)
}

func (b *Packed) At(x, y int) (TileState, bool) {
	if !b.inside(x, y) {
		return Free, false
	}
	return b.get(y*b.width + x), true
}

func (b *Packed) Tile(x, y int) TileState {
	t, ok := b.At(x, y)
	if !ok {
		panic(fmt.Errorf("tile (%d, %d) on %dx%d board: %w", x, y, b.width, b.height, ErrOutOfRange))
	}
	return t
}

func (b *Packed) PlaceRect(x, y int, t TileState) {
	fp := b.footprints.Of(t)
	for iy := y; iy < y+fp.H; iy++ {
		if iy < 0 || iy >= b.height {
			continue
		}
		for ix := x; ix < x+fp.W; ix++ {
			if ix < 0 || ix >= b.width {
				continue
			}
			b.set(iy*b.width+ix, t)
		}
	}
}

// counts tallies every state in one pass over the cells.
func (b *Packed) counts() [NumTileStates]int {
	var c [NumTileStates]int
	n := b.width * b.height
	for i := 0; i < n; i++ {
		c[b.get(i)]++
	}
	return c
}

func (b *Packed) Rating() int {
	c := b.counts()
	sum := 0
	for _, t := range AllTileStates {
		sum += c[t] * t.Value()
	}
	return sum
}

func (b *Packed) OccupiedTiles() int {
	return b.width*b.height - b.counts()[Free]
}

func (b *Packed) Count(t TileState) int {
	return b.counts()[t&cellMask]
}

func (b *Packed) Clone() Board {
	allocations.Add(1)
	c := &Packed{
		width:      b.width,
		height:     b.height,
		footprints: b.footprints,
		words:      make([]uint64, len(b.words)),
	}
	copy(c.words, b.words)
	return c
}

// Fingerprint hashes the packed cells. Equal boards share a fingerprint.
func (b *Packed) Fingerprint() uint64 {
	buf := make([]byte, 0, 8*(len(b.words)+1))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(b.width))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(b.height))
	for _, w := range b.words {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return xxhash.Sum64(buf)
}

// Equal reports whether two boards have the same dimensions and cells.
func Equal(a, b Board) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return false
	}
	if pa, ok := a.(*Packed); ok {
		if pb, ok := b.(*Packed); ok {
			for i := range pa.words {
				if pa.words[i] != pb.words[i] {
					return false
				}
			}
			return true
		}
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if a.Tile(x, y) != b.Tile(x, y) {
				return false
			}
		}
	}
	return true
}
