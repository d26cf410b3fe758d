// Package experiment runs one search strategy against a shared best-board
// register while a background reporter records how the best board evolves.
package experiment

import (
	"time"

	"github.com/pbnjay/memory"

	"github.com/domino14/castleplan/board"
)

// A Recorder persists what happens during a run. Implementations must be
// safe to call from the reporter goroutine and the caller of Run.
type Recorder interface {
	// LogParameter records a named run parameter once, at the start of a run.
	LogParameter(name string, value any)
	// LogSnapshot records a scored board.
	LogSnapshot(s Snapshot)
}

// Parameter is a named value a strategy runs with.
type Parameter struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Snapshot is the persisted form of a board at one point of a run.
type Snapshot struct {
	Driver      string    `json:"driver" yaml:"driver"`
	Time        time.Time `json:"time" yaml:"time"`
	Width       int       `json:"width" yaml:"width"`
	Height      int       `json:"height" yaml:"height"`
	Field       string    `json:"field" yaml:"field"`
	Houses      int       `json:"houses" yaml:"houses"`
	Ways        int       `json:"ways" yaml:"ways"`
	Tiles       int       `json:"tiles" yaml:"tiles"`
	Rating      int       `json:"rating" yaml:"rating"`
	MemUsage    uint64    `json:"mem_usage" yaml:"mem_usage"`
	Boards      uint64    `json:"boards" yaml:"boards"`
	Fingerprint uint64    `json:"fingerprint" yaml:"fingerprint"`
}

// NewSnapshot derives a snapshot of b. MemUsage is the memory currently in
// use on the host.
func NewSnapshot(driver string, b board.Board) Snapshot {
	return Snapshot{
		Driver:      driver,
		Time:        time.Now(),
		Width:       b.Width(),
		Height:      b.Height(),
		Field:       board.Encode(b),
		Houses:      board.Buildings(b, board.House),
		Ways:        board.Buildings(b, board.Way),
		Tiles:       b.OccupiedTiles(),
		Rating:      b.Rating(),
		MemUsage:    hostMemInUse(),
		Boards:      board.Allocations(),
		Fingerprint: b.Fingerprint(),
	}
}

func hostMemInUse() uint64 {
	total, free := memory.TotalMemory(), memory.FreeMemory()
	if free > total {
		return 0
	}
	return total - free
}

// Board decodes the snapshot's field back into a board with the given
// footprints.
func (s Snapshot) Board(fp board.Footprints) (*board.Packed, error) {
	return board.Decode(s.Field, fp)
}

// Discard is a Recorder that drops everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) LogParameter(string, any) {}
func (discard) LogSnapshot(Snapshot)     {}
