package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/domino14/castleplan/board"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	var c Config
	is.NoErr(c.Load(nil))
	is.Equal(c.Width, 24)
	is.Equal(c.Height, 20)
	is.Equal(c.Strategy, "RandomDeepSearchPlacement2")
	is.Equal(c.ReportInterval, 10*time.Second)
	is.Equal(c.Footprints, board.DefaultFootprints)
	is.Equal(c.Endless.KeepPerBucket, 5)
	is.Equal(c.Deep.UpperBound, 2_000_000)
	is.Equal(c.Deep.Pause, 10*time.Second)
	is.Equal(c.Beam.RoundsPerReset, 500)
	is.Equal(c.MonteCarlo.RolloutBudget, 10_000)
	is.Equal(c.NATSPrefix, "castleplan")
}

func TestPrecedence(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	is.NoErr(os.WriteFile(path, []byte(`
width: 10
height: 8
strategy: MonteCarloSearchTree
footprint:
  castle: 3x2
beam:
  bucket-capacity: 40
`), 0o644))
	t.Setenv("CASTLEPLAN_HEIGHT", "9")
	t.Setenv("CASTLEPLAN_BEAM_KEEP_PER_RESET", "4")

	var c Config
	is.NoErr(c.Load([]string{"-config", path, "-width", "12", "-seed", "77"}))
	is.Equal(c.Width, 12) // flag
	is.Equal(c.Height, 9) // env
	is.Equal(c.Strategy, "MonteCarloSearchTree")
	is.Equal(c.Seed, uint64(77))
	is.Equal(c.Footprints.Castle, board.Footprint{W: 3, H: 2})
	is.Equal(c.Beam.BucketCapacity, 40)
	is.Equal(c.Beam.KeepPerReset, 4)
}

func TestMissingConfigFile(t *testing.T) {
	is := is.New(t)
	var c Config
	err := c.Load([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml")})
	is.True(err != nil)
}

func TestValidate(t *testing.T) {
	is := is.New(t)
	var c Config
	is.True(c.Load([]string{"-width", "0"}) != nil)
	t.Setenv("CASTLEPLAN_DEEP_LOWER_BOUND", "3000000")
	is.True(c.Load(nil) != nil)
}

func TestParseFootprint(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want board.Footprint
		ok   bool
	}{
		{"7x6", board.Footprint{W: 7, H: 6}, true},
		{" 2X2 ", board.Footprint{W: 2, H: 2}, true},
		{"1x1", board.Footprint{W: 1, H: 1}, true},
		{"0x3", board.Footprint{}, false},
		{"7", board.Footprint{}, false},
		{"ax2", board.Footprint{}, false},
	} {
		t.Run(tc.in, func(t *testing.T) {
			is := is.New(t)
			got, err := ParseFootprint(tc.in)
			if !tc.ok {
				is.True(err != nil)
				return
			}
			is.NoErr(err)
			is.Equal(got, tc.want)
		})
	}
}
