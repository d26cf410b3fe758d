// Package config loads the settings of a run from defaults, an optional
// YAML file, CASTLEPLAN_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/domino14/castleplan/board"
)

const EnvPrefix = "CASTLEPLAN"

type Config struct {
	Width          int
	Height         int
	Strategy       string
	Seed           uint64
	ReportInterval time.Duration
	// MaxSteps bounds the main loop of the chosen strategy; 0 is unbounded.
	MaxSteps   int
	Footprints board.Footprints

	Endless    EndlessConfig
	Deep       DeepConfig
	Beam       BeamConfig
	MonteCarlo MonteCarloConfig

	SQLitePath string
	YAMLPath   string
	NATSURL    string
	NATSPrefix string

	Debug bool
}

type EndlessConfig struct {
	HouseProbability float64
	ShrinkThreshold  int
	KeepPerBucket    int
}

type DeepConfig struct {
	TailProbability float64
	UpperBound      int
	LowerBound      int
	Pause           time.Duration
}

type BeamConfig struct {
	BucketCapacity int
	KeepPerReset   int
	RoundsPerReset int
}

type MonteCarloConfig struct {
	RolloutBudget int
}

var defaults = map[string]any{
	"width":                     24,
	"height":                    20,
	"strategy":                  "RandomDeepSearchPlacement2",
	"seed":                      0,
	"report-interval":           "10s",
	"max-steps":                 0,
	"footprint.castle":          "7x6",
	"footprint.house":           "2x2",
	"footprint.way":             "1x1",
	"endless.house-probability": 0.5,
	"endless.shrink-threshold":  1_000_000,
	"endless.keep-per-bucket":   5,
	"deep.tail-probability":     0.2,
	"deep.upper-bound":          2_000_000,
	"deep.lower-bound":          900_000,
	"deep.pause":                "10s",
	"beam.bucket-capacity":      300,
	"beam.keep-per-reset":       2,
	"beam.rounds-per-reset":     500,
	"montecarlo.rollout-budget": 10_000,
	"sqlite-path":               "",
	"yaml-path":                 "",
	"nats-url":                  "",
	"nats-prefix":               "castleplan",
	"debug":                     false,
}

// Load builds the configuration. args are the command-line arguments
// without the program name.
func (c *Config) Load(args []string) error {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	fs := flag.NewFlagSet("castleplan", flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML file with settings")
	fs.Int("width", 24, "board width")
	fs.Int("height", 20, "board height")
	fs.String("strategy", "RandomDeepSearchPlacement2", "strategy to run")
	fs.Uint64("seed", 0, "random seed; 0 draws one")
	fs.Duration("report-interval", 10*time.Second, "how often the best board is checked for changes")
	fs.Int("max-steps", 0, "stop the strategy after this many steps/rounds/expansions; 0 runs until interrupted")
	fs.String("sqlite-path", "", "record the run into this sqlite database")
	fs.String("yaml-path", "", "append the run to this YAML file")
	fs.String("nats-url", "", "publish the run to this NATS server")
	fs.Bool("debug", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "config" {
			v.Set(f.Name, f.Value.String())
		}
	})

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", *configFile, err)
		}
	}
	return c.fill(v)
}

func (c *Config) fill(v *viper.Viper) error {
	c.Width = v.GetInt("width")
	c.Height = v.GetInt("height")
	c.Strategy = v.GetString("strategy")
	c.Seed = v.GetUint64("seed")
	c.ReportInterval = v.GetDuration("report-interval")
	c.MaxSteps = v.GetInt("max-steps")

	var err error
	if c.Footprints.Castle, err = ParseFootprint(v.GetString("footprint.castle")); err != nil {
		return err
	}
	if c.Footprints.House, err = ParseFootprint(v.GetString("footprint.house")); err != nil {
		return err
	}
	if c.Footprints.Way, err = ParseFootprint(v.GetString("footprint.way")); err != nil {
		return err
	}

	c.Endless = EndlessConfig{
		HouseProbability: v.GetFloat64("endless.house-probability"),
		ShrinkThreshold:  v.GetInt("endless.shrink-threshold"),
		KeepPerBucket:    v.GetInt("endless.keep-per-bucket"),
	}
	c.Deep = DeepConfig{
		TailProbability: v.GetFloat64("deep.tail-probability"),
		UpperBound:      v.GetInt("deep.upper-bound"),
		LowerBound:      v.GetInt("deep.lower-bound"),
		Pause:           v.GetDuration("deep.pause"),
	}
	c.Beam = BeamConfig{
		BucketCapacity: v.GetInt("beam.bucket-capacity"),
		KeepPerReset:   v.GetInt("beam.keep-per-reset"),
		RoundsPerReset: v.GetInt("beam.rounds-per-reset"),
	}
	c.MonteCarlo = MonteCarloConfig{RolloutBudget: v.GetInt("montecarlo.rollout-budget")}

	c.SQLitePath = v.GetString("sqlite-path")
	c.YAMLPath = v.GetString("yaml-path")
	c.NATSURL = v.GetString("nats-url")
	c.NATSPrefix = v.GetString("nats-prefix")
	c.Debug = v.GetBool("debug")
	return c.Validate()
}

// Validate checks the values no strategy can run with.
func (c *Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("board must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	if err := c.Footprints.Validate(); err != nil {
		return err
	}
	if c.Deep.LowerBound > c.Deep.UpperBound {
		return fmt.Errorf("deep.lower-bound %d is above deep.upper-bound %d", c.Deep.LowerBound, c.Deep.UpperBound)
	}
	if c.Beam.BucketCapacity < 1 {
		return fmt.Errorf("beam.bucket-capacity must be positive, got %d", c.Beam.BucketCapacity)
	}
	return nil
}

// ParseFootprint parses sizes like "7x6" (width x height).
func ParseFootprint(s string) (board.Footprint, error) {
	var fp board.Footprint
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return fp, fmt.Errorf("footprint %q is not of the form WxH", s)
	}
	if _, err := fmt.Sscan(w, &fp.W); err != nil {
		return fp, fmt.Errorf("footprint %q: bad width: %w", s, err)
	}
	if _, err := fmt.Sscan(h, &fp.H); err != nil {
		return fp, fmt.Errorf("footprint %q: bad height: %w", s, err)
	}
	if fp.W < 1 || fp.H < 1 {
		return fp, fmt.Errorf("footprint %q must be positive", s)
	}
	return fp, nil
}
