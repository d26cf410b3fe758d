package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/castleplan/config"
	"github.com/domino14/castleplan/runner"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Str("strategy", cfg.Strategy).Int("width", cfg.Width).Int("height", cfg.Height).
		Msg("loaded config")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
	}()

	ctx = log.Logger.WithContext(ctx)
	if err := runner.Run(ctx, cfg); err != nil {
		if errors.Is(err, runner.ErrUnknownStrategy) {
			log.Fatal().Err(err).Msg("configuration error")
		}
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
	log.Info().Msg("done")
}
