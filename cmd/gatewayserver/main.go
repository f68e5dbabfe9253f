// Package main runs the gateway router, the externally reachable entry point.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-roulette/cmd/httpserver"
	"github.com/go-petr/pet-roulette/internal/middleware"
	"github.com/go-petr/pet-roulette/pkg/configpkg"
	"github.com/go-petr/pet-roulette/pkg/currencypkg"
)

func main() {
	currencypkg.EncodeAsNumbers()

	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	server, err := httpserver.NewGateway(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("address", config.ServerAddress).Msg("GATEWAY SERVER HAS STARTED")

	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
