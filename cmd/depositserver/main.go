// Package main runs the deposit orchestrator and its reconciler.
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
	"github.com/go-petr/pet-roulette/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	currencypkg.EncodeAsNumbers()

	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer db.Close()

	server, err := httpserver.NewDeposit(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("address", config.ServerAddress).
		Str("settlement_policy", config.SettlementPolicy).
		Str("credit_mode", config.CreditMode).
		Msg("DEPOSIT SERVER HAS STARTED")

	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
