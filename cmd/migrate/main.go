package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"roombook/config"
	"roombook/helper"
	"roombook/shared/logger"
)

const (
	argLength = 2
)

func main() {
	cfg := config.Get()
	logger.InitLogger(cfg)

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration action (up, down, step-up, drop) is required")
	}

	action, err := helper.ParseAction(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid migration action")
	}

	if err := helper.Run(cfg, action); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
