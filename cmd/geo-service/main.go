package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/graphops/geo-service/cmd/geo-service/internal/handlers"
)

const (
	logPrefix = "main"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}).
		With().
		Timestamp().
		Logger()

	if err := handlers.Run(logger); err != nil {
		logger.Error().Msgf("%s: error: %s", logPrefix, err)
		os.Exit(1)
	}
}
