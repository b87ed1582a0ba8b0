package config

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologAdapter lets fasthttp servers write their errors to zerolog.
type ZerologAdapter struct {
	Logger zerolog.Logger
}

func (l *ZerologAdapter) Printf(format string, args ...interface{}) {
	l.Logger.Error().Msgf(format, args...)
}

var logLevels = map[string]zerolog.Level{
	"TRACE":   zerolog.TraceLevel,
	"DEBUG":   zerolog.DebugLevel,
	"INFO":    zerolog.InfoLevel,
	"WARNING": zerolog.WarnLevel,
	"ERROR":   zerolog.ErrorLevel,
}

// NewLogger builds the service logger. Unknown levels fall back to INFO.
func NewLogger(w io.Writer, level, format string) zerolog.Logger {

	if strings.EqualFold(format, "TEXT") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	lvl, ok := logLevels[strings.ToUpper(level)]
	if !ok {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}
