// Package sysutil carries process-level plumbing shared by the server
// entrypoint.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

// SetLogLevel sets the global zerolog level from the LOG_LEVEL config value.
// Matching is case-insensitive with surrounding whitespace ignored; empty or
// unrecognized values land on info.
func SetLogLevel(lvl string) {
	if level, ok := logLevels[strings.ToLower(strings.TrimSpace(lvl))]; ok {
		zerolog.SetGlobalLevel(level)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
