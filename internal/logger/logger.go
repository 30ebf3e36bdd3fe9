// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is embedded as a go-flags option group by every command.
type Logger struct {
	Level   string `long:"log-level"    env:"LOG_LEVEL"    description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format  string `long:"log-format"   env:"LOG_FORMAT"   description:"Log format" choice:"console" choice:"json" default:"console"`
	Output  string `long:"log-output"   env:"LOG_OUTPUT"   description:"Log destination" choice:"stderr" choice:"stdout" default:"stderr"`
	NoColor bool   `long:"log-no-color" env:"LOG_NO_COLOR" description:"Disable colored console output"`
}

// Setup replaces the global logger.
func (l *Logger) Setup() {
	var w io.Writer = os.Stderr
	if l.Output == "stdout" {
		w = os.Stdout
	}

	log.Logger = l.New(w)
	zerolog.SetGlobalLevel(l.level())

	log.Debug().
		Str("level", l.level().String()).
		Str("format", l.Format).
		Msg("Logger initialized")
}

// New builds a logger writing to w with the configured format. The level is
// set on the logger itself, not globally.
func (l *Logger) New(w io.Writer) zerolog.Logger {
	if l.Format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    l.NoColor,
			TimeFormat: time.DateTime,
		}
	}
	return zerolog.New(w).Level(l.level()).With().Timestamp().Logger()
}

func (l *Logger) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
