package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

// New builds the root logger: human readable in debug, JSON lines otherwise
func New(debug bool) zerolog.Logger {
	var writer io.Writer
	if debug {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	} else {
		writer = os.Stdout
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// Gorm routes gorm's query log through zerolog
func Gorm(log zerolog.Logger, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	l := log.With().Str("component", "gorm").Logger()
	return logger.New(&l, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
