// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string
	// Format is console or json.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	logger = newLogger(Config{Level: "warn", Format: "console"})
)

// Init replaces the global logger.
func Init(cfg Config) {
	l := newLogger(cfg)
	mu.Lock()
	logger = l
	mu.Unlock()
}

func newLogger(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}
	if strings.EqualFold(cfg.Format, "json") {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: os.Getenv("NO_COLOR") != ""}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Logger returns the current logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// Debug starts a debug-level event.
func Debug() *zerolog.Event {
	return Logger().Debug()
}

// Info starts an info-level event.
func Info() *zerolog.Event {
	return Logger().Info()
}

// Warn starts a warn-level event.
func Warn() *zerolog.Event {
	return Logger().Warn()
}

// Error starts an error-level event.
func Error() *zerolog.Event {
	return Logger().Error()
}
