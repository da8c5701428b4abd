package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger adapts zerolog to the Infof/Errorf contract used across the modules.
type Logger struct {
	zl zerolog.Logger
}

// New writes JSON lines to stdout at the given level ("debug", "info", ...).
// Unknown levels fall back to info.
func New(service, level string) *Logger {
	return NewWithWriter(os.Stdout, service, level)
}

func NewWithWriter(w io.Writer, service, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zl := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", service).Logger()
	return &Logger{zl: zl}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Zerolog exposes the underlying logger for structured call sites.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.zl }

// StdLogger bridges into APIs that want a *log.Logger, such as http.Server.
func (l *Logger) StdLogger() *log.Logger {
	return log.New(l.zl.With().Str("level", zerolog.LevelErrorValue).Logger(), "", 0)
}
