package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/nconklindev/er2view/internal/config"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the application logger from cfg. Console output goes to
// console. The returned closer releases the log file, if one was opened.
func New(cfg config.LoggingConfig, console io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level: %w", err)
	}

	switch cfg.Output {
	case config.OutputNone:
		return zerolog.Nop(), nopCloser{}, nil

	case config.OutputConsole:
		return NewConsole(console, level), nopCloser{}, nil

	case config.OutputFile:
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		return NewZerolog(f, level), f, nil
	}

	return zerolog.Nop(), nopCloser{}, fmt.Errorf("unsupported log output %q", cfg.Output)
}

func NewZerolog(writer io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func NewConsole(out io.Writer, level zerolog.Level) zerolog.Logger {
	return NewZerolog(zerolog.ConsoleWriter{Out: out}, level)
}
