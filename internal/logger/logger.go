package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the process logger. Production logs are JSON on stderr at info level,
// dev logs use the console writer at debug level.
func Setup(dev bool) zerolog.Logger {
	return New(os.Stderr, dev)
}

// New builds a logger writing to out.
func New(out io.Writer, dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// SetGlobal makes logger the target of the global log package, which the stores use,
// and of zerolog.Ctx for contexts without a logger.
func SetGlobal(logger zerolog.Logger) {
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
}
