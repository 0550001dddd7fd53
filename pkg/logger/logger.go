package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool `split_words:"true" default:"false"`
	PrettyFormat bool `split_words:"true" default:"false"`
	// Caller adds file:line to every event.
	Caller bool `split_words:"true" default:"true"`
}

var DefaultConfig = &Config{
	Debug:        false,
	PrettyFormat: false,
	Caller:       true,
}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Init replaces the global zerolog logger. Logs go to stderr so they never mix
// with the transcript printed on stdout.
func Init(opts ...Config) {
	log.Logger = New(os.Stderr, opts...)
}

func New(w io.Writer, opts ...Config) zerolog.Logger {
	conf := safe(opts...)

	var logger zerolog.Logger
	if conf.PrettyFormat {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(w).With().Timestamp().Logger()
	}

	if conf.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	if conf.Caller {
		logger = logger.With().Caller().Logger()
	}
	return logger.With().Stack().Logger()
}
