package cli

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds a human-readable logger writing to w at the named level.
// Unknown levels fall back to info.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}
