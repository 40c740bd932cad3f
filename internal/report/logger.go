// Package report carries the dispatcher's ambient observability
// surface: zerolog setup, a Prometheus metrics registry, and a
// tablewriter CLI summary. Trimmed and adapted from the chaos-utils
// example's pkg/reporting (logger.go's level/format handling) and the
// teacher's own tablewriter-shaped batch summaries.
package report

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"walksat/internal/config"
)

// InitLogger installs the process-wide zerolog logger per cfg: JSON
// output by default, a colorized console writer when Pretty is set,
// matching the chaos-utils example's LogFormatText/LogFormatJSON
// split without the multi-format plumbing this single-binary CLI
// doesn't need.
func InitLogger(cfg config.LoggingConfig) {
	var out io.Writer = os.Stderr
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
