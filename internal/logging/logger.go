package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
)

var LoggingSet = wire.NewSet(
	NewLogger,
)

// NewLogger writes to stderr so stdout stays reserved for command output.
// With --json the log lines are JSON as well.
func NewLogger(cfg *config.RuntimeConfig) *slog.Logger {
	return newLogger(os.Stderr, options{
		debug:    cfg.Debug,
		json:     cfg.JSON,
		envLevel: os.Getenv("NEST_LOG_LEVEL"),
	})
}

type options struct {
	debug    bool
	json     bool
	envLevel string
}

func newLogger(w io.Writer, o options) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(o.envLevel, o.debug),
		AddSource:   o.debug,
		ReplaceAttr: cliAttrs,
	}
	if o.json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// cliAttrs drops timestamps and trims source paths.
func cliAttrs(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		return slog.Attr{}
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			src.File = shortPath(src.File)
		}
	}
	return a
}

// parseLevel maps NEST_LOG_LEVEL to a slog level; --debug wins over it.
func parseLevel(val string, debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	var level slog.Level
	val = strings.TrimSpace(val)
	if strings.EqualFold(val, "warning") {
		val = "warn"
	}
	if err := level.UnmarshalText([]byte(val)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// shortPath keeps the path below the module root, or just the file name.
func shortPath(file string) string {
	const root = "nest-cli/"
	if _, rest, ok := strings.Cut(file, root); ok {
		return rest
	}
	return filepath.Base(file)
}
