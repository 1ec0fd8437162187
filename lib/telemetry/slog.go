package telemetry

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

func newSlogHandler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// InitSlog makes a colored stderr handler the default logger.
func InitSlog(verbose bool) {
	slog.SetDefault(slog.New(newSlogHandler(os.Stderr, verbose)))
}
