package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Development gets a readable text handler
// at debug level; everything else logs JSON for the collector, tagged with
// the service name so the CMS is filterable next to the identity provider.
func New(environment string) *slog.Logger {
	if environment == "development" {
		handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		return slog.New(handler)
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler).With("service", "chambers")
}
