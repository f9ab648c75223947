package logging

import (
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Configure installs a text handler on stderr as the default logger.
// name is one of DEBUG, INFO, WARN, ERROR; anything else means INFO.
func Configure(name string) {
	level.Set(ParseLevel(name))
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}
