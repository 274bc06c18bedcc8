// Package log configures the process-wide slog logger of the editor.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ParseLevel parses a level name such as "debug" or "WARN". An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	if name == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}

	return level, nil
}

// Setup installs a text logger writing to stderr at the given level as the default logger.
func Setup(levelName string) error {
	return setup(os.Stderr, levelName)
}

func setup(w io.Writer, levelName string) error {
	level, err := ParseLevel(levelName)
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))

	return nil
}

// WithModule returns the default logger tagged with the module emitting the records.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
