package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultPath is where a build appends its log when no path is given
const DefaultPath = "build.log"

// Log is a logger that writes to the run log file and to the console
type Log struct {
	*slog.Logger
	file *os.File
}

// Open appends to the log file at path, creating it and its directory as
// needed. Records also go to console. verbose enables debug records.
func Open(path string, console io.Writer, verbose bool) (*Log, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	var out io.Writer = file
	if console != nil {
		out = io.MultiWriter(file, console)
	}

	return &Log{
		Logger: slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: Level(verbose)})),
		file:   file,
	}, nil
}

// Level maps the verbose flag to a log level.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Close closes the log file
func (l *Log) Close() error {
	return l.file.Close()
}
