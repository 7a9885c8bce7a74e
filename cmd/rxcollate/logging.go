package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Structured fields that only clutter the "[LEVEL] message" console line.
// They stay in verbose mode and in the log file.
var consoleHiddenFields = []string{
	"build", "root", "folder", "coverage", "samples", "line", "memoized", "path",
}

var levelNames = map[string]string{
	"trace": "TRACE",
	"debug": "DEBUG",
	"info":  "INFO",
	"warn":  "WARNING",
	"error": "ERROR",
	"fatal": "CRITICAL",
	"panic": "CRITICAL",
}

var levelColors = map[string]*color.Color{
	"debug": color.New(color.FgCyan),
	"warn":  color.New(color.FgYellow),
	"error": color.New(color.FgRed),
	"fatal": color.New(color.FgRed, color.Bold),
	"panic": color.New(color.FgRed, color.Bold),
}

// levelFilter drops events below min so that sinks sharing one logger can
// have different thresholds.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

var _ zerolog.LevelWriter = levelFilter{}

func formatLevel(useColor bool) zerolog.Formatter {
	return func(i any) string {
		raw, _ := i.(string)
		name, ok := levelNames[raw]
		if !ok {
			name = strings.ToUpper(raw)
		}
		label := "[" + name + "]"
		if c := levelColors[raw]; useColor && c != nil {
			return c.Sprint(label)
		}
		return label
	}
}

func newTextWriter(out io.Writer, useColor bool, hideFields bool) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{
		Out:         out,
		NoColor:     true,
		PartsOrder:  []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: formatLevel(useColor),
	}
	if hideFields {
		w.FieldsExclude = consoleHiddenFields
	}
	return w
}

// newLogger builds the logger of one invocation: "[LEVEL] message" lines on
// stdout and, if configured, in a log file truncated at start.
func newLogger(s settings, stdout io.Writer, useColor bool) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	if s.Verbose {
		level = zerolog.DebugLevel
	}

	consoleMin := level
	if s.Silent {
		consoleMin = zerolog.FatalLevel
	}
	writers := []io.Writer{
		levelFilter{w: newTextWriter(stdout, useColor, !s.Verbose), min: consoleMin},
	}

	closeFn := func() error { return nil }
	if s.LogFile != "" {
		f, err := os.Create(s.LogFile)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("%q: failed to open log file: %w", s.LogFile, err)
		}
		writers = append(writers, levelFilter{w: newTextWriter(f, false, false), min: level})
		closeFn = f.Close
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Str("build", uuid.NewString()).
		Logger()
	return logger, closeFn, nil
}
