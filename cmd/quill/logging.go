package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

var logLevels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// cliLogger writes interpreter and command messages in text or JSON form,
// dropping anything below the configured level. A leading "[LEVEL]" tag
// selects the level; untagged lines are info.
type cliLogger struct {
	stdout io.Writer
	stderr io.Writer
	level  int
	format string // "json" or "text"
	now    func() time.Time
}

// LogEntry is one line of JSON log output.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

func newCLILogger(stdout, stderr io.Writer, level, format string) *cliLogger {
	if format == "" {
		format = "text"
	}
	lvl, ok := logLevels[level]
	if !ok {
		lvl = logLevels["info"]
	}
	return &cliLogger{
		stdout: stdout,
		stderr: stderr,
		level:  lvl,
		format: format,
		now:    time.Now,
	}
}

func (l *cliLogger) Log(values ...any) {
	l.write(fmt.Sprint(values...))
}

func (l *cliLogger) LogLine(values ...any) {
	l.write(fmt.Sprintln(values...))
}

func (l *cliLogger) Debugf(format string, args ...any) { l.write("[DEBUG] " + fmt.Sprintf(format, args...)) }
func (l *cliLogger) Infof(format string, args ...any)  { l.write("[INFO] " + fmt.Sprintf(format, args...)) }
func (l *cliLogger) Errorf(format string, args ...any) { l.write("[ERROR] " + fmt.Sprintf(format, args...)) }

func (l *cliLogger) write(line string) {
	line = strings.TrimRight(line, "\n")
	level, message := splitLevel(line)
	if logLevels[level] < l.level {
		return
	}

	out := l.stdout
	if level == "error" {
		out = l.stderr
	}

	if l.format == "json" {
		data, err := json.Marshal(LogEntry{
			Timestamp: l.now().Format(time.RFC3339),
			Level:     level,
			Message:   message,
		})
		if err != nil {
			return
		}
		fmt.Fprintf(out, "%s\n", data)
		return
	}
	fmt.Fprintln(out, line)
}

// splitLevel separates a "[LEVEL] message" line into its parts.
func splitLevel(line string) (level, message string) {
	if strings.HasPrefix(line, "[") {
		if tag, rest, ok := strings.Cut(line[1:], "]"); ok {
			if _, known := logLevels[strings.ToLower(tag)]; known {
				return strings.ToLower(tag), strings.TrimSpace(rest)
			}
		}
	}
	return "info", line
}
