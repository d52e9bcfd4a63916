// Package output carries the server's ambient logging, TTY detection, and
// startup banner — carried forward in shape from the teacher's own
// output.Logger/IsTTY/PrintBanner, rewired from scan-report printing to
// server-lifecycle and background-indexing progress reporting.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// VerbosityLevel controls how much the server logs to stderr.
type VerbosityLevel int

const (
	// VerbosityDefault logs only warnings, errors, and lifecycle events.
	VerbosityDefault VerbosityLevel = iota
	// VerbosityVerbose adds progress and statistics.
	VerbosityVerbose
	// VerbosityDebug adds elapsed-time-prefixed diagnostic messages.
	VerbosityDebug
)

// Logger writes server diagnostics to stderr (stdout is reserved for the
// JSON-RPC message stream), with a progress bar for long index builds.
type Logger struct {
	verbosity    VerbosityLevel
	writer       io.Writer
	startTime    time.Time
	timings      map[string]time.Duration
	isTTY        bool
	progressBar  *progressbar.ProgressBar
	showProgress bool
}

// NewLogger creates a logger at the given verbosity, writing to stderr.
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to w, primarily for tests.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	isTTY := IsTTY(w)
	return &Logger{
		verbosity:    verbosity,
		writer:       w,
		startTime:    time.Now(),
		timings:      make(map[string]time.Duration),
		isTTY:        isTTY,
		showProgress: isTTY,
	}
}

// Progress logs a high-level progress message such as "Building path
// resolver snapshot..." (verbose and debug modes only).
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Statistic logs a count/metric such as "Indexed 812 modules" (verbose and
// debug modes only).
func (l *Logger) Statistic(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs a diagnostic message with an elapsed-time prefix (debug mode
// only).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		fmt.Fprintf(l.writer, "[%s] %s\n", formatDuration(time.Since(l.startTime)), fmt.Sprintf(format, args...))
	}
}

// Warning always logs, prefixed and colored yellow when writing to a TTY.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.printLevel("Warning", color.FgYellow, format, args...)
}

// Error always logs, prefixed and colored red when writing to a TTY.
func (l *Logger) Error(format string, args ...interface{}) {
	l.printLevel("Error", color.FgRed, format, args...)
}

func (l *Logger) printLevel(label string, attr color.Attribute, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.isTTY {
		fmt.Fprintf(l.writer, "%s: %s\n", color.New(attr).Sprint(label), msg)
		return
	}
	fmt.Fprintf(l.writer, "%s: %s\n", label, msg)
}

// StartTiming begins timing a named operation (e.g. "snapshot_build"),
// returning a func to call when it completes.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.timings[name] = time.Since(start)
	}
}

// GetTiming returns the duration recorded for name.
func (l *Logger) GetTiming(name string) time.Duration {
	return l.timings[name]
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// Verbosity returns the logger's configured level.
func (l *Logger) Verbosity() VerbosityLevel { return l.verbosity }

// IsTTY reports whether the logger's writer is a terminal.
func (l *Logger) IsTTY() bool { return l.isTTY }

// StartProgress begins a progress bar (or spinner, for total < 0) for a
// long-running operation such as the initial workspace snapshot build. In
// non-TTY output it just logs the description once.
func (l *Logger) StartProgress(description string, total int) {
	if !l.showProgress {
		l.Progress("%s...", description)
		return
	}
	if l.progressBar != nil {
		_ = l.progressBar.Finish()
	}

	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(l.writer),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65 * time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(l.writer) }),
	}
	if total < 0 {
		opts = append(opts, progressbar.OptionSpinnerType(14))
	} else {
		opts = append(opts, progressbar.OptionShowCount(), progressbar.OptionSetRenderBlankState(true))
	}
	l.progressBar = progressbar.NewOptions(total, opts...)
}

// UpdateProgress advances the active progress bar by delta.
func (l *Logger) UpdateProgress(delta int) {
	if !l.showProgress || l.progressBar == nil {
		return
	}
	_ = l.progressBar.Add(delta)
}

// FinishProgress completes and clears the active progress bar.
func (l *Logger) FinishProgress() {
	if !l.showProgress || l.progressBar == nil {
		return
	}
	_ = l.progressBar.Finish()
	l.progressBar = nil
}
