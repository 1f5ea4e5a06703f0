// Package logging wraps pterm behind a small, level-gated Logger so
// the scanning pipeline never imports pterm directly. Verbosity is an
// accumulating count driven by the CLI's repeatable -v flag, matching
// how C++-tool verbosity flags traditionally escalate.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

// restyle swaps printer's prefix text/color for one of our own, keeping
// pterm's default background-agnostic message style. Used below to
// recolor every package-level printer in one pass instead of five
// near-identical blocks.
func restyle(printer *pterm.PrefixPrinter, text string, color pterm.Color) {
	*printer = *printer.WithPrefix(pterm.Prefix{
		Text:  text,
		Style: pterm.NewStyle(color),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)
}

func init() {
	for _, p := range []struct {
		printer *pterm.PrefixPrinter
		text    string
		color   pterm.Color
	}{
		{&pterm.Info, "INFO", pterm.FgBlue},
		{&pterm.Success, "SUCCESS", pterm.FgGreen},
		{&pterm.Warning, "WARNING", pterm.FgYellow},
		{&pterm.Error, "ERROR", pterm.FgRed},
		{&pterm.Debug, "DEBUG", pterm.FgCyan},
	} {
		restyle(p.printer, p.text, p.color)
	}
}

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is a verbosity-gated, pterm-backed logger plus an optional
// append-only file sink used for --log-update.
type Logger struct {
	mu        sync.Mutex
	verbosity int
	sink      io.Writer
}

// New returns a Logger at the given verbosity (the -v count: 0 shows
// only warnings/errors, 1 shows info, 2+ shows debug).
func New(verbosity int) *Logger {
	return &Logger{verbosity: verbosity}
}

// SetSink attaches a writer (typically an append-only log file) that
// receives every message logged through Update, independent of
// verbosity gating.
func (l *Logger) SetSink(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = w
}

func (l *Logger) enabled(level Level) bool {
	switch level {
	case LevelDebug:
		return l.verbosity >= 2
	case LevelInfo:
		return l.verbosity >= 1
	default:
		return true
	}
}

// Debug logs a debug message, shown only at verbosity >= 2.
func (l *Logger) Debug(format string, args ...any) {
	if l.enabled(LevelDebug) {
		pterm.Debug.Println(fmt.Sprintf(format, args...))
	}
}

// Info logs an informational message, shown only at verbosity >= 1.
func (l *Logger) Info(format string, args ...any) {
	if l.enabled(LevelInfo) {
		pterm.Info.Println(fmt.Sprintf(format, args...))
	}
}

// Warning logs a warning, always shown (e.g. MissingModule diagnostics).
func (l *Logger) Warning(format string, args ...any) {
	pterm.Warning.Println(fmt.Sprintf(format, args...))
}

// Error logs a fatal-path error, always shown.
func (l *Logger) Error(format string, args ...any) {
	pterm.Error.Println(fmt.Sprintf(format, args...))
}

// Success logs a completion message, always shown.
func (l *Logger) Success(format string, args ...any) {
	pterm.Success.Println(fmt.Sprintf(format, args...))
}

// Update writes a single cache-refresh-decision line to the attached
// sink (see SetSink), formatted per the umakeLog.txt convention. It is
// a no-op if no sink is attached (i.e. --log-update was not passed).
func (l *Logger) Update(line string) {
	l.mu.Lock()
	sink := l.sink
	l.mu.Unlock()
	if sink == nil {
		return
	}
	fmt.Fprintln(sink, line)
}

// NewFileSink opens path for appending, creating it if necessary, and
// returns it ready to pass to SetSink. Callers are responsible for
// closing the returned file.
func NewFileSink(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}
