package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	mu          sync.RWMutex
	verbose     = false
	disableLogs = false
	forceStdErr = false
	outWriter   io.Writer = os.Stdout
	errWriter   io.Writer = os.Stderr
	outLogger   zerolog.Logger
	errLogger   zerolog.Logger
)

func init() {
	rebuild()
}

// SetVerbose sets the logging verbosity. If true, all log levels are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	rebuild()
	mu.Unlock()
}

// IsVerbose returns true if verbose logging is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	disableLogs = true
	rebuild()
	mu.Unlock()
}

// IsDisabled returns true if logging is disabled.
func IsDisabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return disableLogs
}

// SetForceStdErr sends every level to stderr, keeping stdout free for command output.
func SetForceStdErr(v bool) {
	mu.Lock()
	forceStdErr = v
	rebuild()
	mu.Unlock()
}

// SetOutput redirects all log output to w. Passing nil restores stdout/stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	if w == nil {
		outWriter, errWriter = os.Stdout, os.Stderr
	} else {
		outWriter, errWriter = w, w
	}
	rebuild()
	mu.Unlock()
}

// Logger returns the structured logger used for non-error levels.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := outLogger
	return &l
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	mu.RLock()
	l := outLogger
	mu.RUnlock()
	l.Debug().Msgf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	mu.RLock()
	l := outLogger
	mu.RUnlock()
	l.Info().Msgf(format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	mu.RLock()
	l := outLogger
	mu.RUnlock()
	l.Warn().Msgf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	mu.RLock()
	l := errLogger
	mu.RUnlock()
	l.Error().Msgf(format, args...)
}

// Fatalf logs an error message and exits the program.
func Fatalf(format string, args ...interface{}) {
	Errorf(format, args...)
	os.Exit(1)
}

// rebuild must be called with mu held.
func rebuild() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if disableLogs {
		level = zerolog.Disabled
	}

	out := outWriter
	if forceStdErr {
		out = errWriter
	}

	outLogger = zerolog.New(consoleWriter(out)).Level(level).With().Timestamp().Logger()
	errLogger = zerolog.New(consoleWriter(errWriter)).Level(level).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !isTerminal(w),
		TimeFormat: time.TimeOnly,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
