// Package monitoring provides the shared diagnostic logger for the engine.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Diagnostics gates Debugf. Per-cell refresh logging is too chatty for
// production runs, so it stays off unless explicitly enabled.
var Diagnostics bool

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Debugf logs through Logf only when Diagnostics is enabled.
func Debugf(format string, v ...interface{}) {
	if Diagnostics {
		Logf(format, v...)
	}
}
