// Package logger provides the process-wide logger. Output is discarded until SetOutput is called.
package logger

import (
	"io"
	"log"

	"github.com/ktr0731/protoir/meta"
)

var defaultLogger = newDefaultLogger()

func newDefaultLogger() *log.Logger {
	return log.New(io.Discard, meta.AppName+": ", 0)
}

// SetOutput enables logging to w.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
	enabled = true
}

func SetPrefix(p string) {
	defaultLogger.SetPrefix(p)
}

// Reset restores the default logger, which discards everything.
func Reset() {
	defaultLogger = newDefaultLogger()
	enabled = false
}

var enabled bool

func Println(v ...interface{}) {
	defaultLogger.Println(v...)
}

func Printf(format string, v ...interface{}) {
	defaultLogger.Printf(format, v...)
}

// Scriptln calls f and logs the returned values only if logging is enabled.
// It is useful when computing the arguments is expensive.
func Scriptln(f func() []interface{}) {
	if !enabled {
		return
	}
	defaultLogger.Println(f()...)
}
