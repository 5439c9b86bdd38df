// Package log provides leveled logging on top of the standard log package. A single global
// verbosity is shared by all packages; messages above it are dropped.
package log

import (
	"fmt"
	"io"
	golog "log"
	"os"
	"sync/atomic"
)

var (
	verbosity atomic.Int32
	logger    atomic.Pointer[golog.Logger]
)

func init() { logger.Store(golog.New(os.Stderr, "", golog.LstdFlags)) }

// SetVerbosity sets the highest level which is logged. Level 0 is always logged.
func SetVerbosity(v int) { verbosity.Store(int32(v)) }

// V reports whether messages at level v are logged.
func V(v int) bool { return v <= int(verbosity.Load()) }

// SetOutput redirects log output, and disables timestamps when w is not stderr. It may be called
// while other goroutines are logging.
func SetOutput(w io.Writer) {
	flags := golog.LstdFlags
	if w != io.Writer(os.Stderr) {
		flags = 0
	}
	logger.Store(golog.New(w, "", flags))
}

func Logf(v int, msg string, args ...interface{}) {
	if V(v) {
		logger.Load().Output(2, fmt.Sprintf(msg, args...))
	}
}

func Fatal(err error) {
	logger.Load().Output(2, err.Error())
	os.Exit(1)
}

func Fatalf(msg string, args ...interface{}) {
	logger.Load().Output(2, fmt.Sprintf(msg, args...))
	os.Exit(1)
}

// VerboseWriter logs everything written to it at its level.
type VerboseWriter int

func (w VerboseWriter) Write(data []byte) (int, error) {
	Logf(int(w), "%s", data)
	return len(data), nil
}
