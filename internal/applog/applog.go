// Package applog wraps github.com/go-pkgz/lgr the way
// umputun-newscope's cmd/newscope/main.go setupLog does: a single
// process-wide logger with millisecond timestamps, bracketed levels, and
// colorized output, plus a debug mode that adds caller file/function.
package applog

import (
	"log"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
)

// Setup installs the process-wide structured logger. debug adds caller
// file/function to every line, matching setupLog(dbg bool)'s behavior.
func Setup(debug bool) {
	opts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if debug {
		opts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc: func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:  func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:  func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc: func(s string) string { return color.New(color.FgWhite).Sprint(s) },
	}
	opts = append(opts, lgr.Map(colorizer))

	lgr.SetupStdLogger(opts...)
	lgr.Setup(opts...)
}

// Logger is the printf-style shape of Warnf, Errorf and Infof. Nothing in
// the module uses it: internal/tab's Tab.Log and internal/browser take a
// plain func(string) callback instead.
type Logger func(format string, args ...interface{})

// Warnf logs a recoverable error at WARN and continues, per SPEC_FULL.md
// §3's "every recoverable error class ... logs at WARN and continues".
// Setup redirects the standard logger through lgr, so a plain log.Printf
// with a bracketed level prefix is all any caller needs, matching
// umputun-newscope's own `log.Printf("[INFO] ...")` call sites.
func Warnf(format string, args ...interface{}) {
	log.Printf("[WARN] "+format, args...)
}

// Errorf logs a fatal condition (a failed fetch of the main document) at
// ERROR before the caller propagates it.
func Errorf(format string, args ...interface{}) {
	log.Printf("[ERROR] "+format, args...)
}

// Infof logs a routine lifecycle event (tab created, navigation started).
func Infof(format string, args ...interface{}) {
	log.Printf("[INFO] "+format, args...)
}
