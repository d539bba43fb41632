// Command formserver is the trivial companion HTTP form-handling server
// spec.md §6 names: a guestbook that serves a page with a <form>, accepts
// POST /add, and exists only so internal/tab's form-submission path
// (SPEC_FULL.md §4.8) has something real to submit to. It is an
// independent process from cmd/gobrowser, per SPEC_FULL.md §4.11.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/npdhungana/gobrowser/internal/applog"
)

// Opts mirrors umputun-newscope's CLI Opts shape: go-flags with env tags
// and a --version flag.
type Opts struct {
	Listen  string `short:"l" long:"listen" env:"LISTEN" default:":8000" description:"address to listen on"`
	Debug   bool   `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool   `short:"V" long:"version" description:"show version info"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	applog.Setup(opts.Debug)
	log.Printf("[INFO] starting formserver version %s on %s", revision, opts.Listen)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newServer(opts.Listen)
	if err := srv.run(ctx); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}
