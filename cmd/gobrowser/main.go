// Command gobrowser is the CLI entry point spec.md §6 names: one
// positional URL argument (default file:///home/), wiring weburl through
// internal/tab and internal/browser to a Surface/FontProvider/Clipboard,
// then driving the single synchronous input-event loop spec.md §5
// describes. With no real windowing toolkit kept from the teacher (its
// only binding, github.com/webview/webview, cannot run headlessly — see
// DESIGN.md), input events are read as simple line commands from stdin
// rather than real mouse/keyboard events, so the engine's routing/
// mutation/render/draw cycle stays exercisable from a terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/npdhungana/gobrowser/internal/applog"
	"github.com/npdhungana/gobrowser/internal/browser"
	"github.com/npdhungana/gobrowser/internal/clipboard"
	"github.com/npdhungana/gobrowser/internal/config"
	"github.com/npdhungana/gobrowser/internal/cssom"
	"github.com/npdhungana/gobrowser/internal/fontprovider"
	"github.com/npdhungana/gobrowser/internal/surface"
	"github.com/npdhungana/gobrowser/internal/weburl"
)

// Opts mirrors umputun-newscope's CLI Opts shape, plus spec.md §6's one
// positional URL argument (default file:///home/, no other flags
// required to run).
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"gobrowser.yml" description:"configuration file"`
	Debug   bool   `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool   `short:"V" long:"version" description:"show version info"`

	Args struct {
		URL string `positional-arg-name:"url"`
	} `positional-args:"yes"`
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

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[WARN] using defaults, could not load %s: %v", opts.Config, err)
		cfg = config.Default()
	}

	startURL := opts.Args.URL
	if startURL == "" {
		startURL = cfg.StartURL
	}

	sheet := loadDefaultStylesheet()

	b := browser.New(float64(cfg.Window.Width), float64(cfg.Window.Height), fontprovider.Default{})
	b.Transport = weburl.DefaultTransport{}
	b.Clipboard = clipboard.NewInMemory()
	b.DefaultSheet = sheet
	b.Log = func(msg string) { log.Printf("[WARN] %s", msg) }
	b.ScrollStep = float64(cfg.ScrollStep)

	if err := b.NewTab(weburl.Parse(startURL)); err != nil {
		log.Printf("[ERROR] failed to load %s: %v", startURL, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runEventLoop(ctx, b)
}

func loadDefaultStylesheet() []cssom.Rule {
	data, err := os.ReadFile("browser.css")
	if err != nil {
		data, err = os.ReadFile("assets/browser.css")
	}
	if err != nil {
		log.Printf("[WARN] no default stylesheet found next to the binary: %v", err)
		return nil
	}
	return cssom.Parse(string(data))
}

// runEventLoop is spec.md §5's single owning task: one line of input per
// iteration, routed to Browser, then a synchronous redraw — no event is
// processed while another is in flight.
func runEventLoop(ctx context.Context, b *browser.Browser) {
	rec := surface.NewRecorder()
	b.Draw(rec)
	fmt.Printf("loaded %q — %q\n", b.Active.URL.String(), rec.Title)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			return
		}
		if !dispatchCommand(b, scanner.Text()) {
			return
		}
		b.Draw(rec)
		fmt.Printf("%q — %d commands\n", rec.Title, len(rec.Last))
	}
}

// dispatchCommand applies one line command to b, returning false on
// "quit" (spec.md §6's "exit code 0 on normal quit").
func dispatchCommand(b *browser.Browser, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "quit", "exit":
		return false
	case "click":
		if len(fields) == 3 {
			x, _ := strconv.ParseFloat(fields[1], 64)
			y, _ := strconv.ParseFloat(fields[2], 64)
			if err := b.Click(x, y); err != nil {
				log.Printf("[WARN] click: %v", err)
			}
		}
	case "scroll":
		if len(fields) == 2 && fields[1] == "down" {
			b.Scrolldown()
		} else if len(fields) == 2 && fields[1] == "up" {
			b.Scrollup()
		}
	case "back":
		if b.Active != nil {
			b.Active.GoBack()
		}
	case "forward":
		if b.Active != nil {
			b.Active.GoForward()
		}
	case "reload":
		if b.Active != nil {
			b.Active.Reload()
		}
	case "type":
		for _, ch := range strings.Join(fields[1:], " ") {
			b.KeyPress(ch)
		}
	case "enter":
		if err := b.Enter(); err != nil {
			log.Printf("[WARN] enter: %v", err)
		}
	}
	return true
}
