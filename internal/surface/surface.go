// Package surface defines the opaque render-target collaborator spec.md
// §1 names: something a display list can be drained to every redraw. The
// teacher's only windowing code, toybrowser/internal/render/webview.go,
// binds github.com/webview/webview — a native OS widget that cannot run
// headlessly, so it is dropped (see DESIGN.md) in favor of this interface
// plus an in-memory default good enough to drive and test
// internal/tab/internal/browser without a GUI toolkit.
package surface

import "github.com/npdhungana/gobrowser/internal/paint"

// Surface receives a fully built display list once per redraw and is
// responsible for actually drawing it (to a window, an image, a test
// recorder — whatever the concrete type wants).
type Surface interface {
	Draw(commands []paint.Command)
	// SetTitle surfaces the document's <title> text, per SPEC_FULL.md §5's
	// window-title supplement (original_source ui.py's get_title).
	SetTitle(title string)
}

// Recorder is a headless Surface that keeps the most recent display list
// and a running draw count, enough to drive internal/browser and
// internal/tab end to end in tests without any GUI dependency.
type Recorder struct {
	Last  []paint.Command
	Count int
	Title string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Draw stores commands as the most recently drawn frame.
func (r *Recorder) Draw(commands []paint.Command) {
	r.Last = commands
	r.Count++
}

// SetTitle records the most recently reported document title.
func (r *Recorder) SetTitle(title string) {
	r.Title = title
}
