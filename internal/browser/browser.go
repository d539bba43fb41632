package browser

import (
	"net/url"
	"strings"

	"github.com/npdhungana/gobrowser/internal/clipboard"
	"github.com/npdhungana/gobrowser/internal/cssom"
	"github.com/npdhungana/gobrowser/internal/fontprovider"
	"github.com/npdhungana/gobrowser/internal/paint"
	"github.com/npdhungana/gobrowser/internal/surface"
	"github.com/npdhungana/gobrowser/internal/tab"
	"github.com/npdhungana/gobrowser/internal/weburl"
)

// searchURL is ui.py Chrome.enter's fallback destination for address-bar
// text that IsURL rejects.
const searchURL = "https://www.google.com/search?q="

// Browser owns a set of Tabs, the Chrome drawn above them, and the single
// focus split ("chrome" vs. "content") spec.md §4.9 describes. It is the
// top-level collaborator cmd/gobrowser wires a Surface/FontProvider/
// Clipboard/Transport into.
type Browser struct {
	Width, Height float64 // full window size, including chrome
	Fonts         fontprovider.Provider
	Transport     weburl.Transport
	Clipboard     clipboard.Clipboard
	DefaultSheet  []cssom.Rule
	Log           func(string)
	ScrollStep    float64 // per-tab arrow-key scroll distance; see internal/config.Config.ScrollStep

	Tabs   []*tab.Tab
	Active *tab.Tab
	Chrome *Chrome

	focus string // "" or "content"
}

// New creates an empty Browser sized to (width, height) with its Chrome
// laid out for that width. Callers set Transport/Fonts/Clipboard/
// DefaultSheet before the first NewTab.
func New(width, height float64, fonts fontprovider.Provider) *Browser {
	return &Browser{Width: width, Height: height, Fonts: fonts, Chrome: NewChrome(width, fonts)}
}

// NewTab creates a Tab sized to the content area below Chrome, loads
// target into it, makes it the active tab, and appends it to Tabs —
// matching ui.py Browser.new_tab.
func (b *Browser) NewTab(target weburl.URL) error {
	t := tab.New(b.Width, b.Height-b.Chrome.Bottom)
	t.Fonts = b.Fonts
	t.Transport = b.Transport
	t.Clipboard = b.Clipboard
	t.DefaultSheet = b.DefaultSheet
	t.Log = b.Log
	t.ScrollStep = b.ScrollStep

	u := target
	if err := t.Load(&u, nil, false); err != nil {
		return err
	}
	b.Tabs = append(b.Tabs, t)
	b.Active = t
	return nil
}

// Resize updates window dimensions, Chrome's address-bar right edge, and
// the active tab's content viewport, matching ui.py
// Browser.handle_configure.
func (b *Browser) Resize(width, height float64) {
	b.Width, b.Height = width, height
	b.Chrome.Resize(width)
	if b.Active != nil {
		b.Active.Resize(width, height-b.Chrome.Bottom)
	}
}

// Click routes a window-coordinate click to Chrome or the active tab's
// content area by y-coordinate against Chrome.Bottom, matching ui.py
// Browser.handle_click.
func (b *Browser) Click(x, y float64) error {
	if y < b.Chrome.Bottom {
		b.focus = ""
		b.clickChrome(x, y)
		return nil
	}
	b.focus = "content"
	b.Chrome.Blur()
	if b.Active == nil {
		return nil
	}
	return b.Active.Click(x, y-b.Chrome.Bottom)
}

func (b *Browser) clickChrome(x, y float64) {
	c := b.Chrome
	wasFocused := c.Focus == "address bar"
	c.Focus = ""
	switch {
	case c.newTabRect.contains(x, y):
		b.NewTab(weburl.Parse("about:blank"))
	case c.backRect.contains(x, y) && b.Active != nil:
		b.Active.GoBack()
	case c.forwardRect.contains(x, y) && b.Active != nil:
		b.Active.GoForward()
	case c.addressRect.contains(x, y):
		c.Focus = "address bar"
		if !wasFocused && b.Active != nil {
			c.AddressBar = b.Active.URL.String()
		}
		c.Cursor = len(c.AddressBar)
		for i := range c.AddressBar {
			w := float64(c.font.Measure(c.AddressBar[:i+1]))
			if c.addressRect.left+chromePadding+w > x {
				c.Cursor = i
				break
			}
		}
		c.selectionStart, c.selectionEnd = nil, nil
	default:
		for i, t := range b.Tabs {
			if c.tabRect(i).contains(x, y) {
				b.Active = t
				break
			}
		}
	}
}

// KeyPress routes a typed character to Chrome's address bar if focused,
// else to the active tab's focused form control.
func (b *Browser) KeyPress(ch rune) {
	if b.Chrome.KeyPress(ch) {
		return
	}
	if b.focus == "content" && b.Active != nil {
		b.Active.KeyPress(ch)
	}
}

// Backspace routes to Chrome or the active tab, matching ui.py
// Browser.handle_backspace.
func (b *Browser) Backspace() {
	if b.Chrome.Backspace() {
		return
	}
	if b.focus == "content" && b.Active != nil {
		b.Active.Backspace()
	}
}

// ArrowLeft routes to Chrome or the active tab.
func (b *Browser) ArrowLeft(shift bool) {
	if b.Chrome.ArrowLeft(shift) {
		return
	}
	if b.focus == "content" && b.Active != nil {
		b.Active.ArrowLeft(shift)
	}
}

// ArrowRight routes to Chrome or the active tab.
func (b *Browser) ArrowRight(shift bool) {
	if b.Chrome.ArrowRight(shift) {
		return
	}
	if b.focus == "content" && b.Active != nil {
		b.Active.ArrowRight(shift)
	}
}

// Copy copies the focused selection (chrome address bar or tab content)
// to the shared Clipboard.
func (b *Browser) Copy() {
	if b.Chrome.Focus == "address bar" {
		if text := b.Chrome.Copy(); text != "" && b.Clipboard != nil {
			b.Clipboard.Set(text)
		}
		return
	}
	if b.focus == "content" && b.Active != nil {
		b.Active.Copy()
	}
}

// Paste inserts the shared Clipboard's contents at the focused cursor.
func (b *Browser) Paste() {
	if b.Chrome.Focus == "address bar" {
		if b.Clipboard != nil {
			b.Chrome.Paste(b.Clipboard.Get())
		}
		return
	}
	if b.focus == "content" && b.Active != nil {
		b.Active.Paste()
	}
}

// Cut copies the focused selection to the Clipboard and removes it.
func (b *Browser) Cut() {
	if b.Chrome.Focus == "address bar" {
		if text := b.Chrome.Cut(); text != "" && b.Clipboard != nil {
			b.Clipboard.Set(text)
		}
		return
	}
	if b.focus == "content" && b.Active != nil {
		b.Active.Cut()
	}
}

// Enter submits the address bar (navigating directly if it looks like a
// URL, else issuing a search) when Chrome holds focus, else forwards to
// the active tab's form-submission Enter, matching ui.py
// Browser.handle_enter / Chrome.enter.
func (b *Browser) Enter() error {
	if b.Chrome.Focus == "address bar" {
		text := strings.TrimSpace(b.Chrome.AddressBar)
		b.Chrome.Focus = ""
		if b.Active == nil {
			return nil
		}
		var target weburl.URL
		if IsURL(text) {
			if !strings.Contains(text, "://") && !strings.HasPrefix(text, "data:") {
				text = "https://" + text
			}
			target = weburl.Parse(text)
		} else {
			target = weburl.Parse(searchURL + url.QueryEscape(text))
		}
		return b.Active.Load(&target, nil, false)
	}
	if b.focus == "content" && b.Active != nil {
		return b.Active.Enter()
	}
	return nil
}

// Scrolldown/Scrollup/MouseWheel forward to the active tab; chrome has no
// scrollable surface.
func (b *Browser) Scrolldown() {
	if b.Active != nil {
		b.Active.Scrolldown()
	}
}

func (b *Browser) Scrollup() {
	if b.Active != nil {
		b.Active.Scrollup()
	}
}

func (b *Browser) MouseWheel(delta float64) {
	if b.Active != nil {
		b.Active.MouseWheel(delta)
	}
}

// Draw composes the active tab's content (shifted below Chrome) with
// Chrome's own paint and drains the result to s in one call, then
// surfaces the window title, matching ui.py Browser.draw.
func (b *Browser) Draw(s surface.Surface) {
	var cmds []paint.Command
	if b.Active != nil {
		cmds = append(cmds, b.Active.VisibleCommands(b.Chrome.Bottom)...)
	}
	cmds = append(cmds, b.Chrome.paint(b)...)
	s.Draw(cmds)

	if b.Active != nil {
		if title := b.Active.Title(); title != "" {
			s.SetTitle(title)
			return
		}
		s.SetTitle(b.Active.URL.String())
	}
}
