// Package browser implements the window-level shell spec.md §4.9 names:
// a tab strip, new-tab/back/forward buttons, an address bar with its own
// cursor/selection, and the input-routing split between chrome and the
// active tab's content area. The chrome has no reload button; reloading
// is reached only through Tab.Reload. Grounded directly on
// original_source ui.py's Chrome and Browser classes.
package browser

import (
	"strconv"
	"strings"

	"github.com/npdhungana/gobrowser/internal/fontprovider"
	"github.com/npdhungana/gobrowser/internal/paint"
)

const chromePadding = 5.0

// rect is a local stand-in for ui.py's Rect.contains_point, kept separate
// from paint.Rect (which has no hit-testing helper of its own).
type rect struct {
	left, top, right, bottom float64
}

func (r rect) contains(x, y float64) bool {
	return x >= r.left && x < r.right && y >= r.top && y < r.bottom
}

func (r rect) toPaint() paint.Rect {
	return paint.Rect{Left: r.left, Top: r.top, Right: r.right, Bottom: r.bottom}
}

// Chrome owns the tab strip, navigation buttons and address bar: every
// pixel above a Browser's active tab. It holds no reference to any Tab —
// Browser mediates every interaction that needs one.
type Chrome struct {
	width  float64
	font   fontprovider.Font
	height float64 // font line height, ui.py's font_height

	tabbarTop, tabbarBottom float64
	urlbarTop, urlbarBottom float64
	Bottom                  float64

	newTabRect, backRect, forwardRect, addressRect rect

	Focus          string // "", or "address bar"
	AddressBar     string
	Cursor         int
	selectionStart *int
	selectionEnd   *int
}

// NewChrome lays out chrome geometry for a window of the given width,
// matching ui.py Chrome.__init__.
func NewChrome(width float64, fonts fontprovider.Provider) *Chrome {
	c := &Chrome{width: width, font: fonts.Font(20, "normal", "roman")}
	c.height = float64(c.font.LineHeight())
	c.layout()
	return c
}

func (c *Chrome) layout() {
	p := chromePadding
	c.tabbarTop = 0
	c.tabbarBottom = c.height + 2*p
	plusWidth := float64(c.font.Measure("+")) + 2*p
	c.newTabRect = rect{p, p, p + plusWidth, p + c.height}

	c.Bottom = c.tabbarBottom
	c.urlbarTop = c.tabbarBottom
	c.urlbarBottom = c.urlbarTop + c.height + 2*p
	c.Bottom = c.urlbarBottom

	backWidth := float64(c.font.Measure("<")) + 2*p
	c.backRect = rect{p, c.urlbarTop + p, p + backWidth, c.urlbarBottom - p}

	forwardWidth := float64(c.font.Measure(">")) + 2*p
	c.forwardRect = rect{
		c.backRect.right + p, c.urlbarTop + p,
		c.backRect.right + p + forwardWidth, c.urlbarBottom - p,
	}

	c.addressRect = rect{c.forwardRect.right + p, c.urlbarTop + p, c.width - p, c.urlbarBottom - p}
}

// Resize updates the address bar's right edge for a new window width,
// matching ui.py Chrome.resize.
func (c *Chrome) Resize(width float64) {
	c.width = width
	c.addressRect.right = width - chromePadding
}

// Blur clears chrome focus, called whenever a click lands in the tab's
// content area.
func (c *Chrome) Blur() {
	c.Focus = ""
}

// KeyPress inserts ch into the address bar at the cursor if it is
// focused, reporting whether the key was consumed.
func (c *Chrome) KeyPress(ch rune) bool {
	if c.Focus != "address bar" {
		return false
	}
	c.deleteSelection()
	c.AddressBar = c.AddressBar[:c.Cursor] + string(ch) + c.AddressBar[c.Cursor:]
	c.Cursor++
	return true
}

// Backspace deletes the selection, or the character before the cursor.
func (c *Chrome) Backspace() bool {
	if c.Focus != "address bar" {
		return false
	}
	if c.deleteSelection() {
		return true
	}
	if c.Cursor > 0 {
		c.AddressBar = c.AddressBar[:c.Cursor-1] + c.AddressBar[c.Cursor:]
		c.Cursor--
		return true
	}
	return false
}

// ArrowLeft moves the cursor left, extending the selection when shift is
// held, matching ui.py Chrome.arrow_left.
func (c *Chrome) ArrowLeft(shift bool) bool {
	if c.Focus != "address bar" || c.Cursor <= 0 {
		return false
	}
	c.Cursor--
	c.extendSelection(shift, c.Cursor+1)
	return true
}

// ArrowRight moves the cursor right, extending the selection when shift
// is held.
func (c *Chrome) ArrowRight(shift bool) bool {
	if c.Focus != "address bar" || c.Cursor >= len(c.AddressBar) {
		return false
	}
	c.Cursor++
	c.extendSelection(shift, c.Cursor-1)
	return true
}

func (c *Chrome) extendSelection(shift bool, anchor int) {
	if !shift {
		c.selectionStart, c.selectionEnd = nil, nil
		return
	}
	if c.selectionStart == nil {
		a := anchor
		c.selectionStart = &a
	}
	end := c.Cursor
	c.selectionEnd = &end
}

func (c *Chrome) deleteSelection() bool {
	if c.selectionStart == nil {
		return false
	}
	start, end := c.selectionRange()
	c.AddressBar = c.AddressBar[:start] + c.AddressBar[end:]
	c.Cursor = start
	c.selectionStart, c.selectionEnd = nil, nil
	return true
}

func (c *Chrome) selectionRange() (int, int) {
	start, end := *c.selectionStart, *c.selectionEnd
	if start > end {
		start, end = end, start
	}
	return start, end
}

// Copy returns the selected address-bar text, or "" if nothing is
// selected.
func (c *Chrome) Copy() string {
	if c.selectionStart == nil {
		return ""
	}
	start, end := c.selectionRange()
	return c.AddressBar[start:end]
}

// Paste inserts text at the cursor, replacing any selection first.
func (c *Chrome) Paste(text string) {
	c.deleteSelection()
	c.AddressBar = c.AddressBar[:c.Cursor] + text + c.AddressBar[c.Cursor:]
	c.Cursor += len(text)
}

// Cut returns the selected text and removes it, matching ui.py
// Chrome.cut (copy then delete_selection).
func (c *Chrome) Cut() string {
	text := c.Copy()
	c.deleteSelection()
	return text
}

// IsURL implements ui.py Chrome.is_url: a rough heuristic distinguishing
// a typed address from a search query.
func IsURL(text string) bool {
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		return true
	}
	if strings.Contains(text, "://") || strings.HasPrefix(text, "data:") {
		return true
	}
	if strings.Contains(text, ".") && !strings.Contains(text, " ") {
		return true
	}
	return false
}

// tabRect computes the i-th tab's strip rectangle, matching ui.py
// Chrome.tab_rect.
func (c *Chrome) tabRect(i int) rect {
	p := chromePadding
	tabsStart := c.newTabRect.right + p
	tabWidth := float64(c.font.Measure("Tab X")) + 2*p
	return rect{tabsStart + tabWidth*float64(i), c.tabbarTop, tabsStart + tabWidth*float64(i+1), c.tabbarBottom}
}

// paint renders the tab strip, new-tab button, back/forward buttons and
// address bar (or URL display), matching ui.py Chrome.paint. It takes the
// owning Browser to read tab history state and labels rather than
// duplicating that bookkeeping in Chrome itself.
func (c *Chrome) paint(b *Browser) []paint.Command {
	p := chromePadding
	var cmds []paint.Command

	cmds = append(cmds, paint.DrawRect{
		Rect:  paint.Rect{Left: 0, Top: c.urlbarTop, Right: c.width, Bottom: c.Bottom},
		Color: "white",
	})
	cmds = append(cmds, paint.DrawLine{X1: 0, Y1: c.Bottom, X2: c.width, Y2: c.Bottom, Color: "black", Thickness: 1})

	cmds = append(cmds, paint.DrawOutline{Rect: c.newTabRect.toPaint(), Color: "black", Thickness: 1})
	cmds = append(cmds, paint.NewDrawText(c.newTabRect.left+p, c.newTabRect.top, "+", c.font, "black"))

	for i, t := range b.Tabs {
		bounds := c.tabRect(i)
		cmds = append(cmds, paint.DrawLine{X1: bounds.left, Y1: 0, X2: bounds.left, Y2: bounds.bottom, Color: "black", Thickness: 1})
		cmds = append(cmds, paint.DrawLine{X1: bounds.right, Y1: 0, X2: bounds.right, Y2: bounds.bottom, Color: "black", Thickness: 1})
		cmds = append(cmds, paint.NewDrawText(bounds.left+p, bounds.top+p, tabLabel(i), c.font, "black"))
		if t == b.Active {
			cmds = append(cmds, paint.DrawLine{X1: 0, Y1: bounds.bottom, X2: bounds.left, Y2: bounds.bottom, Color: "black", Thickness: 1})
			cmds = append(cmds, paint.DrawLine{X1: bounds.right, Y1: bounds.bottom, X2: c.width, Y2: bounds.bottom, Color: "black", Thickness: 1})
		}
	}

	backColor := "gray"
	if b.Active != nil && b.Active.CanGoBack() {
		backColor = "black"
	}
	cmds = append(cmds, paint.DrawOutline{Rect: c.backRect.toPaint(), Color: backColor, Thickness: 1})
	cmds = append(cmds, paint.NewDrawText(c.backRect.left+p, c.backRect.top, "<", c.font, backColor))

	forwardColor := "gray"
	if b.Active != nil && b.Active.CanGoForward() {
		forwardColor = "black"
	}
	cmds = append(cmds, paint.DrawOutline{Rect: c.forwardRect.toPaint(), Color: forwardColor, Thickness: 1})
	cmds = append(cmds, paint.NewDrawText(c.forwardRect.left+p, c.forwardRect.top, ">", c.font, forwardColor))

	cmds = append(cmds, paint.DrawOutline{Rect: c.addressRect.toPaint(), Color: "black", Thickness: 1})

	if c.Focus == "address bar" {
		if c.selectionStart != nil {
			start, end := c.selectionRange()
			startX := c.addressRect.left + p + float64(c.font.Measure(c.AddressBar[:start]))
			endX := c.addressRect.left + p + float64(c.font.Measure(c.AddressBar[:end]))
			cmds = append(cmds, paint.DrawRect{
				Rect:  paint.Rect{Left: startX, Top: c.addressRect.top + p, Right: endX, Bottom: c.addressRect.bottom - p},
				Color: "lightblue",
			})
		}
		cmds = append(cmds, paint.NewDrawText(c.addressRect.left+p, c.addressRect.top, c.AddressBar, c.font, "black"))
		w := float64(c.font.Measure(c.AddressBar[:c.Cursor]))
		x := c.addressRect.left + p + w
		cmds = append(cmds, paint.DrawLine{X1: x, Y1: c.addressRect.top, X2: x, Y2: c.addressRect.bottom, Color: "red", Thickness: 1})
	} else if b.Active != nil {
		cmds = append(cmds, paint.NewDrawText(c.addressRect.left+p, c.addressRect.top, b.Active.URL.String(), c.font, "black"))
	}

	return cmds
}

func tabLabel(i int) string {
	return "Tab " + strconv.Itoa(i)
}
