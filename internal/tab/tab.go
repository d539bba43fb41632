// Package tab implements the per-tab pipeline: load, render, history
// navigation, and every user-interaction method spec.md §4.8 names.
// Grounded on original_source ui.py's Tab class.
package tab

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/npdhungana/gobrowser/internal/clipboard"
	"github.com/npdhungana/gobrowser/internal/csp"
	"github.com/npdhungana/gobrowser/internal/cssom"
	"github.com/npdhungana/gobrowser/internal/dom"
	"github.com/npdhungana/gobrowser/internal/fontprovider"
	"github.com/npdhungana/gobrowser/internal/layout"
	"github.com/npdhungana/gobrowser/internal/paint"
	"github.com/npdhungana/gobrowser/internal/scripthost"
	"github.com/npdhungana/gobrowser/internal/style"
	"github.com/npdhungana/gobrowser/internal/surface"
	"github.com/npdhungana/gobrowser/internal/weburl"
)

// Tab owns one document's full pipeline: DOM, rules, layout, display
// list, focus/scroll state and navigation history. It is mutated only by
// its own methods.
type Tab struct {
	Width, Height float64
	Fonts         fontprovider.Provider
	Transport     weburl.Transport
	Clipboard     clipboard.Clipboard
	DefaultSheet  []cssom.Rule
	Log           func(string)

	// ScrollStep is the pixel distance one arrow-key scroll moves, per
	// SPEC_FULL.md §3's config.ScrollStep. Zero means "unset": Scrolldown/
	// Scrollup fall back to defaultScrollStep.
	ScrollStep float64

	URL     weburl.URL
	history []*weburl.URL // back stack, most recent last
	forward []*weburl.URL // forward stack, most recent last

	Document *dom.Node
	rules    []cssom.Rule
	layout   *layout.Node
	display  []paint.Command

	ScrollY float64

	Focus *dom.Node

	scripts *scripthost.Host
}

// New creates an empty Tab sized to (width, height). Callers set Transport/
// Fonts/Clipboard/DefaultSheet before the first Load.
func New(width, height float64) *Tab {
	return &Tab{Width: width, Height: height}
}

func (t *Tab) logf(format string, args ...interface{}) {
	if t.Log != nil {
		t.Log(fmt.Sprintf(format, args...))
	}
}

// Load implements spec.md §4.8's load(url, payload?, from_navigation?).
// target is kept as the exact pointer appended to history, so reload's
// "same object" duplicate check (SPEC_FULL.md §7 Open Question 1) can
// compare history entries by pointer identity rather than parsed value.
func (t *Tab) Load(target *weburl.URL, payload []byte, fromNavigation bool) error {
	if !fromNavigation {
		t.forward = nil
	}

	resp, err := weburl.Request(*target, t.Transport, urlPtr(t.URL), payload)
	if err != nil {
		return err
	}
	t.history = append(t.history, target)
	t.URL = *target

	t.Document = dom.Parse(resp.Body)

	rules := append([]cssom.Rule{}, t.DefaultSheet...)
	origin, _ := t.URL.Origin()

	var allowList csp.AllowList
	if header, ok := resp.Headers["content-security-policy"]; ok {
		allowList = csp.Parse(header, origin)
	} else {
		allowList = csp.AllowList{}
	}

	for _, n := range dom.Flatten(t.Document) {
		if n.Type != dom.ElementNode {
			continue
		}
		switch {
		case n.Tag == "link":
			rel, _ := n.Attr("rel")
			href, hasHref := n.Attr("href")
			if !strings.EqualFold(rel, "stylesheet") || !hasHref {
				continue
			}
			sheetURL := weburl.Resolve(t.URL, href)
			sheetOrigin, hasOrigin := sheetURL.Origin()
			if hasOrigin && !allowList.Permits(sheetOrigin) {
				t.logf("blocked stylesheet by CSP: %s", sheetURL.String())
				continue
			}
			sheetResp, err := weburl.Request(sheetURL, t.Transport, urlPtr(t.URL), nil)
			if err != nil {
				t.logf("stylesheet fetch failed: %s: %v", sheetURL.String(), err)
				continue
			}
			rules = append(rules, cssom.Parse(sheetResp.Body)...)
		case n.Tag == "style":
			rules = append(rules, cssom.Parse(n.DirectText())...)
		}
	}
	t.rules = rules

	t.scripts = scripthost.New(t.Document)
	t.scripts.TabURL = t.URL
	t.scripts.TabOrigin = origin
	t.scripts.CSP = allowList
	t.scripts.Log = t.Log
	t.scripts.Render = t.Render
	t.scripts.Fetch = func(u weburl.URL, referrer *weburl.URL, body []byte) (weburl.Response, error) {
		return weburl.Request(u, t.Transport, referrer, body)
	}

	for _, n := range dom.Flatten(t.Document) {
		if n.Type != dom.ElementNode || n.Tag != "script" {
			continue
		}
		src, hasSrc := n.Attr("src")
		if !hasSrc {
			continue
		}
		scriptURL := weburl.Resolve(t.URL, src)
		scriptOrigin, hasOrigin := scriptURL.Origin()
		if hasOrigin && !allowList.Permits(scriptOrigin) {
			t.logf("blocked script by CSP: %s", scriptURL.String())
			continue
		}
		scriptResp, err := weburl.Request(scriptURL, t.Transport, urlPtr(t.URL), nil)
		if err != nil {
			t.logf("script fetch failed: %s: %v", scriptURL.String(), err)
			continue
		}
		t.scripts.Run(scriptResp.Body)
	}

	for _, n := range dom.Flatten(t.Document) {
		if n.Type == dom.ElementNode && n.Tag == "textarea" {
			if _, has := n.Attr("value"); !has {
				n.SetAttr("value", n.DirectText())
				n.RemoveChildren()
			}
		}
	}

	t.Render()
	if frag := t.URL.Fragment; frag != "" {
		t.scrollToFragment(frag)
	}
	return nil
}

// Render re-resolves style, rebuilds layout and the display list — a pure
// function of (DOM, rules, Width).
func (t *Tab) Render() {
	if t.Document == nil {
		return
	}
	sorted := cssom.SortByPriority(t.rules)
	style.Resolve(t.Document, sorted)
	t.layout = layout.Layout(t.Document, int(t.Width), t.Fonts)
	t.display = paint.Paint(t.layout)
}

// Draw culls the display list against the current scroll window and
// drains it to s, then paints a thin proportional scrollbar — the
// supplement SPEC_FULL.md §5 describes (original_source ui.py
// draw_scrollbar), since no layout/paint node represents chrome.
func (t *Tab) Draw(s surface.Surface) {
	s.Draw(t.VisibleCommands(0))
	s.SetTitle(t.Title())
}

// VisibleCommands culls the display list to the current scroll window,
// appends the scrollbar, and shifts everything down by chromeOffset —
// original_source ui.py's Tab.draw(canvas, offset) calling each command's
// execute(scroll - offset, canvas). A standalone Tab passes chromeOffset
// 0; internal/browser's Chrome passes its own bottom edge so tab content
// lands below the tab strip and address bar in window coordinates.
func (t *Tab) VisibleCommands(chromeOffset float64) []paint.Command {
	visible := paint.CullVisible(t.display, t.ScrollY, t.Height)
	if bar := t.scrollbarCommand(); bar != nil {
		visible = append(visible, bar)
	}
	return paint.Translate(visible, chromeOffset-t.ScrollY)
}

func (t *Tab) scrollbarCommand() paint.Command {
	contentHeight := t.contentHeight()
	if contentHeight <= t.Height {
		return nil
	}
	barHeight := t.Height * (t.Height / contentHeight)
	barY := t.ScrollY * (t.Height / contentHeight)
	barX := t.Width - 8
	rect := paint.Rect{Left: barX, Top: barY, Right: t.Width, Bottom: barY + barHeight}
	return paint.DrawRect{Rect: rect, Color: "blue"}
}

func (t *Tab) contentHeight() float64 {
	if t.layout == nil {
		return 0
	}
	return t.layout.Height
}

// Title walks the DOM for the first <title> text child, per
// SPEC_FULL.md §5's window-title supplement.
func (t *Tab) Title() string {
	if t.Document == nil {
		return ""
	}
	for _, n := range dom.Flatten(t.Document) {
		if n.Type == dom.ElementNode && n.Tag == "title" {
			return strings.TrimSpace(n.DirectText())
		}
	}
	return ""
}

func urlPtr(u weburl.URL) *weburl.URL {
	return &u
}

// CanGoBack reports whether GoBack has an earlier entry to load, the
// condition original_source ui.py's Chrome.paint uses to gray out the
// back button (len(history) > 1, since the top entry is the current page).
func (t *Tab) CanGoBack() bool { return len(t.history) > 1 }

// CanGoForward reports whether GoForward has a forward-stack entry to
// load, the condition ui.py's Chrome.paint uses to gray out the forward
// button.
func (t *Tab) CanGoForward() bool { return len(t.forward) > 0 }

// GoBack implements spec.md §4.8's go_back: pop current, push onto
// forward, load the previous entry with from_navigation=true.
func (t *Tab) GoBack() error {
	if len(t.history) < 2 {
		return nil
	}
	n := len(t.history)
	current, prev := t.history[n-1], t.history[n-2]
	t.history = t.history[:n-2] // Load re-appends prev below
	t.forward = append(t.forward, current)
	return t.Load(prev, nil, true)
}

// GoForward implements spec.md §4.8's go_forward: pop forward, load with
// from_navigation=true.
func (t *Tab) GoForward() error {
	if len(t.forward) == 0 {
		return nil
	}
	n := len(t.forward)
	next := t.forward[n-1]
	t.forward = t.forward[:n-1]
	return t.Load(next, nil, true)
}

// Reload implements spec.md §4.8's reload: reload the current URL, then
// remove the duplicate top-of-history entry Load just pushed if it is the
// same *weburl.URL object (referential, per SPEC_FULL.md §7 Open
// Question 1), not merely an equal-valued one.
func (t *Tab) Reload() error {
	if len(t.history) == 0 {
		return nil
	}
	current := t.history[len(t.history)-1]
	if err := t.Load(current, nil, true); err != nil {
		return err
	}
	n := len(t.history)
	if n >= 2 && t.history[n-1] == t.history[n-2] {
		t.history = append(t.history[:n-2], t.history[n-1])
	}
	return nil
}

// scrollToFragment scrolls so the element with the matching id is at the
// top of the viewport, per spec.md §4.8 step 8 and the "#frag" click rule.
func (t *Tab) scrollToFragment(id string) {
	if t.Document == nil || t.layout == nil {
		return
	}
	for _, n := range dom.Flatten(t.Document) {
		if n.Type != dom.ElementNode {
			continue
		}
		if v, ok := n.Attr("id"); ok && v == id {
			if ln := t.layoutNodeFor(n); ln != nil {
				t.ScrollY = ln.Y
			}
			return
		}
	}
}

// NodeRect returns the rendered box of the layout leaf generated from n,
// if any — the same geometry Click hit-tests against, exposed so callers
// (chrome hover highlighting, tests) can locate an element without
// reaching into the unexported layout tree.
func (t *Tab) NodeRect(n *dom.Node) (x, y, width, height float64, ok bool) {
	ln := t.layoutNodeFor(n)
	if ln == nil {
		return 0, 0, 0, 0, false
	}
	return ln.X, ln.Y, ln.Width, ln.Height, true
}

// layoutNodeFor finds the first layout leaf whose DOM is target or a
// descendant of target — e.g. an <a> or <p> element's own box is really
// its first inline text fragment's, since only TextKind/InputKind leaves
// carry geometry (see internal/layout's inlineLayout.word/input).
func (t *Tab) layoutNodeFor(target *dom.Node) *layout.Node {
	var found *layout.Node
	var walk func(n *layout.Node)
	walk = func(n *layout.Node) {
		if found != nil || n == nil {
			return
		}
		isLeaf := n.Kind == layout.TextKind || n.Kind == layout.InputKind
		if isLeaf && n.DOM != nil && dom.AncestorOrSelf(n.DOM, func(a *dom.Node) bool { return a == target }) != nil {
			found = n
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.layout)
	return found
}

// hitTest returns the DOM node of the deepest Text/Input layout leaf whose
// box contains (x, y), per spec.md §4.8's "finding layout objects whose
// rect contains (x, y+scroll)".
func (t *Tab) hitTest(x, y float64) *dom.Node {
	var best *layout.Node
	bestDepth := -1
	var walk func(n *layout.Node)
	walk = func(n *layout.Node) {
		if n == nil {
			return
		}
		if n.Kind == layout.TextKind || n.Kind == layout.InputKind {
			if x >= n.X && x < n.X+n.Width && y >= n.Y && y < n.Y+n.Height {
				if depth := domDepth(n.DOM); depth >= bestDepth {
					best, bestDepth = n, depth
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.layout)
	if best == nil {
		return nil
	}
	return best.DOM
}

func domDepth(n *dom.Node) int {
	depth := 0
	for cur := n; cur != nil; cur = cur.Parent {
		depth++
	}
	return depth
}

// dispatch sends eventType to n if script has ever minted a handle for it
// (HandleOf never mints), returning whether script cancelled the default
// action. A node script never saw has no listeners by construction.
func (t *Tab) dispatch(n *dom.Node, eventType string) bool {
	if t.scripts == nil {
		return false
	}
	handle, ok := t.scripts.HandleOf(n)
	if !ok {
		return false
	}
	return t.scripts.DispatchEvent(handle, eventType)
}

// Click implements spec.md §4.8's click: hit-test, then walk up from the
// deepest hit looking for an <a>, <input>/<textarea>, or <button>.
func (t *Tab) Click(x, y float64) error {
	hit := t.hitTest(x, y+t.ScrollY)
	for n := hit; n != nil; n = n.Parent {
		if n.Type != dom.ElementNode {
			continue
		}
		switch n.Tag {
		case "a":
			href, ok := n.Attr("href")
			if !ok {
				continue
			}
			if t.dispatch(n, "click") {
				return nil
			}
			if strings.HasPrefix(href, "#") {
				t.scrollToFragment(strings.TrimPrefix(href, "#"))
				return nil
			}
			target := weburl.Resolve(t.URL, href)
			return t.Load(&target, nil, false)
		case "input", "textarea":
			t.dispatch(n, "click")
			t.setFocus(n)
			return nil
		case "button":
			t.dispatch(n, "click")
			form := dom.AncestorOrSelf(n.Parent, func(a *dom.Node) bool {
				return a.Type == dom.ElementNode && a.Tag == "form"
			})
			if form != nil {
				return t.submitForm(form)
			}
			return nil
		}
	}
	return nil
}

// setFocus moves focus to n, initializing the cursor at the end of its
// value, per spec.md §4.8's "<input>/<textarea> ... set focus; initialize
// cursor at end; re-render."
func (t *Tab) setFocus(n *dom.Node) {
	if t.Focus != nil {
		t.Focus.IsFocused = false
		t.Focus.SelectionStart = nil
		t.Focus.SelectionEnd = nil
	}
	t.Focus = n
	n.IsFocused = true
	n.Cursor = len([]rune(inputValue(n)))
	t.Render()
}

func inputValue(n *dom.Node) string {
	v, _ := n.Attr("value")
	return v
}

func clampCursor(cur, length int) int {
	if cur < 0 {
		return 0
	}
	if cur > length {
		return length
	}
	return cur
}

// KeyPress inserts ch at the cursor of the focused element, unless script
// cancels the keystroke via a "keydown" dispatch.
func (t *Tab) KeyPress(ch rune) {
	if t.Focus == nil || t.dispatch(t.Focus, "keydown") {
		return
	}
	value := []rune(inputValue(t.Focus))
	cur := clampCursor(t.Focus.Cursor, len(value))
	next := make([]rune, 0, len(value)+1)
	next = append(next, value[:cur]...)
	next = append(next, ch)
	next = append(next, value[cur:]...)
	t.Focus.SetAttr("value", string(next))
	t.Focus.Cursor = cur + 1
	t.Render()
}

// Backspace deletes the character before the cursor in the focused
// element.
func (t *Tab) Backspace() {
	if t.Focus == nil {
		return
	}
	value := []rune(inputValue(t.Focus))
	cur := clampCursor(t.Focus.Cursor, len(value))
	if cur == 0 {
		return
	}
	next := make([]rune, 0, len(value)-1)
	next = append(next, value[:cur-1]...)
	next = append(next, value[cur:]...)
	t.Focus.SetAttr("value", string(next))
	t.Focus.Cursor = cur - 1
	t.Render()
}

// ArrowLeft moves the cursor back one rune, extending the selection when
// shift is held — mirroring internal/browser/chrome.go's Chrome.ArrowLeft,
// spec.md §4.9's "arrow-with-shift selection ... mirrored between chrome
// and focused input."
func (t *Tab) ArrowLeft(shift bool) {
	if t.Focus == nil || t.Focus.Cursor <= 0 {
		return
	}
	t.Focus.Cursor--
	t.extendSelection(shift, t.Focus.Cursor+1)
}

// ArrowRight moves the cursor forward one rune, extending the selection
// when shift is held.
func (t *Tab) ArrowRight(shift bool) {
	if t.Focus == nil {
		return
	}
	value := []rune(inputValue(t.Focus))
	if t.Focus.Cursor >= len(value) {
		return
	}
	t.Focus.Cursor++
	t.extendSelection(shift, t.Focus.Cursor-1)
}

// extendSelection tracks the focused element's selection anchor across
// successive shift-held arrow presses, or clears it once shift is
// released — the same anchor/extend shape as Chrome.extendSelection.
func (t *Tab) extendSelection(shift bool, anchor int) {
	if !shift {
		t.Focus.SelectionStart, t.Focus.SelectionEnd = nil, nil
		return
	}
	if t.Focus.SelectionStart == nil {
		a := anchor
		t.Focus.SelectionStart = &a
	}
	end := t.Focus.Cursor
	t.Focus.SelectionEnd = &end
}

// selectedRange returns the focused element's selection, defaulting to
// its whole value when no selection is set.
func (t *Tab) selectedRange() (int, int) {
	value := []rune(inputValue(t.Focus))
	start, end := 0, len(value)
	if t.Focus.SelectionStart != nil && t.Focus.SelectionEnd != nil {
		start, end = *t.Focus.SelectionStart, *t.Focus.SelectionEnd
	}
	if start > end {
		start, end = end, start
	}
	return clampCursor(start, len(value)), clampCursor(end, len(value))
}

// Copy puts the focused element's selection (or whole value) onto the
// clipboard, leaving the value untouched.
func (t *Tab) Copy() {
	if t.Focus == nil || t.Clipboard == nil {
		return
	}
	value := []rune(inputValue(t.Focus))
	start, end := t.selectedRange()
	t.Clipboard.Set(string(value[start:end]))
}

// Cut copies the focused element's selection (or whole value) onto the
// clipboard and removes it from the value.
func (t *Tab) Cut() {
	if t.Focus == nil || t.Clipboard == nil {
		return
	}
	value := []rune(inputValue(t.Focus))
	start, end := t.selectedRange()
	t.Clipboard.Set(string(value[start:end]))
	next := make([]rune, 0, len(value)-(end-start))
	next = append(next, value[:start]...)
	next = append(next, value[end:]...)
	t.Focus.SetAttr("value", string(next))
	t.Focus.Cursor = start
	t.Focus.SelectionStart = nil
	t.Focus.SelectionEnd = nil
	t.Render()
}

// Paste inserts the clipboard's text at the focused element's cursor.
func (t *Tab) Paste() {
	if t.Focus == nil || t.Clipboard == nil {
		return
	}
	pasted := []rune(t.Clipboard.Get())
	value := []rune(inputValue(t.Focus))
	cur := clampCursor(t.Focus.Cursor, len(value))
	next := make([]rune, 0, len(value)+len(pasted))
	next = append(next, value[:cur]...)
	next = append(next, pasted...)
	next = append(next, value[cur:]...)
	t.Focus.SetAttr("value", string(next))
	t.Focus.Cursor = cur + len(pasted)
	t.Render()
}

// Enter submits the form enclosing the focused element, if any, matching
// ui.py's Enter-in-focused-input-submits-form behavior.
func (t *Tab) Enter() error {
	if t.Focus == nil {
		return nil
	}
	form := dom.AncestorOrSelf(t.Focus, func(a *dom.Node) bool {
		return a.Type == dom.ElementNode && a.Tag == "form"
	})
	if form == nil {
		return nil
	}
	return t.submitForm(form)
}

// submitForm implements spec.md §4.8's form submit: collect <input>/
// <textarea> descendants with name, URL-encode name=value, join with &,
// resolve action, load with payload.
func (t *Tab) submitForm(form *dom.Node) error {
	action, _ := form.Attr("action")
	target := weburl.Resolve(t.URL, action)
	payload := []byte(encodeForm(form))
	return t.Load(&target, payload, false)
}

func encodeForm(form *dom.Node) string {
	var parts []string
	for _, n := range dom.Flatten(form) {
		if n.Type != dom.ElementNode {
			continue
		}
		if n.Tag != "input" && n.Tag != "textarea" {
			continue
		}
		name, ok := n.Attr("name")
		if !ok {
			continue
		}
		value, _ := n.Attr("value")
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	return strings.Join(parts, "&")
}

// Scrolldown/Scrollup/MouseWheel implement SPEC_FULL.md §5's scroll
// supplement: arrow-key scrolling moves a fixed step, mousewheel moves by
// the wheel's reported delta, both clamped to [0, contentHeight-Height].
const defaultScrollStep = float64(layout.VSTEP) * 3

func (t *Tab) scrollStep() float64 {
	if t.ScrollStep > 0 {
		return t.ScrollStep
	}
	return defaultScrollStep
}

func (t *Tab) clampScroll() {
	max := t.contentHeight() - t.Height
	if max < 0 {
		max = 0
	}
	if t.ScrollY > max {
		t.ScrollY = max
	}
	if t.ScrollY < 0 {
		t.ScrollY = 0
	}
}

// Scrolldown advances the scroll position by one fixed step.
func (t *Tab) Scrolldown() {
	t.ScrollY += t.scrollStep()
	t.clampScroll()
}

// Scrollup retreats the scroll position by one fixed step.
func (t *Tab) Scrollup() {
	t.ScrollY -= t.scrollStep()
	t.clampScroll()
}

// MouseWheel scrolls by an arbitrary delta, distinguishing wheel input
// (continuous) from arrow-key input (fixed step), per SPEC_FULL.md §5.
func (t *Tab) MouseWheel(delta float64) {
	t.ScrollY += delta
	t.clampScroll()
}

// Resize changes the tab's viewport and re-runs layout/paint against the
// new width, matching original_source ui.py Tab.resize — Browser calls
// this on a window Configure event with its own height already reduced by
// the chrome's bottom edge.
func (t *Tab) Resize(width, height float64) {
	t.Width, t.Height = width, height
	t.Render()
	t.clampScroll()
}
