// Package paint turns a layout tree into an ordered display list: a flat
// sequence of drawing commands a Surface can execute directly, with
// visual-effect wrappers (Opacity, Blend) and bounding-rect cull support.
package paint

import (
	"strconv"
	"strings"

	"github.com/npdhungana/gobrowser/internal/dom"
	"github.com/npdhungana/gobrowser/internal/fontprovider"
	"github.com/npdhungana/gobrowser/internal/layout"
)

// Rect is an axis-aligned box in surface-local (unscrolled) coordinates,
// matching original_source ui.py's Rect(left, top, right, bottom).
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Intersects reports whether r and o overlap at all.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && o.Left < r.Right && r.Top < o.Bottom && o.Top < r.Bottom
}

func union(a, b Rect) Rect {
	return Rect{
		Left:   min(a.Left, b.Left),
		Top:    min(a.Top, b.Top),
		Right:  max(a.Right, b.Right),
		Bottom: max(a.Bottom, b.Bottom),
	}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// RRect is a Rect with a uniform corner radius, used for rounded
// backgrounds and as an overflow:clip mask shape. Not present in
// original_source ui.py's Rect-only model; added per spec.md §4.6's
// "non-zero border-radius" language.
type RRect struct {
	Rect
	Radius float64
}

// Command is one entry in a display list. Bounds supports cull testing
// against the visible scroll window.
type Command interface {
	Bounds() Rect
}

// DrawText paints a single run of shaped text at (X, Y).
type DrawText struct {
	X, Y  float64
	Text  string
	Font  fontprovider.Font
	Color string
	rect  Rect
}

func NewDrawText(x, y float64, text string, font fontprovider.Font, color string) DrawText {
	w := float64(font.Measure(text))
	h := float64(font.LineHeight())
	return DrawText{X: x, Y: y, Text: text, Font: font, Color: color,
		rect: Rect{x, y, x + w, y + h}}
}

func (c DrawText) Bounds() Rect { return c.rect }

// DrawRect fills a plain rectangle.
type DrawRect struct {
	Rect  Rect
	Color string
}

func (c DrawRect) Bounds() Rect { return c.Rect }

// DrawRRect fills a rounded rectangle (background-color with border-radius).
type DrawRRect struct {
	RRect RRect
	Color string
}

func (c DrawRRect) Bounds() Rect { return c.RRect.Rect }

// DrawOutline strokes a rectangle's border, used for input/button chrome.
type DrawOutline struct {
	Rect      Rect
	Color     string
	Thickness float64
}

func (c DrawOutline) Bounds() Rect { return c.Rect }

// DrawLine strokes a single segment, used for rules and the text cursor.
type DrawLine struct {
	X1, Y1, X2, Y2 float64
	Color          string
	Thickness      float64
}

func (c DrawLine) Bounds() Rect {
	return Rect{min(c.X1, c.X2), min(c.Y1, c.Y2), max(c.X1, c.X2), max(c.Y1, c.Y2)}
}

// Opacity wraps a sub-list painted at reduced alpha, emitted when a node's
// computed opacity is below 1.0.
type Opacity struct {
	Value    float64
	Children []Command
}

func (c Opacity) Bounds() Rect { return boundsOf(c.Children) }

// Blend wraps a sub-list composited with Mode ("multiply", "screen", ...),
// or — when Mask is set — clipped to Mask via a destination-in composite,
// the mechanism spec.md §4.6 uses for overflow:clip + border-radius.
type Blend struct {
	Mode     string
	Mask     *RRect
	Children []Command
}

func (c Blend) Bounds() Rect {
	if c.Mask != nil {
		return c.Mask.Rect
	}
	return boundsOf(c.Children)
}

func boundsOf(cmds []Command) Rect {
	if len(cmds) == 0 {
		return Rect{}
	}
	r := cmds[0].Bounds()
	for _, c := range cmds[1:] {
		r = union(r, c.Bounds())
	}
	return r
}

// Paint performs the two-pass depth-first traversal spec.md §4.6
// describes: each node's own commands first, then its children's, the
// whole accumulated list wrapped in that node's visual effects.
func Paint(root *layout.Node) []Command {
	return paintNode(root)
}

func paintNode(n *layout.Node) []Command {
	var cmds []Command
	if shouldPaint(n) {
		cmds = append(cmds, paintOwn(n)...)
	}
	for _, c := range n.Children {
		cmds = append(cmds, paintNode(c)...)
	}
	return wrapEffects(n, cmds)
}

// shouldPaint matches original_source ui.py's BlockLayout.should_paint:
// a Block standing in for an <input>/<button>/<textarea> element defers
// entirely to its nested InputLayout leaf, which paints the real chrome.
func shouldPaint(n *layout.Node) bool {
	if n.Kind != layout.BlockKind {
		return true
	}
	return n.DOM.Type == dom.TextNode ||
		(n.DOM.Tag != "input" && n.DOM.Tag != "button" && n.DOM.Tag != "textarea")
}

func paintOwn(n *layout.Node) []Command {
	switch n.Kind {
	case layout.BlockKind:
		return paintBlockOwn(n)
	case layout.TextKind:
		return []Command{NewDrawText(n.X, n.Y, n.Word, n.Font, n.Color)}
	case layout.InputKind:
		return paintInputOwn(n)
	default:
		return nil
	}
}

func selfRect(n *layout.Node) Rect {
	return Rect{n.X, n.Y, n.X + n.Width, n.Y + n.Height}
}

// paintBlockOwn reproduces BlockLayout.paint(): the gray <pre> background,
// then the CSS background-color rect (rounded, when border-radius is set).
func paintBlockOwn(n *layout.Node) []Command {
	var cmds []Command
	if n.DOM.Type == dom.ElementNode && n.DOM.Tag == "pre" {
		cmds = append(cmds, DrawRect{Rect: selfRect(n), Color: "gray"})
	}
	if bg := n.DOM.Style["background-color"]; bg != "" && bg != "transparent" {
		if radius := borderRadius(n.DOM); radius > 0 {
			cmds = append(cmds, DrawRRect{RRect: RRect{Rect: selfRect(n), Radius: radius}, Color: bg})
		} else {
			cmds = append(cmds, DrawRect{Rect: selfRect(n), Color: bg})
		}
	}
	return cmds
}

// paintInputOwn reproduces InputLayout.paint(): border, background, the
// focus selection highlight and cursor, then the value/label text.
func paintInputOwn(n *layout.Node) []Command {
	rect := selfRect(n)
	cmds := []Command{DrawOutline{Rect: rect, Color: "black", Thickness: 1}}

	if bg := n.DOM.Style["background-color"]; bg != "" && bg != "transparent" {
		cmds = append(cmds, DrawRect{Rect: rect, Color: bg})
	}

	text := inputText(n.DOM)
	runes := []rune(text)

	if n.DOM.IsFocused {
		if n.DOM.SelectionStart != nil && n.DOM.SelectionEnd != nil {
			start, end := *n.DOM.SelectionStart, *n.DOM.SelectionEnd
			if start > end {
				start, end = end, start
			}
			startX := n.X + float64(n.Font.Measure(string(clampRunes(runes, 0, start))))
			endX := n.X + float64(n.Font.Measure(string(clampRunes(runes, 0, end))))
			cmds = append(cmds, DrawRect{Rect: Rect{startX, n.Y, endX, n.Y + n.Height}, Color: "lightblue"})
		}
		cursor := n.DOM.Cursor
		if cursor < 0 || cursor > len(runes) {
			cursor = len(runes)
		}
		cx := n.X + float64(n.Font.Measure(string(clampRunes(runes, 0, cursor))))
		cmds = append(cmds, DrawLine{X1: cx, Y1: n.Y, X2: cx, Y2: n.Y + n.Height, Color: "black", Thickness: 1})
	}

	cmds = append(cmds, NewDrawText(n.X, n.Y, text, n.Font, n.DOM.Style["color"]))
	return cmds
}

func clampRunes(r []rune, start, end int) []rune {
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start > end {
		start = end
	}
	return r[start:end]
}

// inputText returns what an <input>, <textarea> or <button> displays,
// matching InputLayout.paint()'s text selection (value attribute for
// input/textarea, or a button's sole Text child — a button with element
// children renders no label).
func inputText(node *dom.Node) string {
	switch node.Tag {
	case "input", "textarea":
		v, _ := node.Attr("value")
		return v
	case "button":
		if len(node.Children) == 1 && node.Children[0].Type == dom.TextNode {
			return node.Children[0].Text
		}
	}
	return ""
}

// wrapEffects applies spec.md §4.6's three visual-effect wrappers, derived
// from n's own computed style (never the children's).
func wrapEffects(n *layout.Node, cmds []Command) []Command {
	if len(cmds) == 0 || n.DOM == nil || n.DOM.Style == nil {
		return cmds
	}
	style := n.DOM.Style

	if v, ok := parseOpacity(style["opacity"]); ok && v < 1.0 {
		cmds = []Command{Opacity{Value: v, Children: cmds}}
	}
	if mode := style["mix-blend-mode"]; mode != "" && mode != "normal" {
		cmds = []Command{Blend{Mode: mode, Children: cmds}}
	}
	if style["overflow"] == "clip" {
		if radius := borderRadius(n.DOM); radius > 0 {
			mask := RRect{Rect: selfRect(n), Radius: radius}
			cmds = []Command{Blend{Mode: "destination-in", Mask: &mask, Children: cmds}}
		}
	}
	return cmds
}

func parseOpacity(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func borderRadius(node *dom.Node) float64 {
	s := node.Style["border-radius"]
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// CullVisible filters a top-level display list to the commands whose
// bounds intersect the given viewport, translated by the current scroll
// offset — the "cull-tested against the visible scroll window" step of
// spec.md §4.6's final redraw.
func CullVisible(cmds []Command, scrollY, viewportHeight float64) []Command {
	viewport := Rect{Left: -1 << 30, Top: scrollY, Right: 1 << 30, Bottom: scrollY + viewportHeight}
	var visible []Command
	for _, c := range cmds {
		if c.Bounds().Intersects(viewport) {
			visible = append(visible, c)
		}
	}
	return visible
}

// Translate shifts a display list vertically by dy, matching
// original_source ui.py's DrawText/DrawRect.execute(scroll - offset,
// canvas): a Tab's display list is built in document coordinates, and a
// Chrome composing several tabs' output into one window needs it shifted
// down by its own chrome height once scroll has already been subtracted.
func Translate(cmds []Command, dy float64) []Command {
	if dy == 0 {
		return cmds
	}
	out := make([]Command, len(cmds))
	for i, c := range cmds {
		out[i] = translateOne(c, dy)
	}
	return out
}

func translateOne(c Command, dy float64) Command {
	switch v := c.(type) {
	case DrawText:
		v.Y += dy
		v.rect.Top += dy
		v.rect.Bottom += dy
		return v
	case DrawRect:
		v.Rect.Top += dy
		v.Rect.Bottom += dy
		return v
	case DrawRRect:
		v.RRect.Top += dy
		v.RRect.Bottom += dy
		return v
	case DrawOutline:
		v.Rect.Top += dy
		v.Rect.Bottom += dy
		return v
	case DrawLine:
		v.Y1 += dy
		v.Y2 += dy
		return v
	case Opacity:
		v.Children = Translate(v.Children, dy)
		return v
	case Blend:
		v.Children = Translate(v.Children, dy)
		if v.Mask != nil {
			m := *v.Mask
			m.Top += dy
			m.Bottom += dy
			v.Mask = &m
		}
		return v
	default:
		return c
	}
}
