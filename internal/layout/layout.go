// Package layout builds a positioned layout tree from a styled DOM tree:
// a Document root, block boxes that stack vertically, and inline line
// boxes that wrap text, inputs and buttons to a pixel width.
package layout

import (
	"strconv"
	"strings"

	"github.com/npdhungana/gobrowser/internal/dom"
	"github.com/npdhungana/gobrowser/internal/fontprovider"
)

// Pixel geometry constants, grounded on original_source ui.py's
// module-level HSTEP/VSTEP/INPUT_WIDTH_PX.
const (
	HSTEP        = 13
	VSTEP        = 18
	InputWidthPX = 200
)

// blockElements is the enumerated set of tags that force block layout mode
// on any ancestor box containing one, per spec.md §4.5 and
// original_source ui.py's layout_mode() BLOCK_ELEMENTS list.
var blockElements = map[string]bool{
	"html": true, "body": true, "article": true, "section": true, "nav": true,
	"aside": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hgroup": true, "header": true, "footer": true, "address": true,
	"p": true, "hr": true, "pre": true, "blockquote": true, "ol": true,
	"ul": true, "menu": true, "li": true, "dl": true, "dt": true, "dd": true,
	"figure": true, "figcaption": true, "main": true, "div": true,
	"table": true, "form": true, "fieldset": true, "legend": true,
	"details": true, "summary": true,
}

// nonRendered elements (and their subtrees) are skipped entirely by block
// and inline layout, matching original_source ui.py's hard-coded tag list
// in BlockLayout.layout()/recurse().
var nonRendered = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
}

// Kind distinguishes the five layout node shapes spec.md §4.5 names.
type Kind int

const (
	DocumentKind Kind = iota
	BlockKind
	LineKind
	TextKind
	InputKind
)

// Node is one box in the layout tree. Not every field is meaningful for
// every Kind: Word/Font/Color apply only to Text and Input leaves.
type Node struct {
	Kind     Kind
	DOM      *dom.Node
	Parent   *Node
	Previous *Node
	Children []*Node

	X, Y, Width, Height float64

	Word  string
	Font  fontprovider.Font
	Color string
}

// Layout builds the full layout tree for root (normally the <html>
// element, already styled by internal/style), constrained to the given
// surface width in pixels.
func Layout(root *dom.Node, width int, fonts fontprovider.Provider) *Node {
	docNode := &Node{Kind: DocumentKind, DOM: root}
	docNode.X = HSTEP
	docNode.Y = VSTEP
	docNode.Width = float64(width) - 2*HSTEP

	block := &Node{Kind: BlockKind, DOM: root, Parent: docNode}
	docNode.Children = []*Node{block}
	layoutBlock(block, fonts)
	docNode.Height = block.Height
	return docNode
}

func layoutBlock(b *Node, fonts fontprovider.Provider) {
	if b.Previous != nil {
		b.Y = b.Previous.Y + b.Previous.Height
	} else {
		b.Y = b.Parent.Y
	}
	b.X = b.Parent.X
	b.Width = b.Parent.Width

	if layoutMode(b.DOM) == "block" {
		var previous *Node
		for _, child := range b.DOM.Children {
			if child.Type == dom.ElementNode && nonRendered[child.Tag] {
				continue
			}
			next := &Node{Kind: BlockKind, DOM: child, Parent: b, Previous: previous}
			b.Children = append(b.Children, next)
			previous = next
		}
		for _, c := range b.Children {
			layoutBlock(c, fonts)
		}
	} else {
		lay := &inlineLayout{block: b, fonts: fonts}
		lay.newLine()
		lay.recurse(b.DOM, false)
		for _, line := range b.Children {
			layoutLine(line)
		}
	}

	var h float64
	for _, c := range b.Children {
		h += c.Height
	}
	b.Height = h
}

// layoutMode decides whether node's box stacks its children vertically
// ("block") or flows them as a wrapped run of inline fragments ("inline"),
// per spec.md §4.5.
func layoutMode(node *dom.Node) string {
	if node.Type == dom.TextNode {
		return "inline"
	}
	for _, c := range node.Children {
		if c.Type == dom.ElementNode && blockElements[c.Tag] {
			return "block"
		}
	}
	if len(node.Children) > 0 || node.Tag == "input" || node.Tag == "textarea" {
		return "inline"
	}
	return "block"
}

// inlineLayout accumulates the wrapped line boxes for one inline-mode
// Block, mirroring original_source ui.py's BlockLayout cursor_x/new_line/
// word/input/recurse methods.
type inlineLayout struct {
	block   *Node
	fonts   fontprovider.Provider
	cursorX float64
}

func (l *inlineLayout) newLine() {
	var previous *Node
	if len(l.block.Children) > 0 {
		previous = l.block.Children[len(l.block.Children)-1]
	}
	line := &Node{Kind: LineKind, DOM: l.block.DOM, Parent: l.block, Previous: previous}
	l.block.Children = append(l.block.Children, line)
	l.cursorX = 0
}

func (l *inlineLayout) currentLine() *Node {
	return l.block.Children[len(l.block.Children)-1]
}

// recurse walks node's subtree producing inline fragments. pre is true
// inside a <pre> element, where text is laid out literally rather than
// word-wrapped, an extension spec.md §4.5 asks for beyond
// original_source's plain word-splitting recurse().
func (l *inlineLayout) recurse(node *dom.Node, pre bool) {
	switch node.Type {
	case dom.TextNode:
		if pre {
			l.wordPre(node, node.Text)
		} else {
			for _, w := range strings.Fields(node.Text) {
				l.word(node, w)
			}
		}
	case dom.ElementNode:
		if nonRendered[node.Tag] {
			return
		}
		switch node.Tag {
		case "br":
			l.newLine()
			return
		case "input", "button", "textarea":
			l.input(node)
			return
		}
		childPre := pre || node.Tag == "pre"
		for _, c := range node.Children {
			l.recurse(c, childPre)
		}
	}
}

func (l *inlineLayout) word(node *dom.Node, w string) {
	font := fontFor(node, l.fonts)
	width := float64(font.Measure(w))
	if l.cursorX+width > l.block.Width {
		l.newLine()
	}
	line := l.currentLine()
	var previous *Node
	if len(line.Children) > 0 {
		previous = line.Children[len(line.Children)-1]
	}
	text := &Node{Kind: TextKind, DOM: node, Parent: line, Previous: previous,
		Word: w, Font: font, Color: node.Style["color"]}
	line.Children = append(line.Children, text)
	l.cursorX += width + float64(font.Measure(" "))
}

// wordPre lays out one <pre> text node line-by-line, never wrapping on
// width and never inserting the inter-word space original word() adds.
func (l *inlineLayout) wordPre(node *dom.Node, text string) {
	font := fontFor(node, l.fonts)
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if i > 0 {
			l.newLine()
		}
		if ln == "" {
			continue
		}
		width := float64(font.Measure(ln))
		line := l.currentLine()
		var previous *Node
		if len(line.Children) > 0 {
			previous = line.Children[len(line.Children)-1]
		}
		frag := &Node{Kind: TextKind, DOM: node, Parent: line, Previous: previous,
			Word: ln, Font: font, Color: node.Style["color"]}
		line.Children = append(line.Children, frag)
		l.cursorX += width
	}
}

func (l *inlineLayout) input(node *dom.Node) {
	if t, ok := node.Attr("type"); ok && strings.EqualFold(t, "hidden") {
		return
	}
	width := float64(InputWidthPX)
	if l.cursorX+width > l.block.Width {
		l.newLine()
	}
	line := l.currentLine()
	var previous *Node
	if len(line.Children) > 0 {
		previous = line.Children[len(line.Children)-1]
	}
	font := fontFor(node, l.fonts)
	in := &Node{Kind: InputKind, DOM: node, Parent: line, Previous: previous,
		Font: font, Color: node.Style["color"]}
	line.Children = append(line.Children, in)
	l.cursorX += width + float64(font.Measure(" "))
}

// layoutLine positions a LineLayout's children (baseline math, text-align
// offset), matching original_source ui.py's LineLayout.layout().
func layoutLine(line *Node) {
	line.Width = line.Parent.Width
	line.X = line.Parent.X
	if line.Previous != nil {
		line.Y = line.Previous.Y + line.Previous.Height
	} else {
		line.Y = line.Parent.Y
	}

	for _, w := range line.Children {
		layoutLeaf(w)
	}

	if len(line.Children) == 0 {
		line.Height = 0
		return
	}

	var maxAscent float64
	for _, w := range line.Children {
		if a := float64(w.Font.Ascent()); a > maxAscent {
			maxAscent = a
		}
	}
	baseline := line.Y + 1.25*maxAscent
	for _, w := range line.Children {
		w.Y = baseline - float64(w.Font.Ascent())
	}
	var maxDescent float64
	for _, w := range line.Children {
		if d := float64(w.Font.Descent()); d > maxDescent {
			maxDescent = d
		}
	}
	line.Height = 1.25 * (maxAscent + maxDescent)

	last := line.Children[len(line.Children)-1]
	lineWidth := last.X + last.Width - line.X

	align := line.DOM.Style["text-align"]
	var offset float64
	switch align {
	case "center":
		offset = (line.Width - lineWidth) / 2
	case "right":
		offset = line.Width - lineWidth
	}
	if offset != 0 {
		for _, w := range line.Children {
			w.X += offset
		}
	}
}

func layoutLeaf(w *Node) {
	switch w.Kind {
	case TextKind:
		w.Width = float64(w.Font.Measure(w.Word))
	case InputKind:
		w.Width = InputWidthPX
	}
	if w.Previous != nil {
		space := float64(w.Previous.Font.Measure(" "))
		w.X = w.Previous.X + w.Previous.Width + space
	} else {
		w.X = w.Parent.X
	}
	w.Height = float64(w.Font.LineHeight())
}

// fontFor resolves node's computed style into a concrete Font, per
// spec.md §4.5's weight/style/size-unit rules and original_source ui.py's
// parse_font_size/parse_font_weight.
func fontFor(node *dom.Node, fonts fontprovider.Provider) fontprovider.Font {
	weight := parseFontWeight(node.Style["font-weight"])
	style := node.Style["font-style"]
	if style == "" || style == "normal" {
		style = "roman"
	}
	size := parseFontSize(node.Style["font-size"])
	return fonts.Font(size, weight, style)
}

func parseFontWeight(w string) string {
	switch w {
	case "bold", "bolder", "600", "700", "800", "900":
		return "bold"
	}
	return "normal"
}

// parseFontSize converts a CSS length (px, em, rem, pt) to an integer
// pixel size, matching original_source ui.py's parse_font_size (px scaled
// by 0.75 to approximate screen-point conversion, em/rem relative to a
// 16px root and scaled the same way, pt taken as-is).
func parseFontSize(s string) int {
	unit := "px"
	numPart := s
	for _, u := range []string{"px", "rem", "em", "pt"} {
		if strings.HasSuffix(s, u) {
			unit = u
			numPart = strings.TrimSuffix(s, u)
			break
		}
	}
	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 12
	}
	switch unit {
	case "px":
		return int(value * 0.75)
	case "rem", "em":
		return int(value * 16 * 0.75)
	case "pt":
		return int(value)
	}
	return 12
}
