// Package dom implements the DOM tree produced by the HTML parser: text and
// element nodes, their attributes, and the computed-style map the style
// resolver fills in before layout.
package dom

import "strings"

// NodeType distinguishes the two kinds of node the parser ever produces.
type NodeType int

const (
	TextNode NodeType = iota
	ElementNode
)

// Node is either a Text leaf or an Element with children. Parent is a weak
// back-reference: ownership flows only from parent to child.
type Node struct {
	Type    NodeType
	Tag     string // case-folded; empty for TextNode
	Text    string // only meaningful for TextNode
	Attrs   map[string]string
	Children []*Node
	Parent  *Node

	Style map[string]string

	IsFocused      bool
	Cursor         int
	SelectionStart *int
	SelectionEnd   *int
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Text: text, Style: map[string]string{}}
}

// NewElement creates a detached element node with a case-folded tag name.
func NewElement(tag string) *Node {
	return &Node{
		Type:  ElementNode,
		Tag:   strings.ToLower(tag),
		Attrs: map[string]string{},
		Style: map[string]string{},
	}
}

// AppendChild links child under n, replacing any previous parent link.
func (n *Node) AppendChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Attr returns the named attribute, or "" with ok=false if absent.
func (n *Node) Attr(name string) (string, bool) {
	if n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[strings.ToLower(name)]
	return v, ok
}

// SetAttr sets an attribute, case-folding the name.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[strings.ToLower(name)] = value
}

// IsElement reports whether n is an Element with the given (case-folded) tag.
func (n *Node) IsElement(tag string) bool {
	return n.Type == ElementNode && n.Tag == tag
}

// Walk appends n and every descendant, in document order, to out.
func Walk(n *Node, out []*Node) []*Node {
	out = append(out, n)
	for _, c := range n.Children {
		out = Walk(c, out)
	}
	return out
}

// Flatten is a convenience wrapper around Walk starting from an empty slice.
func Flatten(n *Node) []*Node {
	return Walk(n, nil)
}

// DirectText concatenates the text of n's direct Text children, matching
// original_source ui.py's get_title()/textarea-seeding behavior: only the
// immediate text children are considered, not the full subtree.
func (n *Node) DirectText() string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Type == TextNode {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// RemoveChildren detaches and clears all children of n.
func (n *Node) RemoveChildren() {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
}

// AncestorOrSelf returns the nearest of n and its ancestors that satisfies
// pred, or nil if none does.
func AncestorOrSelf(n *Node, pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}
