package cssom

import "github.com/npdhungana/gobrowser/internal/dom"

// Selector is the Tag/Descendant variant from spec.md §3 ("CSS Rule").
// Each selector carries a priority equal to the sum of its component Tag
// priorities (Tag = 1), used by the cascade (spec.md §4.4).
type Selector interface {
	Matches(n *dom.Node) bool
	Priority() int
	String() string
}

// TagSelector matches any Element whose tag equals Tag.
type TagSelector struct {
	Tag string
}

func (s TagSelector) Matches(n *dom.Node) bool {
	return n.Type == dom.ElementNode && n.Tag == s.Tag
}

func (s TagSelector) Priority() int { return 1 }
func (s TagSelector) String() string { return s.Tag }

// DescendantSelector matches a node whose Descendant part matches, provided
// some ancestor of that node matches the Ancestor part.
type DescendantSelector struct {
	Ancestor   Selector
	Descendant Selector
}

func (s DescendantSelector) Matches(n *dom.Node) bool {
	if !s.Descendant.Matches(n) {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if s.Ancestor.Matches(p) {
			return true
		}
	}
	return false
}

func (s DescendantSelector) Priority() int {
	return s.Ancestor.Priority() + s.Descendant.Priority()
}

func (s DescendantSelector) String() string {
	return s.Ancestor.String() + " " + s.Descendant.String()
}

// Rule pairs a Selector with its parsed declaration block, in the order the
// stylesheet wrote them (needed to break cascade ties, spec.md §4.4 step 2).
type Rule struct {
	Selector     Selector
	Declarations map[string]string
}
