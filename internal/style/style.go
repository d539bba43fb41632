// Package style resolves the CSS cascade against a DOM tree, writing the
// computed style of every node into its Style map.
package style

import (
	"strconv"
	"strings"

	"github.com/npdhungana/gobrowser/internal/cssom"
	"github.com/npdhungana/gobrowser/internal/dom"
)

// Inherited lists the properties every node starts from its parent's
// computed value (or the given default at the root), matching
// original_source ui.py's INHERITED_PROPERTIES table.
var Inherited = map[string]string{
	"font-size":   "16px",
	"font-style":  "normal",
	"font-weight": "normal",
	"color":       "black",
	"text-align":  "left",
}

// Resolve computes node.Style (and recursively every descendant's) against
// rules, which must already be in ascending-priority, document order — see
// cssom.SortByPriority. Grounded on original_source ui.py's style()
// function: inherit defaults, apply matching rules lowest-priority first,
// apply the inline style="..." attribute last, then resolve a percentage
// font-size relative to the parent's resolved font-size.
func Resolve(node *dom.Node, sortedRules []cssom.Rule) {
	node.Style = map[string]string{}

	for prop, def := range Inherited {
		if node.Parent != nil {
			node.Style[prop] = node.Parent.Style[prop]
		} else {
			node.Style[prop] = def
		}
	}

	for _, rule := range sortedRules {
		if !rule.Selector.Matches(node) {
			continue
		}
		for prop, val := range rule.Declarations {
			node.Style[prop] = val
		}
	}

	if node.Type == dom.ElementNode {
		if inline, ok := node.Attr("style"); ok {
			for prop, val := range cssom.ParseInlineDeclarations(inline) {
				node.Style[prop] = val
			}
		}
	}

	resolvePercentFontSize(node)

	for _, child := range node.Children {
		Resolve(child, sortedRules)
	}
}

func resolvePercentFontSize(node *dom.Node) {
	size := node.Style["font-size"]
	if !strings.HasSuffix(size, "%") {
		return
	}
	parentPx := Inherited["font-size"]
	if node.Parent != nil {
		parentPx = node.Parent.Style["font-size"]
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(size, "%"), 64)
	if err != nil {
		node.Style["font-size"] = parentPx
		return
	}
	base, err := strconv.ParseFloat(strings.TrimSuffix(parentPx, "px"), 64)
	if err != nil {
		node.Style["font-size"] = parentPx
		return
	}
	node.Style["font-size"] = strconv.FormatFloat(pct/100*base, 'f', -1, 64) + "px"
}
