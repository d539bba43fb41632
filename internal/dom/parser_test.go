package dom_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npdhungana/gobrowser/internal/dom"
)

// treeSnapshot strips dom.Node down to its structural fields (no Parent
// back-reference, no Style map filled in only after the style pass) so
// go-cmp can diff two trees without looping over the parent/child cycle.
type treeSnapshot struct {
	Type     dom.NodeType
	Tag      string
	Text     string
	Attrs    map[string]string
	Children []treeSnapshot
}

func snapshot(n *dom.Node) treeSnapshot {
	children := make([]treeSnapshot, len(n.Children))
	for i, c := range n.Children {
		children[i] = snapshot(c)
	}
	return treeSnapshot{Type: n.Type, Tag: n.Tag, Text: n.Text, Attrs: n.Attrs, Children: children}
}

func TestParse_ImplicitHTMLBodyParagraph(t *testing.T) {
	root := dom.Parse("<p>hi<b>x")

	require.True(t, root.IsElement("html"))
	require.Len(t, root.Children, 1)
	body := root.Children[0]
	require.True(t, body.IsElement("body"))
	require.Len(t, body.Children, 1)

	p := body.Children[0]
	require.True(t, p.IsElement("p"))
	require.Len(t, p.Children, 2)
	assert.Equal(t, dom.TextNode, p.Children[0].Type)
	assert.Equal(t, "hi", p.Children[0].Text)

	b := p.Children[1]
	require.True(t, b.IsElement("b"))
	require.Len(t, b.Children, 1)
	assert.Equal(t, "x", b.Children[0].Text)
}

func TestParse_HeadTagsGoToImplicitHead(t *testing.T) {
	root := dom.Parse("<title>hello</title><p>body text</p>")

	require.True(t, root.IsElement("html"))
	require.Len(t, root.Children, 2)
	assert.True(t, root.Children[0].IsElement("head"))
	assert.True(t, root.Children[1].IsElement("body"))

	title := root.Children[0].Children[0]
	assert.True(t, title.IsElement("title"))
	assert.Equal(t, "hello", title.DirectText())
}

func TestParse_SelfClosingTagsAreLeaves(t *testing.T) {
	root := dom.Parse("<p>a<br>b<img src=x.png>c</p>")
	body := root.Children[0]
	p := body.Children[0]

	var tags []string
	for _, c := range p.Children {
		if c.Type == dom.ElementNode {
			tags = append(tags, c.Tag)
		}
	}
	assert.Equal(t, []string{"br", "img"}, tags)

	img := p.Children[3]
	src, ok := img.Attr("src")
	require.True(t, ok)
	assert.Equal(t, "x.png", src)
	assert.Empty(t, img.Children)
}

func TestParse_UnclosedTagsStillProduceWellFormedTree(t *testing.T) {
	root := dom.Parse("<div><span><p>oops")
	assert.True(t, root.IsElement("html"))
	// No panics, and every non-root node has exactly one parent.
	seen := map[*dom.Node]bool{}
	for _, n := range dom.Flatten(root) {
		if n != root {
			require.NotNil(t, n.Parent)
		}
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestParse_ExtraClosingTagIsNoOp(t *testing.T) {
	root := dom.Parse("</body></html><p>x</p>")
	assert.True(t, root.IsElement("html"))
	require.Len(t, root.Children, 1)
	assert.True(t, root.Children[0].IsElement("body"))
}

func TestParse_CloseTagPopsTopOfStackRegardlessOfName(t *testing.T) {
	// </div> here doesn't match span, the top of the stack — the naive
	// pop-top-unconditionally rule closes span anyway and leaves div open,
	// so the trailing <p> nests inside div alongside span.
	root := dom.Parse("<div><span>hi</div><p>after</p>")
	body := root.Children[0]
	require.Len(t, body.Children, 1)
	div := body.Children[0]
	assert.True(t, div.IsElement("div"))
	require.Len(t, div.Children, 2)
	assert.True(t, div.Children[0].IsElement("span"))
	assert.True(t, div.Children[1].IsElement("p"))
}

func TestParse_CaseAndQuotingDoNotAffectTreeShape(t *testing.T) {
	a := dom.Parse(`<DIV CLASS="a"><P>hi</P></DIV>`)
	b := dom.Parse(`<div class=a><p>hi</p></div>`)

	if diff := cmp.Diff(snapshot(a), snapshot(b)); diff != "" {
		t.Errorf("trees differ despite case/quoting-only input difference (-a +b):\n%s", diff)
	}
}

func TestParse_AttributesWithAndWithoutQuotes(t *testing.T) {
	root := dom.Parse(`<div CLASS="a b" data-x=1 disabled>hi</div>`)
	div := root.Children[0].Children[0]
	require.True(t, div.IsElement("div"))

	cls, ok := div.Attr("class")
	require.True(t, ok)
	assert.Equal(t, "a b", cls)

	v, ok := div.Attr("data-x")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	d, ok := div.Attr("disabled")
	require.True(t, ok)
	assert.Equal(t, "", d)
}

func TestParse_EmptyInputYieldsHTMLRoot(t *testing.T) {
	root := dom.Parse("")
	assert.True(t, root.IsElement("html"))
	assert.Nil(t, root.Parent)
}

func TestParse_CommentsAndDoctypeAreDropped(t *testing.T) {
	root := dom.Parse("<!DOCTYPE html><!-- a comment --><p>x</p>")
	body := root.Children[0]
	assert.True(t, body.IsElement("body"))
	require.Len(t, body.Children, 1)
	assert.True(t, body.Children[0].IsElement("p"))
}
