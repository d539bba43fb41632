package dom

import "strings"

// selfClosing is the set of void elements emitted as childless leaves,
// never pushed onto the open-element stack. Mirrors toybrowser's
// voidElements, renamed and extended to match spec.md §4.2 exactly.
var selfClosing = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// headTags classifies elements that belong inside an implicit <head> rather
// than an implicit <body>, per spec.md §4.2's implicit-tag insertion rules.
var headTags = map[string]bool{
	"base": true, "basefont": true, "bgsound": true, "noscript": true,
	"link": true, "meta": true, "title": true, "style": true, "script": true,
}

// Parser is a single-pass character scanner over raw HTML bytes, producing a
// DOM tree that is always well-formed regardless of how malformed the input
// is. Grounded on toybrowser/internal/html/parser.go's scan loop, extended
// with the case-folded implicit-tag insertion state machine spec.md §4.2
// requires and that the teacher's parser lacks entirely.
type Parser struct {
	input string
	pos   int

	root  *Node   // the <html> element; nil until the first node is created
	stack []*Node // currently open elements, root (html) included once present
}

// NewParser creates a parser over the given HTML source.
func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Parse runs the scanner to completion and returns the document root.
// Parse is total: it never returns an error, matching spec.md §8's
// "for all inputs, the parser returns some tree" invariant. The returned
// node is always the <html> element (spec.md §8: "the root is html"),
// inserted implicitly if the input never wrote one.
func Parse(input string) *Node {
	p := NewParser(input)
	return p.Parse()
}

// Parse scans p.input to completion.
func (p *Parser) Parse() *Node {
	for p.pos < len(p.input) {
		if p.input[p.pos] == '<' {
			p.consumeTag()
		} else {
			text := p.consumeUntil('<')
			if strings.TrimSpace(text) != "" {
				p.addText(text)
			}
		}
	}
	p.finish()
	if p.root == nil {
		// Input was empty or whitespace-only: still produce a valid tree.
		p.root = NewElement("html")
	}
	return p.root
}

func (p *Parser) consumeTag() {
	p.pos++ // consume '<'
	if p.pos >= len(p.input) {
		return
	}
	if p.input[p.pos] == '!' {
		// Doctype/comment: drop through to the next '>'.
		p.consumeUntil('>')
		p.advance()
		return
	}
	closing := false
	if p.input[p.pos] == '/' {
		closing = true
		p.pos++
	}
	body := p.consumeUntil('>')
	p.advance()

	selfClose := false
	trimmed := strings.TrimSpace(body)
	if strings.HasSuffix(trimmed, "/") {
		selfClose = true
		trimmed = strings.TrimSuffix(trimmed, "/")
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return
	}
	tag := strings.ToLower(fields[0])

	if closing {
		p.addCloseTag(tag)
		return
	}

	attrs := parseAttrs(fields[1:])
	p.addOpenTag(tag, attrs, selfClose)
}

// parseAttrs splits the tag-body tokens (after the tag name) into
// key=value pairs or bare attributes mapped to "", per spec.md §4.2's
// attribute-lexing rule.
func parseAttrs(tokens []string) map[string]string {
	attrs := map[string]string{}
	for _, tok := range tokens {
		eq := strings.Index(tok, "=")
		if eq < 0 {
			attrs[strings.ToLower(tok)] = ""
			continue
		}
		name := strings.ToLower(tok[:eq])
		value := tok[eq+1:]
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		attrs[name] = value
	}
	return attrs
}

// insertImplicit runs the implicit-tag insertion rules from spec.md §4.2
// until no rule applies, before every add_text/add_tag.
func (p *Parser) insertImplicit(tag string, closing bool) {
	for {
		state := p.openTags()
		switch {
		case len(state) == 0 && tag != "html":
			p.pushImplicit("html")
		case len(state) == 1 && state[0] == "html" &&
			tag != "head" && tag != "body" && !(closing && tag == "html"):
			if headTags[tag] {
				p.pushImplicit("head")
			} else {
				p.pushImplicit("body")
			}
		case len(state) == 2 && state[0] == "html" && state[1] == "head" &&
			!headTags[tag] && !(closing && tag == "head"):
			p.stack = p.stack[:len(p.stack)-1]
		default:
			return
		}
	}
}

func (p *Parser) openTags() []string {
	tags := make([]string, len(p.stack))
	for i, n := range p.stack {
		tags[i] = n.Tag
	}
	return tags
}

// appendNode attaches node under the currently open element, or makes it the
// document root if nothing is open yet.
func (p *Parser) appendNode(node *Node) {
	if len(p.stack) == 0 {
		p.root = node
		return
	}
	p.stack[len(p.stack)-1].AppendChild(node)
}

func (p *Parser) pushImplicit(tag string) {
	node := NewElement(tag)
	p.appendNode(node)
	p.stack = append(p.stack, node)
}

func (p *Parser) addText(text string) {
	p.insertImplicit("", false)
	node := NewText(strings.TrimSpace(text))
	p.appendNode(node)
}

func (p *Parser) addOpenTag(tag string, attrs map[string]string, selfClose bool) {
	p.insertImplicit(tag, false)
	node := NewElement(tag)
	node.Attrs = attrs
	p.appendNode(node)
	if !selfClosing[tag] && !selfClose {
		p.stack = append(p.stack, node)
	}
}

func (p *Parser) addCloseTag(tag string) {
	p.insertImplicit(tag, true)
	if len(p.stack) <= 1 {
		return // only the root (<html>) remains open: no-op
	}
	p.stack = p.stack[:len(p.stack)-1]
}

func (p *Parser) finish() {
	p.stack = nil
}

func (p *Parser) advance() {
	if p.pos < len(p.input) {
		p.pos++
	}
}

func (p *Parser) consumeUntil(c byte) string {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != c {
		p.pos++
	}
	return p.input[start:p.pos]
}
