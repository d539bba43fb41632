// Package cssom implements the CSS parser: stylesheet text to a list of
// (Selector, Declarations) rules, and the Tag/Descendant selector variants
// used to match them against the DOM.
package cssom

import "strings"

// Parser is a single-pass recursive-descent scanner over raw CSS text,
// grounded on spec.md §4.3's primitive grammar (whitespace/word/literal/
// pair/body/selector) and on original_source ui.py's CSSParser, whose
// ignore_until-based error recovery it reproduces: a malformed declaration
// is skipped up to the next ';' or '}', and a malformed rule is skipped up
// to the next '}', so one bad token never aborts the whole sheet.
type Parser struct {
	input string
	pos   int
}

// NewParser creates a parser over the given CSS source.
func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Parse is a package-level convenience wrapping NewParser(input).Parse().
func Parse(input string) []Rule {
	return NewParser(input).Parse()
}

// ParseSelector parses a bare selector with no declaration body, e.g. the
// argument to document.querySelectorAll. Grounded on original_source
// ui.py's JSContext.querySelectorAll calling CSSParser(selector_text).selector().
func ParseSelector(input string) (Selector, bool) {
	return NewParser(input).tryParseSelector()
}

// ParseInlineDeclarations parses a bare declaration body with no
// surrounding braces or selector, e.g. the value of an HTML style="..."
// attribute. Grounded on original_source ui.py's style() calling
// CSSParser(node.attributes["style"]).body() directly.
func ParseInlineDeclarations(input string) map[string]string {
	return NewParser(input).body()
}

// Parse scans the whole stylesheet and returns every rule that parsed
// cleanly, in document order. Parse never errors: malformed rules are
// dropped, matching spec.md's "one bad rule must not abort the sheet"
// testable scenario.
func (p *Parser) Parse() []Rule {
	var rules []Rule
	for {
		p.whitespace()
		if p.pos >= len(p.input) {
			break
		}
		sel, ok := p.tryParseSelector()
		if !ok {
			p.recoverToRuleEnd()
			continue
		}
		p.whitespace()
		if !p.literal('{') {
			p.recoverToRuleEnd()
			continue
		}
		p.whitespace()
		decls := p.body()
		p.whitespace()
		if !p.literal('}') {
			p.recoverToRuleEnd()
			continue
		}
		rules = append(rules, Rule{Selector: sel, Declarations: decls})
	}
	return rules
}

// body parses a semicolon-separated run of "prop: value" pairs up to (but
// not consuming) the closing '}'. Any pair that fails to parse is skipped
// up to the next ';' or '}', per spec.md's declaration-recovery rule.
func (p *Parser) body() map[string]string {
	decls := map[string]string{}
	for {
		p.whitespace()
		if p.pos >= len(p.input) || p.peek() == '}' {
			return decls
		}
		prop, val, ok := p.tryParsePair()
		if ok {
			decls[prop] = val
		} else {
			p.ignoreUntil(";}")
			continue
		}
		p.whitespace()
		if p.pos < len(p.input) && p.peek() == ';' {
			p.pos++
			continue
		}
		return decls
	}
}

// tryParsePair parses "word : word", lower-casing the property name.
func (p *Parser) tryParsePair() (prop, val string, ok bool) {
	start := p.pos
	prop, ok = p.word()
	if !ok {
		p.pos = start
		return "", "", false
	}
	p.whitespace()
	if !p.literal(':') {
		p.pos = start
		return "", "", false
	}
	p.whitespace()
	val, ok = p.word()
	if !ok {
		p.pos = start
		return "", "", false
	}
	return strings.ToLower(prop), val, true
}

// tryParseSelector parses a space-separated run of tag words into a
// left-nested DescendantSelector chain (or a single TagSelector).
func (p *Parser) tryParseSelector() (Selector, bool) {
	start := p.pos
	first, ok := p.word()
	if !ok {
		p.pos = start
		return nil, false
	}
	sel := Selector(TagSelector{Tag: strings.ToLower(first)})
	for {
		save := p.pos
		if !p.whitespace() {
			break
		}
		next, ok := p.word()
		if !ok {
			p.pos = save
			break
		}
		sel = DescendantSelector{Ancestor: sel, Descendant: TagSelector{Tag: strings.ToLower(next)}}
	}
	return sel, true
}

// word consumes a maximal run of CSS "word" characters: alphanumerics plus
// '#', '-', '.', '%' — enough to cover tag names, hex colors, lengths and
// percentages, matching original_source ui.py's CSSParser.word charset.
func (p *Parser) word() (string, bool) {
	start := p.pos
	for p.pos < len(p.input) && isWordChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return p.input[start:p.pos], true
}

func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '#' || c == '-' || c == '.' || c == '%':
		return true
	}
	return false
}

// whitespace skips a (possibly empty) run of space/tab/newline and reports
// whether it consumed anything.
func (p *Parser) whitespace() bool {
	start := p.pos
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
			continue
		}
		break
	}
	return p.pos > start
}

// literal consumes exactly c, reporting success.
func (p *Parser) literal(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// ignoreUntil advances past the next occurrence of any byte in chars (or to
// EOF), then past that byte itself if it is ';' so body() can resume after
// it; a trailing '}' is left unconsumed for the caller to see.
func (p *Parser) ignoreUntil(chars string) {
	for p.pos < len(p.input) {
		if strings.IndexByte(chars, p.input[p.pos]) >= 0 {
			if p.input[p.pos] == ';' {
				p.pos++
			}
			return
		}
		p.pos++
	}
}

// recoverToRuleEnd skips to the next '}' (consuming it) or EOF, so one
// malformed rule doesn't abort the rest of the sheet.
func (p *Parser) recoverToRuleEnd() {
	for p.pos < len(p.input) {
		if p.input[p.pos] == '}' {
			p.pos++
			return
		}
		p.pos++
	}
}
