package main

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// guestbook is the companion server's entire state: an in-memory list of
// signed entries, grounded directly on original_source server.py's
// module-level ENTRIES list (form_decode, add_entry, show_comments).
type guestbook struct {
	mu      sync.Mutex
	entries []string
}

func newGuestbook() *guestbook {
	return &guestbook{entries: []string{"Pavel was here"}}
}

// add appends value if present and at most 100 bytes, matching
// server.py's add_entry ("guest" in params and len(params['guest']) <=
// 100").
func (g *guestbook) add(params url.Values) {
	value := params.Get("guest")
	if value == "" || len(value) > 100 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = append(g.entries, value)
}

// page renders the guestbook form and its entries, matching server.py's
// show_comments.
func (g *guestbook) page() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.WriteString("<!doctype html>")
	for _, entry := range g.entries {
		fmt.Fprintf(&b, "<p>%s</p>", escapeText(entry))
	}
	b.WriteString("<form action=/add method=post>")
	b.WriteString("<p><input name=guest></p>")
	b.WriteString("<strong></strong>")
	b.WriteString("<p><button>Sign the book!</button></p>")
	b.WriteString("</form>")
	b.WriteString("<script src=/comment.js></script>")
	return b.String()
}

// escapeText prevents a guest entry from being parsed back out as HTML
// markup — server.py writes entries unescaped, but internal/dom's parser
// has no script-context awareness to rely on for safety the way a real
// browser's parser would.
func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// formDecode parses an application/x-www-form-urlencoded body the same
// way server.py's form_decode does (unquote_plus semantics), via the
// standard library's query-string decoder.
func formDecode(body string) (url.Values, error) {
	return url.ParseQuery(body)
}
