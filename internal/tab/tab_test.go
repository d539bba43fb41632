package tab_test

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npdhungana/gobrowser/internal/clipboard"
	"github.com/npdhungana/gobrowser/internal/dom"
	"github.com/npdhungana/gobrowser/internal/fontprovider"
	"github.com/npdhungana/gobrowser/internal/surface"
	"github.com/npdhungana/gobrowser/internal/tab"
	"github.com/npdhungana/gobrowser/internal/weburl"
)

// routeTransport serves a scripted raw HTTP/1.0 response per request path
// over a real loopback socket, the same shape as internal/weburl's
// fakeTransport, extended to keyed routing (Tab.load issues several
// requests — document, stylesheet, script — against one fake origin) and
// to record each request's line and body, so a form POST's wire format
// can be asserted on directly.
type routeTransport struct {
	routes map[string]string

	mu       sync.Mutex
	requests []capturedRequest
}

type capturedRequest struct {
	line string
	body string
}

func (r *routeTransport) Open(host string, port int, useTLS bool) (net.Conn, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	go func() {
		conn, err := ln.Accept()
		ln.Close()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		requestLine, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		requestLine = strings.TrimRight(requestLine, "\r\n")
		contentLength := 0
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			trimmed := strings.TrimRight(line, "\r\n")
			if trimmed == "" {
				break
			}
			if name, val, ok := strings.Cut(trimmed, ":"); ok && strings.EqualFold(strings.TrimSpace(name), "content-length") {
				contentLength, _ = strconv.Atoi(strings.TrimSpace(val))
			}
		}
		body := make([]byte, contentLength)
		if contentLength > 0 {
			_, _ = reader.Read(body)
		}

		parts := strings.Fields(requestLine)
		path := "/"
		if len(parts) >= 2 {
			path = parts[1]
		}

		r.mu.Lock()
		r.requests = append(r.requests, capturedRequest{line: requestLine, body: string(body)})
		r.mu.Unlock()

		conn.Write([]byte(r.routes[path]))
	}()
	return net.Dial("tcp", ln.Addr().String())
}

func (r *routeTransport) last() capturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return capturedRequest{}
	}
	return r.requests[len(r.requests)-1]
}

func newTab(transport weburl.Transport) *tab.Tab {
	tb := tab.New(800, 600)
	tb.Fonts = fontprovider.Default{}
	tb.Transport = transport
	tb.Clipboard = clipboard.NewInMemory()
	return tb
}

func mustLoad(t *testing.T, tb *tab.Tab, target weburl.URL) {
	t.Helper()
	u := target
	require.NoError(t, tb.Load(&u, nil, false))
}

func TestLoad_AppliesLinkedStylesheetAndRunsScript(t *testing.T) {
	rt := &routeTransport{routes: map[string]string{
		"/index.html": "HTTP/1.0 200 OK\r\nContent-Type: text/html\r\n\r\n" +
			"<html><head><link rel=stylesheet href=/style.css><script src=/app.js></script></head>" +
			"<body><p id=out>before</p></body></html>",
		"/style.css": "HTTP/1.0 200 OK\r\n\r\np { color: red; }",
		"/app.js": "HTTP/1.0 200 OK\r\n\r\n" +
			"var nodes = document.querySelectorAll(\"p\"); nodes[0].innerHTML = \"changed\";",
	}}
	tb := newTab(rt)
	mustLoad(t, tb, weburl.Parse("http://example.org/index.html"))

	var out *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.Type == dom.ElementNode {
			if id, ok := n.Attr("id"); ok && id == "out" {
				out = n
			}
		}
	}
	require.NotNil(t, out)
	assert.Equal(t, "changed", out.DirectText())
}

func TestLoad_BlocksCrossOriginStylesheetUnderCSP(t *testing.T) {
	rt := &routeTransport{routes: map[string]string{
		"/index.html": "HTTP/1.0 200 OK\r\n" +
			"Content-Security-Policy: default-src 'self'\r\n\r\n" +
			"<html><head><link rel=stylesheet href=http://evil.example/style.css></head>" +
			"<body><p>hi</p></body></html>",
	}}
	tb := newTab(rt)
	var logged []string
	tb.Log = func(msg string) { logged = append(logged, msg) }
	mustLoad(t, tb, weburl.Parse("http://example.org/index.html"))

	found := false
	for _, msg := range logged {
		if strings.Contains(msg, "blocked stylesheet") {
			found = true
		}
	}
	assert.True(t, found, "expected a CSP-blocked stylesheet log line, got %v", logged)
}

func TestClick_AnchorNavigatesToResolvedHref(t *testing.T) {
	tb := newTab(nil)
	// A tag ends at its first '>', even inside quotes, so the target page is
	// plain text: it loads as a body holding the text "second".
	mustLoad(t, tb, weburl.Parse("data:text/html,<a id=next href=data:text/html,second>go</a>"))

	var anchor *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("a") {
			anchor = n
		}
	}
	require.NotNil(t, anchor)

	ln := layoutNodeFor(t, tb, anchor)
	require.NotNil(t, ln, "expected the anchor's text to have a layout box")

	require.NoError(t, tb.Click(ln.X+1, ln.Y+1))
	assert.Equal(t, weburl.SchemeData, tb.URL.Scheme)

	var body *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("body") {
			body = n
		}
	}
	require.NotNil(t, body)
	assert.Equal(t, "second", body.DirectText())
}

func TestClick_FragmentLinkScrollsWithoutNavigating(t *testing.T) {
	// Uses an http document rather than a data: URL: weburl.Parse cuts a
	// data: URL's fragment at its first literal '#' anywhere in the raw
	// string, which would mis-split a data: URI whose HTML body itself
	// contains "href='#bottom'". An http URL carries no '#', so the
	// fragment only ever appears inside the fetched body.
	rt := &routeTransport{routes: map[string]string{
		"/frag.html": "HTTP/1.0 200 OK\r\n\r\n<a href='#bottom'>jump</a>" +
			strings.Repeat("<p>filler</p>", 60) +
			"<p id=bottom>target</p>",
	}}
	tb := newTab(rt)
	tb.Height = 40
	mustLoad(t, tb, weburl.Parse("http://example.org/frag.html"))
	before := tb.URL

	var anchor *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("a") {
			anchor = n
		}
	}
	require.NotNil(t, anchor)
	ln := layoutNodeFor(t, tb, anchor)
	require.NotNil(t, ln)

	require.NoError(t, tb.Click(ln.X+1, ln.Y+1))
	assert.Equal(t, before, tb.URL, "a fragment click must not navigate")
	assert.Greater(t, tb.ScrollY, float64(0))
}

func TestGoBackGoForward_RoundTrip(t *testing.T) {
	tb := newTab(nil)
	first := weburl.Parse("data:text/html,<p>one</p>")
	second := weburl.Parse("data:text/html,<p>two</p>")
	mustLoad(t, tb, first)
	mustLoad(t, tb, second)
	assert.Equal(t, second.Path, tb.URL.Path)

	require.NoError(t, tb.GoBack())
	assert.Equal(t, first.Path, tb.URL.Path)

	require.NoError(t, tb.GoForward())
	assert.Equal(t, second.Path, tb.URL.Path)
}

func TestReload_DoesNotDuplicateHistoryEntry(t *testing.T) {
	tb := newTab(nil)
	mustLoad(t, tb, weburl.Parse("data:text/html,<p>one</p>"))
	mustLoad(t, tb, weburl.Parse("data:text/html,<p>two</p>"))

	require.NoError(t, tb.Reload())
	require.NoError(t, tb.GoBack())
	assert.Contains(t, tb.URL.Path, "one")
}

func TestInteraction_TypeBackspaceAndArrows(t *testing.T) {
	tb := newTab(nil)
	mustLoad(t, tb, weburl.Parse("data:text/html,<input id=box value=ab>"))

	var input *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("input") {
			input = n
		}
	}
	require.NotNil(t, input)

	ln := layoutNodeFor(t, tb, input)
	require.NotNil(t, ln)
	require.NoError(t, tb.Click(ln.X+1, ln.Y+1))
	require.Equal(t, input, tb.Focus)
	assert.Equal(t, 2, tb.Focus.Cursor)

	tb.KeyPress('c')
	val, _ := tb.Focus.Attr("value")
	assert.Equal(t, "abc", val)
	assert.Equal(t, 3, tb.Focus.Cursor)

	tb.Backspace()
	val, _ = tb.Focus.Attr("value")
	assert.Equal(t, "ab", val)

	tb.ArrowLeft(false)
	assert.Equal(t, 1, tb.Focus.Cursor)
	assert.Nil(t, tb.Focus.SelectionStart, "no shift: no selection")

	tb.ArrowLeft(true)
	assert.Equal(t, 0, tb.Focus.Cursor)
	require.NotNil(t, tb.Focus.SelectionStart)
	require.NotNil(t, tb.Focus.SelectionEnd)
	assert.Equal(t, 1, *tb.Focus.SelectionStart)
	assert.Equal(t, 0, *tb.Focus.SelectionEnd)

	tb.ArrowRight(true)
	assert.Equal(t, 1, tb.Focus.Cursor)
	assert.Equal(t, 1, *tb.Focus.SelectionStart)
	assert.Equal(t, 1, *tb.Focus.SelectionEnd)

	tb.ArrowRight(false)
	assert.Equal(t, 2, tb.Focus.Cursor)
	assert.Nil(t, tb.Focus.SelectionStart, "shift released: selection cleared")
}

func TestCopyPasteCut_RoundTripThroughClipboard(t *testing.T) {
	tb := newTab(nil)
	mustLoad(t, tb, weburl.Parse("data:text/html,<input id=box value=hello>"))

	var input *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("input") {
			input = n
		}
	}
	require.NotNil(t, input)
	ln := layoutNodeFor(t, tb, input)
	require.NotNil(t, ln)
	require.NoError(t, tb.Click(ln.X+1, ln.Y+1))

	tb.Copy()
	assert.Equal(t, "hello", tb.Clipboard.Get())

	tb.Cut()
	val, _ := tb.Focus.Attr("value")
	assert.Equal(t, "", val)
	assert.Equal(t, "hello", tb.Clipboard.Get())

	tb.Paste()
	val, _ = tb.Focus.Attr("value")
	assert.Equal(t, "hello", val)
}

func TestSubmitForm_URLEncodesFieldsAndNavigates(t *testing.T) {
	// Mirrors spec.md §8's worked example: posting
	// <form action=/add method=post><input name=guest></form> with
	// guest=hi issues POST /add with body "guest=hi" and
	// Content-Length: 8.
	rt := &routeTransport{routes: map[string]string{
		"/form.html": "HTTP/1.0 200 OK\r\n\r\n" +
			"<form action=/add><input name=guest value=hi><button>Go</button></form>",
		"/add": "HTTP/1.0 200 OK\r\n\r\n<p>thanks</p>",
	}}
	tb := newTab(rt)
	mustLoad(t, tb, weburl.Parse("http://example.org/form.html"))

	var button *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("button") {
			button = n
		}
	}
	require.NotNil(t, button)
	ln := layoutNodeFor(t, tb, button)
	require.NotNil(t, ln)

	require.NoError(t, tb.Click(ln.X+1, ln.Y+1))

	req := rt.last()
	assert.Equal(t, "POST /add HTTP/1.0", req.line)
	assert.Equal(t, "guest=hi", req.body)

	var p *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("p") {
			p = n
		}
	}
	require.NotNil(t, p)
	assert.Equal(t, "thanks", p.DirectText())
}

func TestEnter_SubmitsEnclosingForm(t *testing.T) {
	tb := newTab(nil)
	mustLoad(t, tb, weburl.Parse(
		"data:text/html,<form action=data:text/html,done>"+
			"<input id=box name=q value=x></form>"))

	var input *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("input") {
			input = n
		}
	}
	require.NotNil(t, input)
	ln := layoutNodeFor(t, tb, input)
	require.NotNil(t, ln)
	require.NoError(t, tb.Click(ln.X+1, ln.Y+1))

	require.NoError(t, tb.Enter())

	var body *dom.Node
	for _, n := range dom.Flatten(tb.Document) {
		if n.IsElement("body") {
			body = n
		}
	}
	require.NotNil(t, body)
	assert.Equal(t, "done", body.DirectText())
}

func TestScroll_ClampsToContentBounds(t *testing.T) {
	tb := newTab(nil)
	tb.Height = 40
	mustLoad(t, tb, weburl.Parse(
		"data:text/html,"+strings.Repeat("<p>line</p>", 80)))

	for i := 0; i < 500; i++ {
		tb.Scrolldown()
	}
	assert.LessOrEqual(t, tb.ScrollY, float64(10000))

	for i := 0; i < 500; i++ {
		tb.Scrollup()
	}
	assert.Equal(t, float64(0), tb.ScrollY)
}

func TestScroll_UsesConfiguredScrollStepWhenSet(t *testing.T) {
	tb := newTab(nil)
	tb.Height = 40
	tb.ScrollStep = 200
	mustLoad(t, tb, weburl.Parse(
		"data:text/html,"+strings.Repeat("<p>line</p>", 80)))

	tb.Scrolldown()
	assert.Equal(t, 200.0, tb.ScrollY)
}

func TestDraw_ReportsTitleToSurface(t *testing.T) {
	tb := newTab(nil)
	mustLoad(t, tb, weburl.Parse("data:text/html,<title>Hi There</title><p>x</p>"))

	rec := surface.NewRecorder()
	tb.Draw(rec)
	assert.Equal(t, "Hi There", rec.Title)
	assert.Equal(t, 1, rec.Count)
}

type rectBox struct {
	X, Y float64
}

// layoutNodeFor locates n's rendered box via Tab.NodeRect, the same
// geometry Click hit-tests against.
func layoutNodeFor(t *testing.T, tb *tab.Tab, n *dom.Node) *rectBox {
	t.Helper()
	x, y, _, _, ok := tb.NodeRect(n)
	if !ok {
		return nil
	}
	return &rectBox{X: x, Y: y}
}
