// Package scripthost binds internal/jsengine's interpreter to the DOM,
// exposing the fixed host-function table of spec.md §4.7: log,
// querySelectorAll, getAttribute, innerHTML_set, XMLHttpRequest_send, and
// cancelable event dispatch via `new Node(handle).dispatchEvent(type)`.
// Grounded on original_source ui.py's JSContext class.
package scripthost

import (
	"fmt"

	"github.com/npdhungana/gobrowser/internal/csp"
	"github.com/npdhungana/gobrowser/internal/dom"
	"github.com/npdhungana/gobrowser/internal/jsengine"
	"github.com/npdhungana/gobrowser/internal/weburl"
)

// Fetcher performs a synchronous HTTP(S)/file/data fetch, the same seam
// internal/tab uses for document/stylesheet/script loads, reused here for
// XMLHttpRequest_send so scripthost never imports net/tls directly.
type Fetcher func(u weburl.URL, referrer *weburl.URL, payload []byte) (weburl.Response, error)

// Host is the per-document script runtime: one Host per Tab.load, per
// spec.md §4.8 step 6 ("execute sequentially on a fresh ScriptEngine").
type Host struct {
	interp *jsengine.Interpreter

	TabURL    weburl.URL
	TabOrigin weburl.Origin
	CSP       csp.AllowList
	Fetch     Fetcher

	// Render is called after a DOM mutation that requires a re-layout,
	// e.g. innerHTML_set — matching ui.py's JSContext.innerHTML_set
	// calling tab.render() directly.
	Render func()
	// Log receives every console.log / host log(...) call; defaults to
	// a no-op if left nil.
	Log func(string)

	root *dom.Node

	nodes      []*dom.Node     // handle -> node, index 0 unused (handle 0 reserved)
	nodeIndex  map[*dom.Node]int
	listeners  map[listenerKey][]*jsengine.Function
}

type listenerKey struct {
	handle    int
	eventType string
}

// New creates a Host rooted at document and installs the runtime preamble
// (Node/document/console/XMLHttpRequest native bindings) into a fresh
// jsengine.Interpreter.
func New(document *dom.Node) *Host {
	h := &Host{
		interp:    jsengine.New(),
		root:      document,
		nodes:     []*dom.Node{nil},
		nodeIndex: map[*dom.Node]int{},
		listeners: map[listenerKey][]*jsengine.Function{},
	}
	h.install()
	return h
}

// handleFor returns n's stable integer handle, minting one on first sight.
// Inverse lookup (handle -> node) is O(1) via h.nodes; forward lookup (node
// -> handle) is O(1) via h.nodeIndex — matching spec.md §4.7's
// "DOMNode ↔ integer monotonically ... inverse lookup is O(1)".
func (h *Host) handleFor(n *dom.Node) int {
	if handle, ok := h.nodeIndex[n]; ok {
		return handle
	}
	handle := len(h.nodes)
	h.nodes = append(h.nodes, n)
	h.nodeIndex[n] = handle
	return handle
}

// HandleOf returns the handle already minted for n, if any — used by
// internal/tab to translate a hit-tested DOM node into the handle passed
// to DispatchEvent.
func (h *Host) HandleOf(n *dom.Node) (int, bool) {
	handle, ok := h.nodeIndex[n]
	return handle, ok
}

func (h *Host) nodeFor(handle int) (*dom.Node, bool) {
	if handle <= 0 || handle >= len(h.nodes) {
		return nil, false
	}
	n := h.nodes[handle]
	return n, n != nil
}

func (h *Host) log(format string, args ...interface{}) {
	if h.Log != nil {
		h.Log(fmt.Sprintf(format, args...))
	}
}

// Global reads a variable out of the shared script environment, letting a
// caller (or a test) observe values a script assigned at its top level.
func (h *Host) Global(name string) (jsengine.Object, bool) {
	return h.interp.Global.Get(name)
}

// Run executes one <script> body's source against this Host's shared
// environment. Script execution errors are caught and logged (per
// spec.md §4.7 "they never crash the Tab") rather than propagated.
func (h *Host) Run(src string) {
	result := h.interp.Run(src)
	if result != nil && result.Type() == jsengine.ErrorObj {
		h.log("script error: %s", result.(*jsengine.Error).Message)
	}
}

// DispatchEvent runs `new Node(handle).dispatchEvent(type)` against every
// listener registered for (handle, type) and reports whether any handler's
// return value was truthy — the host's "cancelled" signal per spec.md
// §4.7, used by internal/tab to abort link navigation / form submission /
// key insertion.
func (h *Host) DispatchEvent(handle int, eventType string) bool {
	cancelled := false
	for _, fn := range h.listeners[listenerKey{handle: handle, eventType: eventType}] {
		result := h.interp.Call(fn, []jsengine.Object{&jsengine.String{Value: eventType}})
		if result != nil && result.Type() == jsengine.ErrorObj {
			h.log("event handler error: %s", result.(*jsengine.Error).Message)
			continue
		}
		if jsengine.Truthy(result) {
			cancelled = true
		}
	}
	return cancelled
}
