package scripthost

import (
	"strings"

	"github.com/npdhungana/gobrowser/internal/cssom"
	"github.com/npdhungana/gobrowser/internal/dom"
	"github.com/npdhungana/gobrowser/internal/jsengine"
	"github.com/npdhungana/gobrowser/internal/weburl"
)

// install registers the runtime preamble spec.md §6 describes as embedded
// in the ScriptEngine: Node, document, console and XMLHttpRequest, each
// delegating to a host binding. Unlike original_source ui.py, which
// achieves this by parsing a RUNTIME_JS string of JS-prototype shims, no
// such preamble file exists anywhere in the retrieved sources, so here the
// bindings are native Go values declared straight into the global
// environment — equivalent host surface, without inventing a JS source
// file that was never actually retrieved.
func (h *Host) install() {
	h.interp.Global.Declare("console", h.consoleObject())
	h.interp.Global.Declare("document", h.documentObject())
	h.interp.Global.Declare("Node", h.nodeConstructor())
	h.interp.Global.Declare("XMLHttpRequest", h.xhrConstructor())
	h.interp.Global.Declare("log", &jsengine.Builtin{Name: "log", Fn: h.builtinLog})
}

func (h *Host) builtinLog(args ...jsengine.Object) jsengine.Object {
	var parts []string
	for _, a := range args {
		parts = append(parts, displayString(a))
	}
	h.log("%s", strings.Join(parts, " "))
	return jsengine.NullVal
}

func displayString(o jsengine.Object) string {
	if s, ok := o.(*jsengine.String); ok {
		return s.Value
	}
	return o.Inspect()
}

func (h *Host) consoleObject() *jsengine.NativeObject {
	return &jsengine.NativeObject{
		ClassName: "Console",
		Methods: map[string]func(args ...jsengine.Object) jsengine.Object{
			"log": h.builtinLog,
		},
	}
}

// documentObject exposes querySelectorAll — the only document-level host
// function spec.md §4.7 names.
func (h *Host) documentObject() *jsengine.NativeObject {
	return &jsengine.NativeObject{
		ClassName: "Document",
		Methods: map[string]func(args ...jsengine.Object) jsengine.Object{
			"querySelectorAll": h.querySelectorAll,
		},
	}
}

// querySelectorAll parses selectorText via the CSS parser and returns
// handles of matching elements in document order, per spec.md §4.7.
func (h *Host) querySelectorAll(args ...jsengine.Object) jsengine.Object {
	if len(args) != 1 {
		return newArgError("querySelectorAll", "1", len(args))
	}
	selText, ok := args[0].(*jsengine.String)
	if !ok {
		return jsengine.NullVal
	}
	sel, ok := cssom.ParseSelector(selText.Value)
	if !ok {
		return &jsengine.Array{}
	}

	var matches []jsengine.Object
	for _, n := range dom.Flatten(h.root) {
		if n.Type != dom.ElementNode {
			continue
		}
		if sel.Matches(n) {
			matches = append(matches, h.nodeObject(n))
		}
	}
	return &jsengine.Array{Elements: matches}
}

// nodeObject wraps n as the script-visible `new Node(handle)` value:
// getAttribute, innerHTML setter, and addEventListener/dispatchEvent.
func (h *Host) nodeObject(n *dom.Node) *jsengine.NativeObject {
	handle := h.handleFor(n)
	return h.nodeObjectForHandle(handle)
}

func (h *Host) nodeObjectForHandle(handle int) *jsengine.NativeObject {
	obj := &jsengine.NativeObject{ClassName: "Node"}
	obj.Methods = map[string]func(args ...jsengine.Object) jsengine.Object{
		"getAttribute":     func(args ...jsengine.Object) jsengine.Object { return h.getAttribute(handle, args...) },
		"addEventListener": func(args ...jsengine.Object) jsengine.Object { return h.addEventListener(handle, args...) },
		"dispatchEvent":    func(args ...jsengine.Object) jsengine.Object { return h.dispatchEventCall(handle, args...) },
	}
	obj.Get = func(name string) (jsengine.Object, bool) {
		if name == "innerHTML" {
			n, ok := h.nodeFor(handle)
			if !ok {
				return jsengine.NullVal, true
			}
			return &jsengine.String{Value: innerHTML(n)}, true
		}
		return nil, false
	}
	obj.Set = func(name string, val jsengine.Object) bool {
		if name == "innerHTML" {
			text, ok := val.(*jsengine.String)
			if !ok {
				return false
			}
			h.innerHTMLSet(handle, text.Value)
			return true
		}
		return false
	}
	return obj
}

func (h *Host) getAttribute(handle int, args ...jsengine.Object) jsengine.Object {
	if len(args) != 1 {
		return newArgError("getAttribute", "1", len(args))
	}
	name, ok := args[0].(*jsengine.String)
	if !ok {
		return jsengine.NullVal
	}
	n, ok := h.nodeFor(handle)
	if !ok {
		return jsengine.NullVal
	}
	val, present := n.Attr(name.Value)
	if !present {
		return jsengine.NullVal
	}
	return &jsengine.String{Value: val}
}

// innerHTMLSet implements spec.md §4.7's innerHTML_set: parse
// "<html><body>"+text+"</body></html>", replace the target's children with
// the new body's children, reparent, request re-render.
func (h *Host) innerHTMLSet(handle int, htmlText string) {
	target, ok := h.nodeFor(handle)
	if !ok {
		return
	}
	parsed := dom.Parse("<html><body>" + htmlText + "</body></html>")
	body := findFirst(parsed, "body")
	if body == nil {
		return
	}
	target.RemoveChildren()
	for _, child := range body.Children {
		target.AppendChild(child)
	}
	if h.Render != nil {
		h.Render()
	}
}

func innerHTML(n *dom.Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		writeHTML(&sb, c)
	}
	return sb.String()
}

func writeHTML(sb *strings.Builder, n *dom.Node) {
	if n.Type == dom.TextNode {
		sb.WriteString(n.Text)
		return
	}
	sb.WriteString("<" + n.Tag + ">")
	for _, c := range n.Children {
		writeHTML(sb, c)
	}
	sb.WriteString("</" + n.Tag + ">")
}

func findFirst(n *dom.Node, tag string) *dom.Node {
	if n.IsElement(tag) {
		return n
	}
	for _, c := range n.Children {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func (h *Host) addEventListener(handle int, args ...jsengine.Object) jsengine.Object {
	if len(args) != 2 {
		return newArgError("addEventListener", "2", len(args))
	}
	eventType, ok := args[0].(*jsengine.String)
	if !ok {
		return jsengine.NullVal
	}
	fn, ok := args[1].(*jsengine.Function)
	if !ok {
		return jsengine.NullVal
	}
	key := listenerKey{handle: handle, eventType: eventType.Value}
	h.listeners[key] = append(h.listeners[key], fn)
	return jsengine.NullVal
}

// dispatchEventCall is the script-facing `node.dispatchEvent(type)` used by
// the Node native object itself; Host.DispatchEvent (called by
// internal/tab for default-action decisions) shares the same listener
// table.
func (h *Host) dispatchEventCall(handle int, args ...jsengine.Object) jsengine.Object {
	if len(args) != 1 {
		return newArgError("dispatchEvent", "1", len(args))
	}
	eventType, ok := args[0].(*jsengine.String)
	if !ok {
		return jsengine.NullVal
	}
	if h.DispatchEvent(handle, eventType.Value) {
		return jsengine.TrueObj
	}
	return jsengine.FalseObj
}

// nodeConstructor backs `new Node(handle)`.
func (h *Host) nodeConstructor() *jsengine.NativeConstructor {
	return &jsengine.NativeConstructor{
		ClassName: "Node",
		Construct: func(args ...jsengine.Object) jsengine.Object {
			if len(args) != 1 {
				return newArgError("Node", "1", len(args))
			}
			handle, ok := args[0].(*jsengine.Integer)
			if !ok {
				return newError0("Node handle must be an integer")
			}
			return h.nodeObjectForHandle(int(handle.Value))
		},
	}
}

// xhrConstructor backs `new XMLHttpRequest()`, exposing a single `send`
// method matching spec.md §4.7's XMLHttpRequest_send signature.
func (h *Host) xhrConstructor() *jsengine.NativeConstructor {
	return &jsengine.NativeConstructor{
		ClassName: "XMLHttpRequest",
		Construct: func(args ...jsengine.Object) jsengine.Object {
			return &jsengine.NativeObject{
				ClassName: "XMLHttpRequest",
				Methods: map[string]func(args ...jsengine.Object) jsengine.Object{
					"send": h.xhrSend,
				},
			}
		},
	}
}

func (h *Host) xhrSend(args ...jsengine.Object) jsengine.Object {
	if len(args) != 3 {
		return newArgError("XMLHttpRequest_send", "3", len(args))
	}
	method, ok1 := args[0].(*jsengine.String)
	url, ok2 := args[1].(*jsengine.String)
	body, ok3 := args[2].(*jsengine.String)
	if !ok1 || !ok2 || !ok3 {
		return newError0("send(method, url, body) expects three strings")
	}

	target := weburl.Resolve(h.TabURL, url.Value)
	origin, hasOrigin := target.Origin()
	if hasOrigin && origin != h.TabOrigin {
		return newError0("cross-origin request blocked: " + target.String())
	}
	if !h.CSP.Permits(origin) {
		return newError0("request blocked by content security policy: " + target.String())
	}
	if h.Fetch == nil {
		return newError0("no fetcher configured")
	}

	var payload []byte
	if strings.EqualFold(method.Value, "POST") {
		payload = []byte(body.Value)
	}
	resp, err := h.Fetch(target, &h.TabURL, payload)
	if err != nil {
		return newError0(err.Error())
	}
	return &jsengine.String{Value: resp.Body}
}

func newArgError(fn, want string, got int) *jsengine.Error {
	return &jsengine.Error{Message: fn + " expects " + want + " argument(s), got " + itoa(got)}
}

func newError0(msg string) *jsengine.Error {
	return &jsengine.Error{Message: msg}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
