// Package csp implements a minimal Content-Security-Policy allow-list:
// parsing a "default-src" directive and checking whether a given origin
// may be fetched from. Extracted into its own package because both
// internal/tab (document loading) and internal/scripthost (XMLHttpRequest)
// need the identical 'self'-token semantics, where original_source ui.py
// inlines the same check twice (Tab.load step 5, JSContext.XMLHttpRequest_send).
package csp

import (
	"strings"

	"github.com/npdhungana/gobrowser/internal/weburl"
)

// AllowList is the result of parsing a Content-Security-Policy header. The
// zero AllowList (Defined false) permits everything,
// matching spec.md §4.3 step 5: "Absent CSP ⇒ allowed_origins = null
// (allow all)".
type AllowList struct {
	Defined bool
	Origins []weburl.Origin
}

// Parse reads a "default-src <token>(<space><token>)*" header value. Other
// directives are ignored, per spec.md §8's CSP header grammar. 'self'
// resolves to documentOrigin; every other token is parsed as an absolute
// URL and reduced to its origin.
func Parse(header string, documentOrigin weburl.Origin) AllowList {
	directive := findDefaultSrc(header)
	if directive == "" {
		return AllowList{}
	}

	allow := AllowList{Defined: true}
	for _, tok := range strings.Fields(directive) {
		if tok == "'self'" {
			allow.Origins = append(allow.Origins, documentOrigin)
			continue
		}
		if origin, ok := weburl.Parse(tok).Origin(); ok {
			allow.Origins = append(allow.Origins, origin)
		}
	}
	return allow
}

// findDefaultSrc extracts the token list following a "default-src"
// directive in a semicolon-or-space-separated CSP header, ignoring any
// other directive present.
func findDefaultSrc(header string) string {
	for _, directive := range strings.Split(header, ";") {
		fields := strings.Fields(strings.TrimSpace(directive))
		if len(fields) >= 1 && strings.EqualFold(fields[0], "default-src") {
			return strings.Join(fields[1:], " ")
		}
	}
	return ""
}

// Permits reports whether origin may be fetched from under this list. An
// undefined list (no CSP header present) permits everything.
func (a AllowList) Permits(origin weburl.Origin) bool {
	if !a.Defined {
		return true
	}
	for _, o := range a.Origins {
		if o == origin {
			return true
		}
	}
	return false
}
