// Package weburl implements URL parsing, resolution and scheme dispatch
// for http(s), file, data and about URLs, grounded on original_source
// browser.py's URL class: the same try/recover-to-about:blank parse, the
// same raw-socket request() for http/https (one request per connection,
// HTTP/1.0, Connection: close), generalized to also resolve relative
// references, carry a referrer/payload, and report an Origin.
package weburl

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme is the set of URL schemes this module understands.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeFile  Scheme = "file"
	SchemeData  Scheme = "data"
	SchemeAbout Scheme = "about"
)

// URL is a parsed reference. Not every field applies to every scheme: Host
// and Port are only meaningful for http/https.
type URL struct {
	Scheme   Scheme
	Host     string
	Port     int
	Path     string
	Fragment string
}

// AboutBlank is the recovery target for any URL that fails to parse.
var AboutBlank = URL{Scheme: SchemeAbout, Path: "blank"}

// Parse never errors: an unparseable or unsupported URL recovers to
// about:blank, matching browser.py's except-clause, per spec.md §4.1's
// "never raised to the UI" requirement.
func Parse(raw string) URL {
	u, ok := tryParse(raw)
	if !ok {
		return AboutBlank
	}
	return u
}

func tryParse(raw string) (URL, bool) {
	if raw == "about:blank" {
		return URL{Scheme: SchemeAbout, Path: "blank"}, true
	}

	rest, fragment, _ := strings.Cut(raw, "#")

	if strings.HasPrefix(rest, "data:") {
		return URL{Scheme: SchemeData, Path: strings.TrimPrefix(rest, "data:"), Fragment: fragment}, true
	}

	scheme, rest, ok := strings.Cut(rest, "://")
	if !ok {
		return URL{}, false
	}
	switch Scheme(scheme) {
	case SchemeHTTP, SchemeHTTPS, SchemeFile:
	default:
		return URL{}, false
	}

	u := URL{Scheme: Scheme(scheme), Fragment: fragment}
	if u.Scheme == SchemeHTTP {
		u.Port = 80
	} else if u.Scheme == SchemeHTTPS {
		u.Port = 443
	}

	if u.Scheme == SchemeFile {
		u.Path = rest
		if !strings.HasPrefix(u.Path, "/") {
			u.Path = "/" + u.Path
		}
		return u, true
	}

	host, path, ok := strings.Cut(rest, "/")
	if ok {
		u.Host = host
		u.Path = "/" + path
	} else {
		u.Host = rest
		u.Path = "/"
	}

	if h, p, ok := strings.Cut(u.Host, ":"); ok {
		port, err := strconv.Atoi(p)
		if err != nil {
			return URL{}, false
		}
		u.Host = h
		u.Port = port
	}

	return u, true
}

// Resolve interprets href relative to base: a bare fragment keeps base's
// location and swaps the fragment; an absolute reference (scheme://) is
// parsed fresh; anything else is resolved against base's path with
// ".."-segment collapsing, per spec.md §4.1.
func Resolve(base URL, href string) URL {
	if strings.HasPrefix(href, "#") {
		resolved := base
		resolved.Fragment = strings.TrimPrefix(href, "#")
		return resolved
	}
	if strings.Contains(href, "://") {
		return Parse(href)
	}
	if strings.HasPrefix(href, "data:") || strings.HasPrefix(href, "about:") {
		return Parse(href)
	}

	resolved := base
	resolved.Fragment = ""

	if strings.HasPrefix(href, "/") {
		resolved.Path = collapse(href)
		return resolved
	}

	dir := base.Path
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i+1]
	} else {
		dir = "/"
	}
	resolved.Path = collapse(dir + href)
	return resolved
}

// collapse removes "." segments and resolves ".." segments against their
// preceding path component.
func collapse(path string) string {
	segments := strings.Split(path, "/")
	var out []string
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/")
}

// Origin is the (scheme, host, port) tuple used for same-origin and CSP
// checks. Only defined for http/https URLs.
type Origin struct {
	Scheme Scheme
	Host   string
	Port   int
}

// Origin returns u's origin and whether one is defined for its scheme.
func (u URL) Origin() (Origin, bool) {
	if u.Scheme != SchemeHTTP && u.Scheme != SchemeHTTPS {
		return Origin{}, false
	}
	return Origin{Scheme: u.Scheme, Host: u.Host, Port: u.Port}, true
}

// String serializes u back to text, preserving a non-default port.
func (u URL) String() string {
	var sb strings.Builder
	switch u.Scheme {
	case SchemeAbout:
		sb.WriteString("about:blank")
	case SchemeData:
		sb.WriteString("data:")
		sb.WriteString(u.Path)
	case SchemeFile:
		sb.WriteString("file://")
		sb.WriteString(u.Path)
	default:
		sb.WriteString(string(u.Scheme))
		sb.WriteString("://")
		sb.WriteString(u.Host)
		if !u.isDefaultPort() {
			sb.WriteString(fmt.Sprintf(":%d", u.Port))
		}
		sb.WriteString(u.Path)
	}
	if u.Fragment != "" {
		sb.WriteString("#")
		sb.WriteString(u.Fragment)
	}
	return sb.String()
}

func (u URL) isDefaultPort() bool {
	return (u.Scheme == SchemeHTTP && u.Port == 80) || (u.Scheme == SchemeHTTPS && u.Port == 443)
}
