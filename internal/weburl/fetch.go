package weburl

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// userAgent is sent on every http(s) request, matching browser.py's fixed
// "User-Agent: Nabin" header (renamed to this module's own identity).
const userAgent = "gobrowser/0.1"

// Response is the uniform (headers, body) shape spec.md §4.1 asks every
// scheme to return, resolving the Open Question of what a non-http fetch
// hands back (see DESIGN.md / SPEC_FULL.md §7).
type Response struct {
	Headers map[string]string
	Body    string
}

// Transport abstracts the raw byte exchange for http/https so tests can
// substitute an in-memory fake instead of opening real sockets. The
// default implementation opens exactly one TCP (or TLS) connection per
// request and closes it, per spec.md §4.1.
type Transport interface {
	Open(host string, port int, useTLS bool) (net.Conn, error)
}

// DefaultTransport dials real TCP/TLS sockets with a fixed connect
// timeout, grounded on original_source browser.py's socket.socket()/
// ssl.create_default_context() pair.
type DefaultTransport struct {
	DialTimeout time.Duration
}

func (t DefaultTransport) timeout() time.Duration {
	if t.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return t.DialTimeout
}

func (t DefaultTransport) Open(host string, port int, useTLS bool) (net.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, t.timeout())
	if err != nil {
		return nil, err
	}
	if useTLS {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: host})
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}
	return conn, nil
}

// Request dispatches u to the scheme-appropriate fetch. referrer, when
// non-nil, is sent as a Referer header on http(s) requests. payload, when
// non-nil, turns an http(s) request into a POST with Content-Length set.
func Request(u URL, transport Transport, referrer *URL, payload []byte) (Response, error) {
	switch u.Scheme {
	case SchemeAbout:
		return Response{Headers: map[string]string{}, Body: ""}, nil
	case SchemeData:
		_, payloadPart, _ := strings.Cut(u.Path, ",")
		return Response{Headers: map[string]string{}, Body: payloadPart}, nil
	case SchemeFile:
		return requestFile(u)
	case SchemeHTTP, SchemeHTTPS:
		return requestHTTP(u, transport, referrer, payload)
	default:
		return Response{}, fmt.Errorf("weburl: unsupported scheme %q", u.Scheme)
	}
}

func requestFile(u URL) (Response, error) {
	info, err := os.Stat(u.Path)
	if err != nil {
		return Response{}, err
	}
	if info.IsDir() {
		return Response{Headers: map[string]string{}, Body: directoryListing(u.Path)}, nil
	}
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return Response{}, err
	}
	return Response{Headers: map[string]string{}, Body: string(data)}, nil
}

// directoryListing synthesizes an HTML index for a file:// directory,
// with a link back to its parent and one link per entry, per spec.md
// §4.1's "synthesized HTML listing with parent and entry links".
func directoryListing(dir string) string {
	entries, _ := os.ReadDir(dir)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("<!doctype html><ul>")
	parent := filepath.Dir(dir)
	sb.WriteString(fmt.Sprintf(`<li><a href="file://%s/">..</a></li>`, parent))
	for _, name := range names {
		sb.WriteString(fmt.Sprintf(`<li><a href="file://%s">%s</a></li>`,
			filepath.Join(dir, name), name))
	}
	sb.WriteString("</ul>")
	return sb.String()
}

func requestHTTP(u URL, transport Transport, referrer *URL, payload []byte) (Response, error) {
	conn, err := transport.Open(u.Host, u.Port, u.Scheme == SchemeHTTPS)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	method := "GET"
	if payload != nil {
		method = "POST"
	}

	var req strings.Builder
	fmt.Fprintf(&req, "%s %s HTTP/1.0\r\n", method, u.Path)
	fmt.Fprintf(&req, "Host: %s\r\n", u.Host)
	req.WriteString("Connection: close\r\n")
	fmt.Fprintf(&req, "User-Agent: %s\r\n", userAgent)
	if referrer != nil {
		fmt.Fprintf(&req, "Referer: %s\r\n", referrer.String())
	}
	if payload != nil {
		fmt.Fprintf(&req, "Content-Length: %d\r\n", len(payload))
	}
	req.WriteString("\r\n")

	if _, err := conn.Write([]byte(req.String())); err != nil {
		return Response{}, err
	}
	if payload != nil {
		if _, err := conn.Write(payload); err != nil {
			return Response{}, err
		}
	}

	reader := bufio.NewReader(conn)
	statusLine, err := reader.ReadString('\n')
	if err != nil {
		return Response{}, err
	}
	_ = statusLine // version/status/explanation not surfaced beyond the body+headers shape

	headers := map[string]string{}
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return Response{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	if _, ok := headers["transfer-encoding"]; ok {
		return Response{}, fmt.Errorf("weburl: refusing chunked response from %s", u.Host)
	}
	if _, ok := headers["content-encoding"]; ok {
		return Response{}, fmt.Errorf("weburl: refusing compressed response from %s", u.Host)
	}

	var body strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			body.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}

	return Response{Headers: headers, Body: body.String()}, nil
}
