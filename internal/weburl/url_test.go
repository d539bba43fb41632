package weburl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npdhungana/gobrowser/internal/weburl"
)

func TestParse_HTTP(t *testing.T) {
	u := weburl.Parse("http://example.org/index.html")
	assert.Equal(t, weburl.SchemeHTTP, u.Scheme)
	assert.Equal(t, "example.org", u.Host)
	assert.Equal(t, 80, u.Port)
	assert.Equal(t, "/index.html", u.Path)
}

func TestParse_HTTPSWithExplicitPort(t *testing.T) {
	u := weburl.Parse("https://example.org:8443/a/b")
	assert.Equal(t, weburl.SchemeHTTPS, u.Scheme)
	assert.Equal(t, 8443, u.Port)
	assert.Equal(t, "/a/b", u.Path)
}

func TestParse_NoPathDefaultsToSlash(t *testing.T) {
	u := weburl.Parse("http://example.org")
	assert.Equal(t, "/", u.Path)
}

func TestParse_DataURL(t *testing.T) {
	u := weburl.Parse("data:text/html,<p>hi</p>")
	assert.Equal(t, weburl.SchemeData, u.Scheme)
	assert.Equal(t, "text/html,<p>hi</p>", u.Path)
}

func TestParse_FileURL(t *testing.T) {
	u := weburl.Parse("file:///home/user/index.html")
	assert.Equal(t, weburl.SchemeFile, u.Scheme)
	assert.Equal(t, "/home/user/index.html", u.Path)
}

func TestParse_FragmentStrippedBeforeSchemeProcessing(t *testing.T) {
	u := weburl.Parse("http://example.org/x#section2")
	assert.Equal(t, "/x", u.Path)
	assert.Equal(t, "section2", u.Fragment)
}

func TestParse_InvalidURLRecoversToAboutBlank(t *testing.T) {
	u := weburl.Parse("not a url at all")
	assert.Equal(t, weburl.AboutBlank, u)
}

func TestParse_UnsupportedSchemeRecoversToAboutBlank(t *testing.T) {
	u := weburl.Parse("ftp://example.org/x")
	assert.Equal(t, weburl.AboutBlank, u)
}

func TestResolve_FragmentOnlyKeepsLocation(t *testing.T) {
	base := weburl.Parse("http://example.org/a/b.html")
	r := weburl.Resolve(base, "#top")
	assert.Equal(t, "/a/b.html", r.Path)
	assert.Equal(t, "top", r.Fragment)
}

func TestResolve_AbsoluteHref(t *testing.T) {
	base := weburl.Parse("http://example.org/a/b.html")
	r := weburl.Resolve(base, "https://other.example/x")
	assert.Equal(t, weburl.SchemeHTTPS, r.Scheme)
	assert.Equal(t, "other.example", r.Host)
}

func TestResolve_RelativePath(t *testing.T) {
	base := weburl.Parse("http://example.org/a/b.html")
	r := weburl.Resolve(base, "c.html")
	assert.Equal(t, "/a/c.html", r.Path)
}

func TestResolve_DotDotCollapsesSegments(t *testing.T) {
	base := weburl.Parse("http://example.org/a/b/c.html")
	r := weburl.Resolve(base, "../d.html")
	assert.Equal(t, "/a/d.html", r.Path)
}

func TestResolve_RootRelative(t *testing.T) {
	base := weburl.Parse("http://example.org/a/b.html")
	r := weburl.Resolve(base, "/other.html")
	assert.Equal(t, "/other.html", r.Path)
}

func TestString_OmitsDefaultPort(t *testing.T) {
	u := weburl.Parse("http://example.org/x")
	assert.Equal(t, "http://example.org/x", u.String())
}

func TestString_PreservesNonDefaultPort(t *testing.T) {
	u := weburl.Parse("http://example.org:8080/x")
	assert.Equal(t, "http://example.org:8080/x", u.String())
}

func TestOrigin_DefinedForHTTP(t *testing.T) {
	u := weburl.Parse("http://example.org/x")
	origin, ok := u.Origin()
	require.True(t, ok)
	assert.Equal(t, weburl.Origin{Scheme: weburl.SchemeHTTP, Host: "example.org", Port: 80}, origin)
}

func TestOrigin_UndefinedForFile(t *testing.T) {
	u := weburl.Parse("file:///x")
	_, ok := u.Origin()
	assert.False(t, ok)
}

func TestRequest_AboutBlankIsEmpty(t *testing.T) {
	resp, err := weburl.Request(weburl.AboutBlank, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Body)
}

func TestRequest_DataURLReturnsPayload(t *testing.T) {
	u := weburl.Parse("data:text/html,hello")
	resp, err := weburl.Request(u, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Body)
}
