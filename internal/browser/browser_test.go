package browser_test

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npdhungana/gobrowser/internal/browser"
	"github.com/npdhungana/gobrowser/internal/clipboard"
	"github.com/npdhungana/gobrowser/internal/fontprovider"
	"github.com/npdhungana/gobrowser/internal/surface"
	"github.com/npdhungana/gobrowser/internal/weburl"
)

func newBrowser() *browser.Browser {
	b := browser.New(800, 600, fontprovider.Default{})
	b.Clipboard = clipboard.NewInMemory()
	return b
}

func TestNewTab_MakesItActiveAndAppendsToTabs(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>one</p>")))
	first := b.Active
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>two</p>")))

	assert.Len(t, b.Tabs, 2)
	assert.NotSame(t, first, b.Active)
	assert.Equal(t, b.Tabs[1], b.Active)
}

func TestClick_AboveChromeBottomFocusesAddressBar(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>hi</p>")))

	require.NoError(t, b.Click(700, b.Chrome.Bottom-10))

	assert.Equal(t, "address bar", b.Chrome.Focus)
	assert.Equal(t, b.Active.URL.String(), b.Chrome.AddressBar)
}

func TestClick_BelowChromeBottomRoutesToTabContentCoordinates(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<a href=/next>go</a>")))

	require.NoError(t, b.Click(5, b.Chrome.Bottom+5))

	assert.Equal(t, "", b.Chrome.Focus)
}

func TestKeyPress_GoesToAddressBarOnlyWhenChromeFocused(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>hi</p>")))
	require.NoError(t, b.Click(700, b.Chrome.Bottom-10))

	b.KeyPress('x')
	assert.Contains(t, b.Chrome.AddressBar, "x")
}

func TestEnter_NavigatesAddressBarLookingURL(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>hi</p>")))
	require.NoError(t, b.Click(700, b.Chrome.Bottom-10))

	b.Chrome.AddressBar = "data:text/html,<p>Two</p>"
	b.Chrome.Cursor = len(b.Chrome.AddressBar)
	require.NoError(t, b.Enter())

	assert.Equal(t, "data:text/html,<p>Two</p>", b.Active.URL.String())
	assert.Equal(t, "", b.Chrome.Focus)
}

// pageTransport answers every request with one fixed HTML page over an
// in-memory pipe, so an http(s) navigation completes without a network.
type pageTransport struct{}

func (pageTransport) Open(host string, port int, useTLS bool) (net.Conn, error) {
	client, server := net.Pipe()
	go func() {
		defer server.Close()
		reader := bufio.NewReader(server)
		for {
			line, err := reader.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		server.Write([]byte("HTTP/1.0 200 OK\r\n\r\n<p>results</p>"))
	}()
	return client, nil
}

func TestEnter_SearchesNonURLText(t *testing.T) {
	b := newBrowser()
	b.Transport = pageTransport{}
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>hi</p>")))
	require.NoError(t, b.Click(700, b.Chrome.Bottom-10))

	b.Chrome.AddressBar = "hello world"
	b.Chrome.Cursor = len(b.Chrome.AddressBar)
	require.NoError(t, b.Enter())

	assert.Contains(t, b.Active.URL.String(), "google.com/search?q=hello")
}

func TestCutPaste_RoundTripsThroughClipboardOnAddressBar(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>hi</p>")))
	require.NoError(t, b.Click(700, b.Chrome.Bottom-10))

	b.Chrome.AddressBar = "hello"
	b.Chrome.Cursor = len(b.Chrome.AddressBar)
	b.ArrowLeft(true)
	b.ArrowLeft(true)
	b.Cut()
	assert.Equal(t, "lo", b.Clipboard.Get())
	assert.Equal(t, "hel", b.Chrome.AddressBar)

	b.Chrome.Cursor = 0
	b.Paste()
	assert.Equal(t, "lohel", b.Chrome.AddressBar)
}

func TestDraw_ComposesChromeAndActiveTabIntoOneDisplayList(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<title>Hey</title><p>hi</p>")))

	rec := surface.NewRecorder()
	b.Draw(rec)

	assert.Equal(t, "Hey", rec.Title)
	assert.NotEmpty(t, rec.Last)
}

func TestResize_ShrinksActiveTabViewportByChromeHeight(t *testing.T) {
	b := newBrowser()
	require.NoError(t, b.NewTab(weburl.Parse("data:text/html,<p>hi</p>")))

	b.Resize(1000, 800)

	assert.Equal(t, float64(1000), b.Active.Width)
	assert.Equal(t, 800-b.Chrome.Bottom, b.Active.Height)
}
