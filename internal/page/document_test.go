package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title> Order Pizza </title>
	<script>var tracking = "ignore me";</script>
</head>
<body>
	<h1>Pizza &amp; Pasta</h1>
	<nav>
		<a href="/menu" class="nav primary">Menu</a>
		<a href="/contact" id="contact">Contact</a>
	</nav>
	<form action="/order" method="post">
		<input name="custname">
	</form>
</body>
</html>`

func TestParseString(t *testing.T) {
	doc, err := ParseString(samplePage)
	require.NoError(t, err)

	assert.Equal(t, "Order Pizza", doc.Title())
	assert.Equal(t, 2, doc.Find("a[href]").Length())
	assert.Equal(t, 1, doc.Find("form").Length())
	assert.NotNil(t, doc.Root())
	assert.Equal(t, 1, doc.Selection().Find("h1").Length())
}

func TestParseRejectsEmptyAndOversized(t *testing.T) {
	_, err := Parse(nil, "text/html")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse(make([]byte, MaxHTMLSize+1), "text/html")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestParseDecodesDeclaredCharset(t *testing.T) {
	// "café" in ISO-8859-1
	body := []byte("<html><body><p>caf\xe9</p></body></html>")

	doc, err := Parse(body, "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café", doc.Find("p").Text())
}

func TestParseDecodesMetaCharset(t *testing.T) {
	body := []byte("<html><head><meta charset=\"windows-1252\"></head><body><p>na\xefve</p></body></html>")

	doc, err := Parse(body, "")
	require.NoError(t, err)
	assert.Equal(t, "naïve", doc.Find("p").Text())
}

func TestParseKeepsDeclaredWindows1252(t *testing.T) {
	// a bare 0x93/0x94 pair reads as quotes only in windows-1252
	body := []byte("<html><head><meta http-equiv=\"Content-Type\" content=\"text/html; charset=windows-1252\"></head><body><p>\x93hi\x94</p></body></html>")

	assert.Equal(t, "text/html; charset=windows-1252", declaredType(body, ""))
	doc, err := Parse(body, "")
	require.NoError(t, err)
	assert.Equal(t, "\u201chi\u201d", doc.Find("p").Text())
}

func TestXPath(t *testing.T) {
	doc, err := ParseString(samplePage)
	require.NoError(t, err)

	sel, err := doc.XPath("//a[@id='contact']")
	require.NoError(t, err)
	require.Equal(t, 1, sel.Length())
	assert.Equal(t, "/contact", sel.AttrOr("href", ""))

	// XPath and CSS selections share nodes
	assert.True(t, sel.IsSelection(doc.Find("#contact")))

	none, err := doc.XPath("//table")
	require.NoError(t, err)
	assert.Equal(t, 0, none.Length())

	_, err = doc.XPath("//a[")
	assert.Error(t, err)
}

func TestXPathOne(t *testing.T) {
	doc, err := ParseString(samplePage)
	require.NoError(t, err)

	sel, err := doc.XPathOne("//a")
	require.NoError(t, err)
	assert.Equal(t, 1, sel.Length())

	none, err := doc.XPathOne("//table")
	require.NoError(t, err)
	assert.Equal(t, 0, none.Length())
}

func TestText(t *testing.T) {
	doc, err := ParseString(samplePage)
	require.NoError(t, err)

	text := doc.Text()
	assert.Contains(t, text, "Pizza & Pasta")
	assert.Contains(t, text, "Menu Contact")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "<a")
}

func TestHTMLReflectsEdits(t *testing.T) {
	doc, err := ParseString(samplePage)
	require.NoError(t, err)

	doc.Find("input[name=custname]").SetAttr("value", "Ada")

	rendered, err := doc.HTML()
	require.NoError(t, err)
	assert.Contains(t, rendered, `value="Ada"`)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html", nil))
	assert.True(t, IsHTML("text/html; charset=utf-8", nil))
	assert.True(t, IsHTML("application/xhtml+xml", nil))
	assert.False(t, IsHTML("application/json", []byte(`<html></html>`)))
	assert.False(t, IsHTML("not a media type;;", nil))

	assert.True(t, IsHTML("", []byte("<!DOCTYPE html><html><body>x</body></html>")))
	assert.False(t, IsHTML("", []byte(`{"json": true}`)))
}
