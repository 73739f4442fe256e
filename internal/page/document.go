package page

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	// MaxHTMLSize limits parsed documents to 10MB
	MaxHTMLSize = 10 * 1024 * 1024

	// minCharsetConfidence is the chardet score needed to override the
	// html/charset guess when neither headers nor meta tags declare one
	minCharsetConfidence = 80
)

var (
	ErrEmpty    = errors.New("empty document")
	ErrTooLarge = fmt.Errorf("document exceeds maximum size of %d bytes", MaxHTMLSize)
)

var textPolicy = bluemonday.StrictPolicy()

// Document is a parsed HTML page. The same node tree backs both the
// goquery (CSS) and htmlquery (XPath) views, so selections from either
// refer to the same live elements.
type Document struct {
	root *nethtml.Node
	doc  *goquery.Document
}

// Parse decodes body to UTF-8 and parses it. contentType is the response
// Content-Type header and may be empty.
func Parse(body []byte, contentType string) (*Document, error) {
	if len(body) == 0 {
		return nil, ErrEmpty
	}
	if len(body) > MaxHTMLSize {
		return nil, ErrTooLarge
	}

	reader, err := charset.NewReader(bytes.NewReader(body), declaredType(body, contentType))
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	root, err := nethtml.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Document{
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
	}, nil
}

// ParseString parses an in-memory UTF-8 document.
func ParseString(src string) (*Document, error) {
	return Parse([]byte(src), "text/html; charset=utf-8")
}

// declaredType returns a content type carrying the best charset we know of.
func declaredType(body []byte, contentType string) string {
	// windows-1252 is also the html/charset fallback when nothing was
	// declared and the body is not valid UTF-8
	_, name, certain := charset.DetermineEncoding(body, contentType)
	if certain || name != "windows-1252" || declaresCharset(body) {
		return "text/html; charset=" + name
	}

	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err == nil && result != nil && result.Confidence >= minCharsetConfidence {
		return "text/html; charset=" + strings.ToLower(result.Charset)
	}
	return "text/html; charset=windows-1252"
}

// declaresCharset reports whether the prescan window carries a meta
// charset declaration
func declaresCharset(body []byte) bool {
	if len(body) > 1024 {
		body = body[:1024]
	}
	return bytes.Contains(bytes.ToLower(body), []byte("charset"))
}

// IsHTML reports whether a response should be parsed as a page. Without a
// Content-Type header the body is sniffed.
func IsHTML(contentType string, body []byte) bool {
	if contentType == "" {
		return mimetype.Detect(body).Is("text/html")
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Root returns the underlying document node.
func (d *Document) Root() *nethtml.Node {
	return d.root
}

// Selection returns the whole document as a goquery selection.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Find runs a CSS selector over the document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// XPath runs an XPath expression and returns the matching elements as a
// goquery selection in document order.
func (d *Document) XPath(expr string) (*goquery.Selection, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return d.doc.FindNodes(nodes...), nil
}

// XPathOne returns the first element matching expr, or an empty selection.
func (d *Document) XPathOne(expr string) (*goquery.Selection, error) {
	node, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	if node == nil {
		return d.doc.FindNodes(), nil
	}
	return d.doc.FindNodes(node), nil
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Text returns the visible text of the page with markup and scripts
// removed and whitespace collapsed.
func (d *Document) Text() string {
	body := d.doc.Find("body")
	if body.Length() == 0 {
		body = d.doc.Selection
	}

	markup, err := body.Html()
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(textPolicy.Sanitize(markup))), " ")
}

// HTML renders the current state of the document, including any form
// edits made through selections.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}
