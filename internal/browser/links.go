package browser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bmatcuk/doublestar/v4"
)

// Link is an anchor with an href in the current page
type Link struct {
	Href string
	Text string

	sel *goquery.Selection
}

// Attr returns an attribute of the anchor
func (l Link) Attr(name string) (string, bool) {
	if l.sel == nil {
		return "", false
	}
	return l.sel.Attr(name)
}

// Selection returns the anchor element
func (l Link) Selection() *goquery.Selection {
	return l.sel
}

// LinkFilter narrows the links returned by Links
type LinkFilter func(*linkQuery)

type linkQuery struct {
	base  *url.URL
	preds []func(*goquery.Selection) bool
	xpath []string
	err   error
}

func (q *linkQuery) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

func (q *linkQuery) match(sel *goquery.Selection) bool {
	for _, pred := range q.preds {
		if !pred(sel) {
			return false
		}
	}
	return true
}

// MatchURL keeps links whose href matches the regular expression
func MatchURL(pattern string) LinkFilter {
	return func(q *linkQuery) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			q.fail(fmt.Errorf("invalid url pattern %q: %w", pattern, err))
			return
		}
		q.preds = append(q.preds, func(sel *goquery.Selection) bool {
			return re.MatchString(sel.AttrOr("href", ""))
		})
	}
}

// MatchGlob keeps same-site links whose path matches a doublestar glob
// such as "/docs/**/*.html". Hrefs are resolved against the current URL
// first; links to another host never match.
func MatchGlob(pattern string) LinkFilter {
	return func(q *linkQuery) {
		if !doublestar.ValidatePattern(pattern) {
			q.fail(fmt.Errorf("invalid glob %q: %w", pattern, doublestar.ErrBadPattern))
			return
		}
		q.preds = append(q.preds, func(sel *goquery.Selection) bool {
			u, err := url.Parse(strings.TrimSpace(sel.AttrOr("href", "")))
			if err != nil {
				return false
			}
			if q.base != nil {
				u = q.base.ResolveReference(u)
				if !strings.EqualFold(u.Host, q.base.Host) {
					return false
				}
			} else if u.Host != "" {
				return false
			}
			ok, _ := doublestar.Match(pattern, u.Path)
			return ok
		})
	}
}

// LinkText keeps links whose text is exactly text
func LinkText(text string) LinkFilter {
	return func(q *linkQuery) {
		q.preds = append(q.preds, func(sel *goquery.Selection) bool {
			return sel.Text() == text
		})
	}
}

// TextMatches keeps links whose text matches the regular expression
func TextMatches(pattern string) LinkFilter {
	return func(q *linkQuery) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			q.fail(fmt.Errorf("invalid text pattern %q: %w", pattern, err))
			return
		}
		q.preds = append(q.preds, func(sel *goquery.Selection) bool {
			return re.MatchString(sel.Text())
		})
	}
}

// WithAttr keeps links carrying the attribute with exactly value
func WithAttr(name, value string) LinkFilter {
	return func(q *linkQuery) {
		q.preds = append(q.preds, func(sel *goquery.Selection) bool {
			got, ok := sel.Attr(name)
			return ok && got == value
		})
	}
}

// WithClass keeps links having class among their classes
func WithClass(class string) LinkFilter {
	return func(q *linkQuery) {
		q.preds = append(q.preds, func(sel *goquery.Selection) bool {
			return sel.HasClass(class)
		})
	}
}

// WithID keeps the link with the given id
func WithID(id string) LinkFilter {
	return WithAttr("id", id)
}

// MatchXPath keeps links selected by an XPath expression
func MatchXPath(expr string) LinkFilter {
	return func(q *linkQuery) {
		q.xpath = append(q.xpath, expr)
	}
}

// Links returns the anchors of the current page that match every filter,
// in document order
func (b *Browser) Links(filters ...LinkFilter) ([]Link, error) {
	if b.page == nil {
		return nil, ErrNoPage
	}

	q := &linkQuery{base: b.url}
	for _, filter := range filters {
		filter(q)
	}
	if q.err != nil {
		return nil, q.err
	}

	candidates := b.page.Find("a[href]")
	for _, expr := range q.xpath {
		matched, err := b.page.XPath(expr)
		if err != nil {
			return nil, err
		}
		candidates = candidates.FilterSelection(matched)
	}

	var links []Link
	candidates.Each(func(_ int, sel *goquery.Selection) {
		if !q.match(sel) {
			return
		}
		links = append(links, Link{
			Href: strings.TrimSpace(sel.AttrOr("href", "")),
			Text: sel.Text(),
			sel:  sel,
		})
	})
	return links, nil
}

// FindLink returns the first link matching every filter
func (b *Browser) FindLink(filters ...LinkFilter) (Link, error) {
	links, err := b.Links(filters...)
	if err != nil {
		return Link{}, err
	}
	if len(links) == 0 {
		return Link{}, ErrLinkNotFound
	}
	return links[0], nil
}
