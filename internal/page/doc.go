// Package page loads HTML responses into documents that can be queried
// with CSS selectors (goquery) or XPath (htmlquery).
//
// Charset handling follows the response: a charset declared in the
// Content-Type header or a meta tag wins, otherwise chardet is consulted
// for a confident guess before falling back to the html/charset default.
package page
