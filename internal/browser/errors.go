package browser

import "errors"

var (
	// ErrLinkNotFound is returned when no link matches, or when a strict
	// browser receives a 404
	ErrLinkNotFound = errors.New("link not found")

	ErrNoPage         = errors.New("no HTML page loaded")
	ErrNoURL          = errors.New("no current URL to resolve against")
	ErrFormNotFound   = errors.New("form not found")
	ErrNoFormSelected = errors.New("no form selected")
	ErrFieldNotFound  = errors.New("field not found")
)
