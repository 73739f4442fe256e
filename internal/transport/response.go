package transport

import (
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
)

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte

	// URL is where the response came from after redirects
	URL *url.URL

	Method   string
	Duration time.Duration
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the Content-Type header
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON decodes the body into v
func (r *Response) JSON(v interface{}) error {
	return sonic.Unmarshal(r.Body, v)
}
