package transport

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Request describes one HTTP exchange. Build it directly or through
// RequestOptions.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Query  url.Values

	// Form is sent url-encoded unless Body is set
	Form url.Values

	// Body is replayed on every retry attempt
	Body        []byte
	ContentType string

	username, password string
	token              string
}

// RequestOption customizes a single request
type RequestOption func(*Request)

// NewRequest creates a request and applies opts
func NewRequest(method, rawURL string, opts ...RequestOption) *Request {
	req := &Request{
		Method: method,
		URL:    rawURL,
		Header: make(http.Header),
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// WithHeader sets a request header
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
	}
}

// WithQuery adds a query parameter
func WithQuery(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(url.Values)
		}
		r.Query.Add(key, value)
	}
}

// WithBasicAuth authenticates this request only
func WithBasicAuth(username, password string) RequestOption {
	return func(r *Request) {
		r.username, r.password = username, password
	}
}

// WithBearerToken sends an Authorization: Bearer header
func WithBearerToken(token string) RequestOption {
	return func(r *Request) {
		r.token = token
	}
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

func (r *Request) apply(rr *resty.Request) {
	for key, values := range r.Header {
		for i, v := range values {
			if i == 0 {
				rr.SetHeader(key, v)
			} else {
				rr.Header.Add(key, v)
			}
		}
	}
	if len(r.Query) > 0 {
		rr.SetQueryParamsFromValues(r.Query)
	}
	if r.username != "" || r.password != "" {
		rr.SetBasicAuth(r.username, r.password)
	}
	if r.token != "" {
		rr.SetAuthToken(r.token)
	}

	switch {
	case r.Body != nil:
		if r.ContentType != "" {
			rr.SetHeader("Content-Type", r.ContentType)
		}
		rr.SetBody(r.Body)
	case r.Form != nil:
		rr.SetFormDataFromValues(r.Form)
	}
}
