package browser

import (
	"github.com/GriffinCanCode/statebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statebrowser/internal/transport"
	"go.uber.org/zap"
)

// Option configures a Browser
type Option func(*Browser)

// WithUserAgent sets the User-Agent sent with every request
func WithUserAgent(ua string) Option {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// WithRaiseOn404 turns 404 responses into ErrLinkNotFound
func WithRaiseOn404(strict bool) Option {
	return func(b *Browser) {
		b.raiseOn404 = strict
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Browser) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records navigations and submissions
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(b *Browser) {
		b.metrics = metrics
	}
}

// WithClient shares an existing transport, including its cookies
func WithClient(client *transport.Client) Option {
	return func(b *Browser) {
		b.client = client
	}
}

// RequestOption customizes a single navigation
type RequestOption func(*requestOptions)

type requestOptions struct {
	transport []transport.RequestOption
	submit    string
}

func collect(opts []RequestOption) *requestOptions {
	ro := &requestOptions{}
	for _, opt := range opts {
		opt(ro)
	}
	return ro
}

func withTransport(opt transport.RequestOption) RequestOption {
	return func(ro *requestOptions) {
		ro.transport = append(ro.transport, opt)
	}
}

// WithBasicAuth authenticates this request
func WithBasicAuth(username, password string) RequestOption {
	return withTransport(transport.WithBasicAuth(username, password))
}

// WithBearerToken sends an Authorization: Bearer header
func WithBearerToken(token string) RequestOption {
	return withTransport(transport.WithBearerToken(token))
}

// WithHeader sets a request header
func WithHeader(key, value string) RequestOption {
	return withTransport(transport.WithHeader(key, value))
}

// WithQuery adds a query parameter
func WithQuery(key, value string) RequestOption {
	return withTransport(transport.WithQuery(key, value))
}

// WithSubmitButton picks the submit button sent by SubmitSelected
func WithSubmitButton(name string) RequestOption {
	return func(ro *requestOptions) {
		ro.submit = name
	}
}
