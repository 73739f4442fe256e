package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/GriffinCanCode/statebrowser/internal/config"
	"github.com/GriffinCanCode/statebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statebrowser/internal/page"
	"github.com/GriffinCanCode/statebrowser/internal/shared/id"
	"github.com/GriffinCanCode/statebrowser/internal/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Browser is a stateful browsing session. It remembers the current page and
// the selected form, and resolves links and form actions against the
// current URL. A Browser is not safe for concurrent use.
type Browser struct {
	id         string
	client     *transport.Client
	userAgent  string
	raiseOn404 bool
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	url      *url.URL
	response *transport.Response
	page     *page.Document
	form     *Form
	history  []string
}

// New creates a browser. Without WithClient a private transport with
// default options is created.
func New(opts ...Option) (*Browser, error) {
	b := &Browser{
		id:     uuid.NewString(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.client == nil {
		topts := transport.DefaultOptions()
		topts.UserAgent = b.userAgent
		topts.Logger = b.logger
		topts.Metrics = b.metrics

		client, err := transport.New(topts)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport: %w", err)
		}
		b.client = client
	}

	b.logger = b.logger.With(zap.String("session", b.id))
	return b, nil
}

// NewFromConfig builds the transport and browser from configuration
func NewFromConfig(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) (*Browser, error) {
	topts := transport.OptionsFromConfig(cfg.HTTP)
	topts.UserAgent = cfg.Browser.UserAgent
	topts.Logger = logger
	topts.Metrics = metrics

	client, err := transport.New(topts)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return New(
		WithClient(client),
		WithUserAgent(cfg.Browser.UserAgent),
		WithRaiseOn404(cfg.Browser.RaiseOn404),
		WithLogger(logger),
		WithMetrics(metrics),
	)
}

// ID identifies the session in logs
func (b *Browser) ID() string {
	return b.id
}

// Client returns the underlying transport
func (b *Browser) Client() *transport.Client {
	return b.client
}

// SetUserAgent changes the User-Agent for subsequent requests
func (b *Browser) SetUserAgent(ua string) {
	b.userAgent = ua
}

// URL returns the current URL, or "" before the first page load
func (b *Browser) URL() string {
	if b.url == nil {
		return ""
	}
	return b.url.String()
}

// Page returns the current document, nil when the last response was not HTML
func (b *Browser) Page() *page.Document {
	return b.page
}

// Response returns the last response
func (b *Browser) Response() *transport.Response {
	return b.response
}

// Form returns the selected form, nil when none is selected
func (b *Browser) Form() *Form {
	return b.form
}

// History lists the URLs of every page loaded, oldest first
func (b *Browser) History() []string {
	return append([]string(nil), b.history...)
}

// AbsoluteURL resolves ref against the current URL
func (b *Browser) AbsoluteURL(ref string) (string, error) {
	u, err := b.resolve(ref)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (b *Browser) resolve(ref string) (*url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	if parsed.IsAbs() {
		return parsed, nil
	}
	if b.url == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoURL, ref)
	}
	return b.url.ResolveReference(parsed), nil
}

// Open loads rawURL with a GET request
func (b *Browser) Open(ctx context.Context, rawURL string, opts ...RequestOption) (*transport.Response, error) {
	return b.navigate(ctx, "open", transport.NewRequest(http.MethodGet, rawURL), collect(opts))
}

// OpenRelative loads ref resolved against the current URL
func (b *Browser) OpenRelative(ctx context.Context, ref string, opts ...RequestOption) (*transport.Response, error) {
	target, err := b.AbsoluteURL(ref)
	if err != nil {
		return nil, err
	}
	return b.Open(ctx, target, opts...)
}

// Refresh reloads the current URL
func (b *Browser) Refresh(ctx context.Context, opts ...RequestOption) (*transport.Response, error) {
	if b.url == nil {
		return nil, ErrNoURL
	}
	return b.navigate(ctx, "refresh", transport.NewRequest(http.MethodGet, b.url.String()), collect(opts))
}

// OpenFakePage loads html as if it had been served from rawURL, without any
// network I/O. rawURL may be empty.
func (b *Browser) OpenFakePage(html, rawURL string) error {
	doc, err := page.ParseString(html)
	if err != nil {
		return err
	}

	var u *url.URL
	if rawURL != "" {
		if u, err = url.Parse(rawURL); err != nil {
			return fmt.Errorf("invalid URL %q: %w", rawURL, err)
		}
	}

	b.url = u
	b.response = nil
	b.page = doc
	b.form = nil
	if u != nil {
		b.history = append(b.history, u.String())
	}
	return nil
}

// Follow loads the target of link, sending the current URL as Referer
func (b *Browser) Follow(ctx context.Context, link Link, opts ...RequestOption) (*transport.Response, error) {
	target, err := b.resolve(link.Href)
	if err != nil {
		return nil, err
	}
	target.Fragment = ""
	return b.navigate(ctx, "follow", b.referred(http.MethodGet, target.String()), collect(opts))
}

// FollowLink follows the first link matching every filter
func (b *Browser) FollowLink(ctx context.Context, filters ...LinkFilter) (*transport.Response, error) {
	link, err := b.FindLink(filters...)
	if err != nil {
		return nil, err
	}
	return b.Follow(ctx, link)
}

func (b *Browser) referred(method, target string) *transport.Request {
	req := transport.NewRequest(method, target)
	if b.url != nil {
		req.Header.Set("Referer", b.url.String())
	}
	return req
}

// navigate sends req and, on success, replaces the page state. Failures
// leave the state as it was.
func (b *Browser) navigate(ctx context.Context, kind string, req *transport.Request, ro *requestOptions) (*transport.Response, error) {
	if b.userAgent != "" {
		req.Header.Set("User-Agent", b.userAgent)
	}
	for _, opt := range ro.transport {
		opt(req)
	}
	logger := b.logger.With(zap.Stringer("navigation", id.NewNavigationID()), zap.String("kind", kind))

	resp, err := b.client.Do(ctx, req)
	if err != nil {
		b.metrics.RecordFailure("transport")
		logger.Warn("navigation failed", zap.String("url", req.URL), zap.Error(err))
		return nil, err
	}

	if b.raiseOn404 && resp.StatusCode == http.StatusNotFound {
		b.metrics.RecordFailure("not_found")
		logger.Warn("page not found", zap.String("url", resp.URL.String()))
		return nil, fmt.Errorf("%w: %s", ErrLinkNotFound, resp.URL)
	}

	b.load(resp)
	b.metrics.RecordNavigation(kind)
	logger.Debug("navigated",
		zap.String("url", b.url.String()),
		zap.Int("status", resp.StatusCode))
	return resp, nil
}

func (b *Browser) load(resp *transport.Response) {
	b.url = resp.URL
	b.response = resp
	b.form = nil
	b.page = nil
	b.history = append(b.history, resp.URL.String())

	if !page.IsHTML(resp.ContentType(), resp.Body) {
		return
	}
	doc, err := page.Parse(resp.Body, resp.ContentType())
	if err != nil {
		if !errors.Is(err, page.ErrEmpty) {
			b.logger.Warn("failed to parse page", zap.String("url", resp.URL.String()), zap.Error(err))
		}
		return
	}
	b.page = doc
}
