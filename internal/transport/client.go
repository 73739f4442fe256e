package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/GriffinCanCode/statebrowser/internal/config"
	"github.com/GriffinCanCode/statebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statebrowser/internal/infrastructure/resilience"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when neither the client nor the request sets one
const DefaultUserAgent = config.DefaultUserAgent

// Options configures a Client
type Options struct {
	Timeout            time.Duration
	Retries            int
	RetryWaitMin       time.Duration
	RetryWaitMax       time.Duration
	RateLimit          float64 // requests per second, 0 = unlimited
	MaxRedirects       int
	Proxy              string
	InsecureSkipVerify bool
	UserAgent          string

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
	Breaker resilience.Settings
}

// DefaultOptions mirrors config.Default
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().HTTP)
}

// OptionsFromConfig maps the HTTP section of the configuration
func OptionsFromConfig(cfg config.HTTPConfig) Options {
	return Options{
		Timeout:            cfg.Timeout.Duration,
		Retries:            cfg.Retries,
		RetryWaitMin:       cfg.RetryWaitMin.Duration,
		RetryWaitMax:       cfg.RetryWaitMax.Duration,
		RateLimit:          cfg.RateLimit,
		MaxRedirects:       cfg.MaxRedirects,
		Proxy:              cfg.Proxy,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
}

// Client wraps resty with rate limiting, per-host circuit breakers and a
// persistent cookie jar. It is safe for concurrent use.
type Client struct {
	resty    *resty.Client
	jar      http.CookieJar
	limiter  *rate.Limiter
	breakers *resilience.Group
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	mu sync.RWMutex
}

// New creates a production-ready client
func New(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// retryablehttp's pooled transport; resty handles the retries
	base := retryablehttp.NewClient().HTTPClient.Transport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		if proxyURL.Scheme != "http" && proxyURL.Scheme != "https" {
			return nil, errors.New("proxy URL must use http or https scheme")
		}
		base.Proxy = http.ProxyURL(proxyURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	restyClient := resty.New().
		SetTransport(&decompressor{next: base}).
		SetCookieJar(jar).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetRetryCount(opts.Retries).
		SetLogger(logger.Sugar()).
		SetHeader("User-Agent", userAgent)
	if opts.Timeout > 0 {
		restyClient.SetTimeout(opts.Timeout)
	}
	if opts.RetryWaitMin > 0 {
		restyClient.SetRetryWaitTime(opts.RetryWaitMin)
	}
	if opts.RetryWaitMax > 0 {
		restyClient.SetRetryMaxWaitTime(opts.RetryWaitMax)
	}

	breakerSettings := opts.Breaker
	if breakerSettings.ReadyToTrip == nil {
		// Sites vary in reliability; trip on a long failure streak or a
		// mostly failing window only
		breakerSettings.ReadyToTrip = func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		}
	}
	if breakerSettings.OnStateChange == nil {
		breakerSettings.OnStateChange = func(host string, from, to resilience.State) {
			logger.Warn("circuit breaker state change",
				zap.String("host", host),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		}
	}

	c := &Client{
		resty:    restyClient,
		jar:      jar,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		breakers: resilience.NewGroup(breakerSettings),
		logger:   logger,
		metrics:  opts.Metrics,
	}
	c.SetRateLimit(opts.RateLimit)
	return c, nil
}

// SetHeader adds a default header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetHeader(key, value)
}

// RemoveHeader removes a default header
func (c *Client) RemoveHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.Header.Del(key)
}

// Headers returns a copy of the default headers
func (c *Client) Headers() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resty.Header.Clone()
}

// SetBasicAuth configures session-wide basic authentication
func (c *Client) SetBasicAuth(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetBasicAuth(username, password)
}

// SetBearerAuth configures session-wide bearer token authentication
func (c *Client) SetBearerAuth(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resty.SetAuthToken(token)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// Cookies returns the cookies the jar would send to u
func (c *Client) Cookies(u *url.URL) []*http.Cookie {
	return c.jar.Cookies(u)
}

// SetCookies stores cookies for u as if u had set them
func (c *Client) SetCookies(u *url.URL, cookies []*http.Cookie) {
	c.jar.SetCookies(u, cookies)
}

// BreakerStates reports the breaker state of every host contacted so far
func (c *Client) BreakerStates() map[string]resilience.State {
	return c.breakers.States()
}

// Do sends req and reads the whole response. Non-2xx statuses are not
// errors; a 5xx or a transport failure counts against the host's breaker.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", req.URL, err)
	}
	if !target.IsAbs() {
		return nil, fmt.Errorf("URL %q is not absolute", req.URL)
	}

	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	done, err := c.breakers.Get(target.Host).Allow()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", target.Host, err)
	}

	c.mu.RLock()
	r := c.resty.R().SetContext(ctx)
	c.mu.RUnlock()
	req.apply(r)

	method := req.method()
	timer := monitoring.NewTimer(c.metrics, method)
	resp, err := r.Execute(method, target.String())
	if err != nil {
		done(false)
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("url", target.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	done(resp.StatusCode() < http.StatusInternalServerError)
	timer.Stop(resp.StatusCode(), len(resp.Body()))

	final := target
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		final = resp.RawResponse.Request.URL
	}

	c.logger.Debug("request complete",
		zap.String("method", method),
		zap.String("url", final.String()),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Time()))

	return &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Header:     resp.Header().Clone(),
		Body:       resp.Body(),
		URL:        final,
		Method:     method,
		Duration:   resp.Time(),
	}, nil
}
