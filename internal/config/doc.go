// Package config loads browser configuration.
//
// Precedence, lowest first: built-in defaults, an optional TOML or YAML
// file, environment variables.
//
// Configuration Sections:
//   - Browser: user agent and strict 404 handling
//   - HTTP: timeout, retries, rate limit, redirects, proxy, TLS
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg, err := config.LoadFile("browse.toml")
//	if err != nil {
//		cfg = config.LoadOrDefault()
//	}
//
// Environment Variables:
//   - BROWSER_USER_AGENT, BROWSER_RAISE_ON_404
//   - HTTP_TIMEOUT, HTTP_RETRIES, HTTP_RETRY_WAIT_MIN, HTTP_RETRY_WAIT_MAX
//   - HTTP_RATE_LIMIT, HTTP_MAX_REDIRECTS, HTTP_PROXY_URL, HTTP_INSECURE
//   - LOG_LEVEL, LOG_DEV
package config
