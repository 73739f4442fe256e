// Package transport is the HTTP layer under the browser.
//
// Built on go-resty/resty over the go-retryablehttp pooled transport:
//   - Retries with exponential backoff on transport errors
//   - Token bucket rate limiting (golang.org/x/time/rate)
//   - One circuit breaker per remote host
//   - Cookie jar with public suffix rules, shared by all requests
//   - Transparent gzip, deflate and zstd decoding (klauspost/compress)
//
// Example Usage:
//
//	client, err := transport.New(transport.DefaultOptions())
//	resp, err := client.Do(ctx, transport.NewRequest("GET", "https://example.com/",
//		transport.WithBasicAuth("me", "123")))
package transport
