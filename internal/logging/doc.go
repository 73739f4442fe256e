// Package logging builds the zap loggers used by the browser and the CLI.
//
// Two modes:
//   - Production: JSON lines for machine parsing
//   - Development: colored console output
//
// Example:
//
//	logger := logging.MustNew(logging.Config{Level: "debug", Development: true})
//	b := browser.New(browser.WithLogger(logger))
package logging
