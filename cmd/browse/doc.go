// Command browse runs a YAML browsing script and prints the final URL and
// page title.
//
//	browse -script order.yaml [-config browse.toml] [-v] [-metrics]
//
// With -metrics the request and navigation counters are printed to stderr
// in the Prometheus text format when the script ends.
//
// Configuration comes from BROWSER_*, HTTP_* and LOG_* environment
// variables, optionally layered over a config file.
package main
