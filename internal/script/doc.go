// Package script runs YAML browsing scripts against a browser.
//
//	name: order pizza
//	steps:
//	  - open: https://httpbin.org/forms/post
//	  - select_form: {selector: form}
//	  - set: {field: custname, value: Gopher}
//	  - set: {field: topping, values: [cheese, onion]}
//	  - submit: {}
//	  - expect: {status: 200, url: "/post$", contains: Gopher}
//
// Each step carries exactly one action.
package script
