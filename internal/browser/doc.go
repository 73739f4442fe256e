// Package browser implements a stateful browsing session on top of the
// transport client and the page parser.
//
// A Browser tracks the current URL, the parsed page and the selected form.
// Relative links and form actions are resolved against the current URL,
// which always reflects the last page loaded, after redirects.
//
// Example Usage:
//
//	b, _ := browser.New(browser.WithUserAgent("my-bot/1.0"))
//	b.Open(ctx, "https://httpbin.org/")
//	b.FollowLink(ctx, browser.MatchURL("forms/post"))
//	b.SelectForm("form")
//	b.Set("custname", "Gopher")
//	b.Set("topping", "cheese")
//	resp, err := b.SubmitSelected(ctx)
//
// Strict browsers (WithRaiseOn404) report 404 responses as ErrLinkNotFound
// and keep their previous state.
package browser
