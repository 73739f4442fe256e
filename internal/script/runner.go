package script

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/statebrowser/internal/browser"
)

// ErrExpectation is returned when an expect step does not hold
var ErrExpectation = errors.New("expectation failed")

// Run executes the steps of s in order against b, stopping at the first
// failure
func Run(ctx context.Context, b *browser.Browser, s *Script) error {
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runStep(ctx, b, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action(), err)
		}
	}
	return nil
}

func runStep(ctx context.Context, b *browser.Browser, step Step) error {
	switch {
	case step.Open != "":
		_, err := b.Open(ctx, step.Open)
		return err

	case step.OpenRelative != "":
		_, err := b.OpenRelative(ctx, step.OpenRelative)
		return err

	case step.Follow != nil:
		var filters []browser.LinkFilter
		if step.Follow.URLRegex != "" {
			filters = append(filters, browser.MatchURL(step.Follow.URLRegex))
		}
		if step.Follow.Text != "" {
			filters = append(filters, browser.LinkText(step.Follow.Text))
		}
		_, err := b.FollowLink(ctx, filters...)
		return err

	case step.SelectForm != nil:
		var err error
		if step.SelectForm.XPath != "" {
			_, err = b.SelectFormXPath(step.SelectForm.XPath)
		} else {
			_, err = b.SelectFormIndex(step.SelectForm.Selector, step.SelectForm.Index)
		}
		return err

	case step.Set != nil:
		return set(b, step.Set)

	case step.Submit != nil:
		var opts []browser.RequestOption
		if step.Submit.Button != "" {
			opts = append(opts, browser.WithSubmitButton(step.Submit.Button))
		}
		_, err := b.SubmitSelected(ctx, opts...)
		return err

	case step.Expect != nil:
		return expect(b, step.Expect)
	}
	return fmt.Errorf("empty step")
}

func set(b *browser.Browser, s *SetStep) error {
	values := s.Values
	if len(values) == 0 {
		values = []string{s.Value}
	}

	err := b.Set(s.Field, values...)
	if s.Force && errors.Is(err, browser.ErrFieldNotFound) {
		return b.NewControl("text", s.Field, values[0])
	}
	return err
}

func expect(b *browser.Browser, e *ExpectStep) error {
	resp := b.Response()

	if e.Status != 0 {
		if resp == nil {
			return fmt.Errorf("%w: status %d, no response", ErrExpectation, e.Status)
		}
		if resp.StatusCode != e.Status {
			return fmt.Errorf("%w: status %d, got %d", ErrExpectation, e.Status, resp.StatusCode)
		}
	}

	if e.URL != "" {
		re, err := regexp.Compile(e.URL)
		if err != nil {
			return fmt.Errorf("invalid url pattern %q: %w", e.URL, err)
		}
		if !re.MatchString(b.URL()) {
			return fmt.Errorf("%w: url %q does not match %q", ErrExpectation, b.URL(), e.URL)
		}
	}

	if e.Contains != "" {
		var text string
		switch {
		case b.Page() != nil:
			text = b.Page().Text()
		case resp != nil:
			text = resp.Text()
		}
		if !strings.Contains(text, e.Contains) {
			return fmt.Errorf("%w: page does not contain %q", ErrExpectation, e.Contains)
		}
	}
	return nil
}
