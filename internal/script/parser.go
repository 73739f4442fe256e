package script

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Script is a named sequence of browsing steps
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one action
type Step struct {
	Open         string      `yaml:"open,omitempty"`
	OpenRelative string      `yaml:"open_relative,omitempty"`
	Follow       *FollowStep `yaml:"follow,omitempty"`
	SelectForm   *SelectStep `yaml:"select_form,omitempty"`
	Set          *SetStep    `yaml:"set,omitempty"`
	Submit       *SubmitStep `yaml:"submit,omitempty"`
	Expect       *ExpectStep `yaml:"expect,omitempty"`
}

// FollowStep follows the first link matching all given filters
type FollowStep struct {
	URLRegex string `yaml:"url_regex,omitempty"`
	Text     string `yaml:"text,omitempty"`
}

// SelectStep selects a form by CSS selector and index, or by XPath
type SelectStep struct {
	Selector string `yaml:"selector,omitempty"`
	Index    int    `yaml:"index,omitempty"`
	XPath    string `yaml:"xpath,omitempty"`
}

// SetStep assigns a field of the selected form
type SetStep struct {
	Field  string   `yaml:"field"`
	Value  string   `yaml:"value,omitempty"`
	Values []string `yaml:"values,omitempty"`
	Force  bool     `yaml:"force,omitempty"`
}

// SubmitStep submits the selected form
type SubmitStep struct {
	Button string `yaml:"button,omitempty"`
}

// ExpectStep checks the current state; empty fields are not checked
type ExpectStep struct {
	Status   int    `yaml:"status,omitempty"`
	URL      string `yaml:"url,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// Action names the step's action
func (s Step) Action() string {
	switch {
	case s.Open != "":
		return "open"
	case s.OpenRelative != "":
		return "open_relative"
	case s.Follow != nil:
		return "follow"
	case s.SelectForm != nil:
		return "select_form"
	case s.Set != nil:
		return "set"
	case s.Submit != nil:
		return "submit"
	case s.Expect != nil:
		return "expect"
	default:
		return "none"
	}
}

func (s Step) actions() int {
	n := 0
	for _, ok := range []bool{
		s.Open != "",
		s.OpenRelative != "",
		s.Follow != nil,
		s.SelectForm != nil,
		s.Set != nil,
		s.Submit != nil,
		s.Expect != nil,
	} {
		if ok {
			n++
		}
	}
	return n
}

// Parse decodes and validates a YAML script
func Parse(content []byte) (*Script, error) {
	var s Script
	if err := yaml.UnmarshalWithOptions(content, &s, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("steps are required")
	}
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return nil, fmt.Errorf("step %d: expected exactly one action, got %d", i+1, n)
		}
		if step.Set != nil && step.Set.Field == "" {
			return nil, fmt.Errorf("step %d: set.field is required", i+1)
		}
		if step.SelectForm != nil && step.SelectForm.XPath != "" && step.SelectForm.Selector != "" {
			return nil, fmt.Errorf("step %d: select_form takes a selector or an xpath, not both", i+1)
		}
	}
	return &s, nil
}

// Load reads and parses a script file
func Load(path string) (*Script, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(content)
}
