package browser

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	EnctypeURLEncoded = "application/x-www-form-urlencoded"
	EnctypeMultipart  = "multipart/form-data"
	EnctypeTextPlain  = "text/plain"
)

// Form is a <form> element of the current page. Edits are made in the live
// document, so Page().HTML() reflects them.
type Form struct {
	sel    *goquery.Selection
	submit *goquery.Selection
	files  map[string]attachment
}

type attachment struct {
	filename string
	content  []byte
}

// field is one serialized name/value pair
type field struct {
	name  string
	value string
}

func newForm(sel *goquery.Selection) *Form {
	return &Form{
		sel:   sel,
		files: make(map[string]attachment),
	}
}

// Selection returns the <form> element
func (f *Form) Selection() *goquery.Selection {
	return f.sel
}

// Method returns the upper-cased method, GET when absent
func (f *Form) Method() string {
	method := strings.ToUpper(strings.TrimSpace(f.sel.AttrOr("method", "")))
	if method == "" {
		return "GET"
	}
	return method
}

// Action returns the raw action attribute; empty means the current page
func (f *Form) Action() string {
	return strings.TrimSpace(f.sel.AttrOr("action", ""))
}

// Enctype returns the form encoding, defaulting to url-encoded
func (f *Form) Enctype() string {
	switch enctype := strings.ToLower(strings.TrimSpace(f.sel.AttrOr("enctype", ""))); enctype {
	case EnctypeMultipart, EnctypeTextPlain:
		return enctype
	default:
		return EnctypeURLEncoded
	}
}

func (f *Form) controls() *goquery.Selection {
	return f.sel.Find("input, button, select, textarea")
}

func (f *Form) named(name string) *goquery.Selection {
	return f.controls().FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.AttrOr("name", "") == name
	})
}

func inputType(sel *goquery.Selection) string {
	typ := strings.ToLower(strings.TrimSpace(sel.AttrOr("type", "")))
	if typ == "" {
		if goquery.NodeName(sel) == "button" {
			return "submit"
		}
		return "text"
	}
	return typ
}

func isSubmit(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "input":
		typ := inputType(sel)
		return typ == "submit" || typ == "image"
	case "button":
		return inputType(sel) == "submit"
	}
	return false
}

func checkable(sel *goquery.Selection) bool {
	if goquery.NodeName(sel) != "input" {
		return false
	}
	typ := inputType(sel)
	return typ == "checkbox" || typ == "radio"
}

// Set assigns values to the field called name. Text inputs and textareas
// take the first value, checkboxes and radios are checked by value and
// selects have the matching options selected. When a name is shared by a
// checkbox or radio and other inputs, such as a hidden default, the
// checkable controls are set.
func (f *Form) Set(name string, values ...string) error {
	fields := f.named(name)
	if fields.Length() == 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}

	first := fields.First()
	switch goquery.NodeName(first) {
	case "textarea":
		return f.Textarea(name, strings.Join(values, "\n"))
	case "select":
		return f.SetSelect(name, values...)
	}

	if fields.FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return checkable(sel)
	}).Length() > 0 {
		return f.Check(name, values...)
	}
	if inputType(first) == "file" {
		return fmt.Errorf("field %q is a file input, use Attach", name)
	}

	// repeated text inputs with the same name take one value each
	fields.Each(func(i int, sel *goquery.Selection) {
		switch {
		case i < len(values):
			sel.SetAttr("value", values[i])
		case i == 0:
			sel.SetAttr("value", "")
		}
	})
	return nil
}

// SetOrCreate sets the field, adding a text input when the form has none
// called name
func (f *Form) SetOrCreate(name, value string) error {
	if f.named(name).Length() == 0 {
		return f.NewControl("text", name, value)
	}
	return f.Set(name, value)
}

// Check checks the radio button or checkboxes of name whose value is in
// values. Other checkboxes of the group are unchecked.
func (f *Form) Check(name string, values ...string) error {
	boxes := f.named(name).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return checkable(sel)
	})
	if boxes.Length() == 0 {
		return fmt.Errorf("%w: no checkbox or radio %q", ErrFieldNotFound, name)
	}
	if inputType(boxes.First()) == "radio" && len(values) > 1 {
		return fmt.Errorf("radio %q takes a single value", name)
	}

	for _, value := range values {
		found := false
		boxes.Each(func(_ int, sel *goquery.Selection) {
			if sel.AttrOr("value", "on") == value {
				found = true
			}
		})
		if !found {
			return fmt.Errorf("%w: %q has no option %q", ErrFieldNotFound, name, value)
		}
	}

	boxes.Each(func(_ int, sel *goquery.Selection) {
		sel.RemoveAttr("checked")
		for _, value := range values {
			if sel.AttrOr("value", "on") == value {
				sel.SetAttr("checked", "checked")
			}
		}
	})
	return nil
}

// Uncheck clears every checkbox and radio called name
func (f *Form) Uncheck(name string) error {
	boxes := f.named(name).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return checkable(sel)
	})
	if boxes.Length() == 0 {
		return fmt.Errorf("%w: no checkbox or radio %q", ErrFieldNotFound, name)
	}
	boxes.RemoveAttr("checked")
	return nil
}

// Textarea replaces the text of a textarea
func (f *Form) Textarea(name, text string) error {
	area := f.named(name).Filter("textarea")
	if area.Length() == 0 {
		return fmt.Errorf("%w: no textarea %q", ErrFieldNotFound, name)
	}
	area.First().SetText(text)
	return nil
}

// SetSelect selects the options of a select whose value (or text, when
// the option has no value) is in values
func (f *Form) SetSelect(name string, values ...string) error {
	sel := f.named(name).Filter("select").First()
	if sel.Length() == 0 {
		return fmt.Errorf("%w: no select %q", ErrFieldNotFound, name)
	}

	_, multiple := sel.Attr("multiple")
	if !multiple && len(values) > 1 {
		return fmt.Errorf("select %q takes a single value", name)
	}

	options := sel.Find("option")
	for _, value := range values {
		if options.FilterFunction(func(_ int, opt *goquery.Selection) bool {
			return optionValue(opt) == value
		}).Length() == 0 {
			return fmt.Errorf("%w: %q has no option %q", ErrFieldNotFound, name, value)
		}
	}

	options.Each(func(_ int, opt *goquery.Selection) {
		opt.RemoveAttr("selected")
		for _, value := range values {
			if optionValue(opt) == value {
				opt.SetAttr("selected", "selected")
			}
		}
	})
	return nil
}

func optionValue(opt *goquery.Selection) string {
	if value, ok := opt.Attr("value"); ok {
		return value
	}
	return strings.TrimSpace(opt.Text())
}

// NewControl replaces every control called name with a new input
func (f *Form) NewControl(typ, name, value string) error {
	if name == "" {
		return fmt.Errorf("control name must not be empty")
	}
	f.named(name).Remove()

	f.sel.AppendNodes(&nethtml.Node{
		Type:     nethtml.ElementNode,
		Data:     "input",
		DataAtom: atom.Input,
		Attr: []nethtml.Attribute{
			{Key: "type", Val: typ},
			{Key: "name", Val: name},
			{Key: "value", Val: value},
		},
	})
	return nil
}

// Attach reads r as the content of the file input called name
func (f *Form) Attach(name, filename string, r io.Reader) error {
	input := f.named(name).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return goquery.NodeName(sel) == "input" && inputType(sel) == "file"
	})
	if input.Length() == 0 {
		return fmt.Errorf("%w: no file input %q", ErrFieldNotFound, name)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	f.files[name] = attachment{filename: filename, content: content}
	input.First().SetAttr("value", filename)
	return nil
}

// ChooseSubmit selects the submit button sent with the form, by name
func (f *Form) ChooseSubmit(name string) error {
	button := f.controls().FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return isSubmit(sel) && sel.AttrOr("name", "") == name
	})
	if button.Length() == 0 {
		return fmt.Errorf("%w: no submit button %q", ErrFieldNotFound, name)
	}
	f.submit = button.First()
	return nil
}

// submitter is the chosen button, or the first named submit button
func (f *Form) submitter() *goquery.Selection {
	if f.submit != nil {
		return f.submit
	}
	return f.controls().FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return isSubmit(sel) && sel.AttrOr("name", "") != ""
	}).First()
}

// fields serializes the form in document order
func (f *Form) fields() []field {
	var out []field
	submitter := f.submitter()

	f.controls().Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name == "" {
			return
		}
		if _, disabled := sel.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(sel) {
		case "textarea":
			out = append(out, field{name, sel.Text()})
			return
		case "select":
			out = append(out, selectFields(name, sel)...)
			return
		}

		if isSubmit(sel) {
			if !sel.IsSelection(submitter) {
				return
			}
			if inputType(sel) == "image" {
				out = append(out, field{name + ".x", "0"}, field{name + ".y", "0"})
				return
			}
			out = append(out, field{name, sel.AttrOr("value", "")})
			return
		}

		switch inputType(sel) {
		case "checkbox", "radio":
			if _, checked := sel.Attr("checked"); checked {
				out = append(out, field{name, sel.AttrOr("value", "on")})
			}
		case "reset", "button":
		case "file":
			out = append(out, field{name, f.files[name].filename})
		default:
			out = append(out, field{name, sel.AttrOr("value", "")})
		}
	})
	return out
}

func selectFields(name string, sel *goquery.Selection) []field {
	var out []field
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		if _, selected := opt.Attr("selected"); selected {
			out = append(out, field{name, optionValue(opt)})
		}
	})
	if len(out) > 0 {
		return out
	}
	if _, multiple := sel.Attr("multiple"); multiple {
		return nil
	}
	if first := sel.Find("option").First(); first.Length() > 0 {
		return []field{{name, optionValue(first)}}
	}
	return nil
}

// Values returns what the browser would submit for the form
func (f *Form) Values() url.Values {
	values := make(url.Values)
	for _, fd := range f.fields() {
		values.Add(fd.name, fd.value)
	}
	return values
}

// SelectForm selects the first form matching a CSS selector; "" means
// "form"
func (b *Browser) SelectForm(selector string) (*Form, error) {
	return b.SelectFormIndex(selector, 0)
}

// SelectFormIndex selects the nr-th (0-based) form matching selector
func (b *Browser) SelectFormIndex(selector string, nr int) (*Form, error) {
	if b.page == nil {
		return nil, ErrNoPage
	}
	if selector == "" {
		selector = "form"
	}
	return b.selectForm(b.page.Find(selector), nr, selector)
}

// SelectFormXPath selects the first form matched by an XPath expression
func (b *Browser) SelectFormXPath(expr string) (*Form, error) {
	if b.page == nil {
		return nil, ErrNoPage
	}
	found, err := b.page.XPath(expr)
	if err != nil {
		return nil, err
	}
	return b.selectForm(found, 0, expr)
}

func (b *Browser) selectForm(found *goquery.Selection, nr int, query string) (*Form, error) {
	if nr < 0 || nr >= found.Length() {
		return nil, fmt.Errorf("%w: %q (index %d)", ErrFormNotFound, query, nr)
	}
	sel := found.Eq(nr)
	if goquery.NodeName(sel) != "form" {
		return nil, fmt.Errorf("%w: %q matched <%s>", ErrFormNotFound, query, goquery.NodeName(sel))
	}
	b.form = newForm(sel)
	return b.form, nil
}

// Set assigns a field of the selected form
func (b *Browser) Set(name string, values ...string) error {
	if b.form == nil {
		return ErrNoFormSelected
	}
	return b.form.Set(name, values...)
}

// NewControl adds an input to the selected form, replacing any control of
// the same name
func (b *Browser) NewControl(typ, name, value string) error {
	if b.form == nil {
		return ErrNoFormSelected
	}
	return b.form.NewControl(typ, name, value)
}
