package browser

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/statebrowser/internal/transport"
)

// SubmitSelected submits the selected form and loads the response
func (b *Browser) SubmitSelected(ctx context.Context, opts ...RequestOption) (*transport.Response, error) {
	if b.form == nil {
		return nil, ErrNoFormSelected
	}

	ro := collect(opts)
	if ro.submit != "" {
		if err := b.form.ChooseSubmit(ro.submit); err != nil {
			return nil, err
		}
	}

	req, err := b.formRequest(b.form)
	if err != nil {
		return nil, err
	}

	b.metrics.RecordSubmission(req.Method, b.form.Enctype())
	return b.navigate(ctx, "submit", req, ro)
}

// formRequest serializes f the way a browser would
func (b *Browser) formRequest(f *Form) (*transport.Request, error) {
	action := f.Action()
	var (
		target *url.URL
		err    error
	)
	if action == "" {
		if b.url == nil {
			return nil, ErrNoURL
		}
		copied := *b.url
		target = &copied
	} else if target, err = b.resolve(action); err != nil {
		return nil, err
	}
	target.Fragment = ""

	method := f.Method()
	fields := f.fields()

	if method == http.MethodGet {
		values := make(url.Values)
		for _, fd := range fields {
			values.Add(fd.name, fd.value)
		}
		target.RawQuery = values.Encode()
		return b.referred(method, target.String()), nil
	}

	req := b.referred(method, target.String())
	switch f.Enctype() {
	case EnctypeMultipart:
		body, contentType, err := multipartBody(f, fields)
		if err != nil {
			return nil, err
		}
		req.Body = body
		req.ContentType = contentType
	case EnctypeTextPlain:
		var body strings.Builder
		for _, fd := range fields {
			body.WriteString(fd.name + "=" + fd.value + "\r\n")
		}
		req.Body = []byte(body.String())
		req.ContentType = EnctypeTextPlain
	default:
		values := make(url.Values)
		for _, fd := range fields {
			values.Add(fd.name, fd.value)
		}
		req.Form = values
	}
	return req, nil
}

func multipartBody(f *Form, fields []field) ([]byte, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, fd := range fields {
		file, isFile := f.files[fd.name]
		if !isFile {
			if isFileInput(f, fd.name) {
				// an empty file part, as browsers send for an unset input
				if _, err := w.CreateFormFile(fd.name, ""); err != nil {
					return nil, "", err
				}
				continue
			}
			if err := w.WriteField(fd.name, fd.value); err != nil {
				return nil, "", err
			}
			continue
		}

		part, err := w.CreateFormFile(fd.name, file.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return body.Bytes(), w.FormDataContentType(), nil
}

func isFileInput(f *Form, name string) bool {
	input := f.named(name).First()
	return input.Length() > 0 && inputType(input) == "file"
}
