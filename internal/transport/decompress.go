package transport

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const acceptEncoding = "gzip, deflate, zstd"

// decompressor advertises gzip, deflate and zstd and decodes whichever the
// server picked, so callers always see identity bodies.
type decompressor struct {
	next http.RoundTripper
}

func (d *decompressor) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := d.next.RoundTrip(req)
	if err != nil || resp.Body == nil {
		return resp, err
	}

	raw := resp.Body
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	var body io.ReadCloser
	switch encoding {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, err
		}
		body = &decodedBody{Reader: zr, close: func() error { zr.Close(); return raw.Close() }}
	case "deflate":
		fr := flate.NewReader(raw)
		body = &decodedBody{Reader: fr, close: func() error { fr.Close(); return raw.Close() }}
	case "zstd":
		zr, err := zstd.NewReader(raw)
		if err != nil {
			raw.Close()
			return nil, err
		}
		body = &decodedBody{Reader: zr, close: func() error { zr.Close(); return raw.Close() }}
	default:
		return resp, nil
	}

	resp.Body = body
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

type decodedBody struct {
	io.Reader
	close func() error
}

func (b *decodedBody) Close() error {
	return b.close()
}
