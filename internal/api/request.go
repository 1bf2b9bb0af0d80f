package api

import (
	"net/http"
	"sort"
	"strings"
)

// ContentType is a request media type.
type ContentType string

const (
	ContentJSON      ContentType = "application/json"
	ContentXML       ContentType = "application/xml"
	ContentText      ContentType = "text/plain"
	ContentHTML      ContentType = "text/html"
	ContentURLEnc    ContentType = "application/x-www-form-urlencoded"
	ContentBinary    ContentType = "application/octet-stream"
	ContentMultipart ContentType = "multipart/form-data"
	ContentAny       ContentType = "*/*"
)

// Request describes one HTTP call.
type Request struct {
	Method      string
	Target      string // full URL, or an endpoint joined to BaseURI
	BaseURI     string
	Headers     map[string]string
	QueryParams map[string]string
	Body        []byte
	ContentType ContentType
}

// Option adjusts a Request before it is sent.
type Option func(*Request)

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) Option {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
}

// WithQueryParams adds query parameters. They are appended to the URL as
// given, without encoding.
func WithQueryParams(params map[string]string) Option {
	return func(r *Request) {
		if r.QueryParams == nil {
			r.QueryParams = make(map[string]string, len(params))
		}
		for k, v := range params {
			r.QueryParams[k] = v
		}
	}
}

// WithBody sets the request body.
func WithBody(body string) Option {
	return func(r *Request) { r.Body = []byte(body) }
}

// WithBytes sets a binary request body.
func WithBytes(body []byte) Option {
	return func(r *Request) { r.Body = body }
}

// WithContentType sets the Content-Type header.
func WithContentType(ct ContentType) Option {
	return func(r *Request) { r.ContentType = ct }
}

// WithBaseURI makes the target an endpoint relative to base.
func WithBaseURI(base string) Option {
	return func(r *Request) { r.BaseURI = base }
}

// URL resolves the final request URL.
func (r *Request) URL() string {
	u := r.Target
	if r.BaseURI != "" && !strings.Contains(u, "://") {
		u = strings.TrimRight(r.BaseURI, "/") + "/" + strings.TrimLeft(u, "/")
	}
	if len(r.QueryParams) == 0 {
		return u
	}

	keys := make([]string, 0, len(r.QueryParams))
	for k := range r.QueryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+r.QueryParams[k])
	}

	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + strings.Join(pairs, "&")
}

func (r *Request) header() http.Header {
	h := make(http.Header, len(r.Headers)+1)
	for k, v := range r.Headers {
		h.Set(k, v)
	}
	if r.ContentType != "" {
		h.Set("Content-Type", string(r.ContentType))
	}
	return h
}
