package api

import (
	"net/http"
	"time"

	"github.com/the-sdet/sdetkit/internal/jsonpath"
	"github.com/the-sdet/sdetkit/internal/xmlpath"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// String returns the body as text.
func (r *Response) String() string {
	return string(r.Body)
}

// HeaderValue returns the first value of the named header.
func (r *Response) HeaderValue(name string) string {
	return r.Header.Get(name)
}

// JSONValue evaluates a JSONPath against the body.
func (r *Response) JSONValue(path string) (string, error) {
	return jsonpath.Value(r.String(), path)
}

// JSONValues evaluates a JSONPath against the body and returns every match.
func (r *Response) JSONValues(path string) ([]string, error) {
	return jsonpath.Values(r.String(), path)
}

// XMLValue evaluates an XPath against the body.
func (r *Response) XMLValue(xpath string) (string, error) {
	doc, err := xmlpath.Parse(r.String())
	if err != nil {
		return "", err
	}
	return xmlpath.Value(doc, xpath)
}
