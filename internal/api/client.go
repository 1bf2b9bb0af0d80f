// Package api is an HTTP client for exercising REST and SOAP services.
//
// Certificates are not verified by default, query parameters are sent
// exactly as written, and every request and response is logged so a failed
// step shows what went over the wire.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// Client sends requests with shared transport settings.
type Client struct {
	http      *http.Client
	baseURI   string
	logBodies bool
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.APIConfig) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureTLS}

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout, Transport: transport},
		baseURI:   cfg.BaseURL,
		logBodies: cfg.LogBodies,
	}
}

// Default is used by the package-level request functions.
var Default = NewClient(config.APIConfig{
	Timeout:     30 * time.Second,
	InsecureTLS: true,
	LogBodies:   true,
})

// Do sends req and reads the whole response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.BaseURI == "" {
		req.BaseURI = c.baseURI
	}
	target := req.URL()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", req.Method, target, err)
	}
	httpReq.Header = req.header()

	c.logRequest(ctx, req.Method, target, httpReq.Header, req.Body)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		logging.Error(ctx, "Request failed", err, "method", req.Method, "url", target)
		return nil, fmt.Errorf("%s %s: %w", req.Method, target, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response of %s %s: %w", req.Method, target, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Header:     httpResp.Header,
		Body:       data,
		Duration:   time.Since(start),
	}
	c.logResponse(ctx, resp)
	return resp, nil
}

func (c *Client) logRequest(ctx context.Context, method, target string, h http.Header, body []byte) {
	args := []any{"method", method, "url", target, "headers", h}
	if c.logBodies && len(body) > 0 {
		args = append(args, "body", string(body))
	}
	logging.Info(ctx, "Request", args...)
}

func (c *Client) logResponse(ctx context.Context, resp *Response) {
	args := []any{"status", resp.StatusCode, "duration", resp.Duration, "headers", resp.Header}
	if c.logBodies && len(resp.Body) > 0 {
		args = append(args, "body", resp.String())
	}
	logging.Info(ctx, "Response", args...)
}

func (c *Client) send(ctx context.Context, method, target string, opts []Option) (*Response, error) {
	req := Request{Method: method, Target: target}
	for _, opt := range opts {
		opt(&req)
	}
	return c.Do(ctx, req)
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return c.send(ctx, http.MethodGet, target, opts)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return c.send(ctx, http.MethodPost, target, opts)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return c.send(ctx, http.MethodPut, target, opts)
}

// Patch sends a PATCH request.
func (c *Client) Patch(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return c.send(ctx, http.MethodPatch, target, opts)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return c.send(ctx, http.MethodDelete, target, opts)
}

// Head sends a HEAD request.
func (c *Client) Head(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return c.send(ctx, http.MethodHead, target, opts)
}

// Options sends an OPTIONS request.
func (c *Client) Options(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return c.send(ctx, http.MethodOptions, target, opts)
}

// Get sends a GET request with the Default client.
func Get(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return Default.Get(ctx, target, opts...)
}

// Post sends a POST request with the Default client.
func Post(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return Default.Post(ctx, target, opts...)
}

// Put sends a PUT request with the Default client.
func Put(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return Default.Put(ctx, target, opts...)
}

// Patch sends a PATCH request with the Default client.
func Patch(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return Default.Patch(ctx, target, opts...)
}

// Delete sends a DELETE request with the Default client.
func Delete(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return Default.Delete(ctx, target, opts...)
}

// Head sends a HEAD request with the Default client.
func Head(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return Default.Head(ctx, target, opts...)
}

// Options sends an OPTIONS request with the Default client.
func Options(ctx context.Context, target string, opts ...Option) (*Response, error) {
	return Default.Options(ctx, target, opts...)
}
