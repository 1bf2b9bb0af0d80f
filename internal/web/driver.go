// Package web drives browsers for UI tests.
//
// A Driver is the thin engine seam: every element primitive takes an XPath
// and every page primitive acts on the current page. Utils layers the
// waits, logging, screenshots and JavaScript helpers on top of any Driver,
// so the same step code runs on chromedp, Playwright or a WebDriver server.
package web

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoSuchElement is returned when an XPath matches nothing.
	ErrNoSuchElement = errors.New("no such element")

	// ErrTimeout is returned when a wait gives up.
	ErrTimeout = errors.New("timed out waiting for condition")
)

// Key is a keyboard key a Driver can press.
type Key string

const (
	KeyTab   Key = "Tab"
	KeyEnter Key = "Enter"
)

// Rect is an element's position and size in CSS pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Center returns the midpoint of r.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Driver is a browser engine.
//
// Element methods act on the first node the XPath matches. Count is the only
// element method that must not fail when nothing matches.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	PageSource(ctx context.Context) (string, error)
	SetWindowSize(ctx context.Context, width, height int) error
	Maximize(ctx context.Context) error

	Count(ctx context.Context, xpath string) (int, error)
	Click(ctx context.Context, xpath string) error
	// Type appends text to the element's current value.
	Type(ctx context.Context, xpath, text string) error
	Clear(ctx context.Context, xpath string) error
	Text(ctx context.Context, xpath string) (string, error)
	Attribute(ctx context.Context, xpath, name string) (string, error)
	Visible(ctx context.Context, xpath string) (bool, error)
	Enabled(ctx context.Context, xpath string) (bool, error)
	Selected(ctx context.Context, xpath string) (bool, error)
	Hover(ctx context.Context, xpath string) error
	Rect(ctx context.Context, xpath string) (Rect, error)
	// PressKey sends key to the element, or to the focused element when
	// xpath is empty.
	PressKey(ctx context.Context, xpath string, key Key) error
	ElementScreenshot(ctx context.Context, xpath string) ([]byte, error)

	Screenshot(ctx context.Context) ([]byte, error)
	FullPageScreenshot(ctx context.Context) ([]byte, error)
	// Execute evaluates a JavaScript expression and returns its JSON value.
	Execute(ctx context.Context, expr string) (any, error)
	AlertPresent(ctx context.Context) (bool, error)

	Close() error
}

// timeoutSetter is implemented by engines with their own default timeout.
type timeoutSetter interface {
	SetDefaultTimeout(d time.Duration)
}
