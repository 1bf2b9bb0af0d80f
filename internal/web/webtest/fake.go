// Package webtest provides an in-memory web.Driver for tests.
package webtest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/the-sdet/sdetkit/internal/web"
)

// Element is a fake DOM node.
type Element struct {
	Text     string
	Value    string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
	Selected bool
	Rect     web.Rect
	Shot     []byte
}

var indexed = regexp.MustCompile(`^\((.*)\)\[(\d+)\]$`)

// Fake is a web.Driver over a map of XPath to elements. XPaths of the form
// "(x)[i]" resolve to the i-th element registered under x.
type Fake struct {
	mu       sync.Mutex
	elements map[string][]*Element

	url       string
	source    string
	alert     bool
	width     int
	height    int
	maximized bool
	closed    bool

	calls   []string
	scripts []string

	// ExecuteFunc answers Execute; nil means every script yields true.
	ExecuteFunc func(expr string) (any, error)

	// ScreenshotPNG and FullPagePNG are returned by the screenshot methods.
	ScreenshotPNG []byte
	FullPagePNG   []byte
}

// New returns an empty fake page.
func New() *Fake {
	return &Fake{
		elements:      make(map[string][]*Element),
		ScreenshotPNG: []byte("viewport"),
		FullPagePNG:   []byte("fullpage"),
	}
}

var _ web.Driver = (*Fake)(nil)

// Add registers elements under xpath.
func (f *Fake) Add(xpath string, els ...*Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[xpath] = append(f.elements[xpath], els...)
}

// Remove forgets every element under xpath.
func (f *Fake) Remove(xpath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.elements, xpath)
}

// Update runs fn on the first element xpath resolves to.
func (f *Fake) Update(xpath string, fn func(*Element)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if els := f.lookup(xpath); len(els) > 0 {
		fn(els[0])
	}
}

// SetSource sets the page source.
func (f *Fake) SetSource(html string) {
	f.mu.Lock()
	f.source = html
	f.mu.Unlock()
}

// SetAlert opens or closes a dialog.
func (f *Fake) SetAlert(open bool) {
	f.mu.Lock()
	f.alert = open
	f.mu.Unlock()
}

// Calls returns the recorded element interactions, e.g. "click //a".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Scripts returns every expression passed to Execute.
func (f *Fake) Scripts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scripts...)
}

// WindowSize returns the last size set and whether Maximize was called.
func (f *Fake) WindowSize() (width, height int, maximized bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height, f.maximized
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Fake) lookup(xpath string) []*Element {
	if els, ok := f.elements[xpath]; ok {
		return els
	}
	if m := indexed.FindStringSubmatch(xpath); m != nil {
		i, _ := strconv.Atoi(m[2])
		els := f.lookup(m[1])
		if i >= 1 && i <= len(els) {
			return els[i-1 : i]
		}
	}
	return nil
}

// first resolves xpath and records the call. Callers hold f.mu.
func (f *Fake) first(op, xpath string) (*Element, error) {
	f.calls = append(f.calls, op+" "+xpath)
	els := f.lookup(xpath)
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", web.ErrNoSuchElement, xpath)
	}
	return els[0], nil
}

func (f *Fake) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
	return nil
}

func (f *Fake) CurrentURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *Fake) PageSource(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source, nil
}

func (f *Fake) SetWindowSize(_ context.Context, width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
	return nil
}

func (f *Fake) Maximize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maximized = true
	return nil
}

func (f *Fake) Count(_ context.Context, xpath string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lookup(xpath)), nil
}

func (f *Fake) Click(_ context.Context, xpath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.first("click", xpath)
	return err
}

func (f *Fake) Type(_ context.Context, xpath, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first("type", xpath)
	if err != nil {
		return err
	}
	el.Value += text
	return nil
}

func (f *Fake) Clear(_ context.Context, xpath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first("clear", xpath)
	if err != nil {
		return err
	}
	el.Value = ""
	return nil
}

func (f *Fake) Text(_ context.Context, xpath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first("text", xpath)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (f *Fake) Attribute(_ context.Context, xpath, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first("attribute", xpath)
	if err != nil {
		return "", err
	}
	if v, ok := el.Attrs[name]; ok {
		return v, nil
	}
	if name == "value" {
		return el.Value, nil
	}
	return "", nil
}

func (f *Fake) Visible(_ context.Context, xpath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	els := f.lookup(xpath)
	return len(els) > 0 && !els[0].Hidden, nil
}

func (f *Fake) Enabled(_ context.Context, xpath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	els := f.lookup(xpath)
	return len(els) > 0 && !els[0].Disabled, nil
}

func (f *Fake) Selected(_ context.Context, xpath string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	els := f.lookup(xpath)
	return len(els) > 0 && els[0].Selected, nil
}

func (f *Fake) Hover(_ context.Context, xpath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.first("hover", xpath)
	return err
}

func (f *Fake) Rect(_ context.Context, xpath string) (web.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first("rect", xpath)
	if err != nil {
		return web.Rect{}, err
	}
	return el.Rect, nil
}

func (f *Fake) PressKey(_ context.Context, xpath string, key web.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if xpath == "" {
		f.calls = append(f.calls, "press "+string(key))
		return nil
	}
	_, err := f.first("press "+string(key), xpath)
	return err
}

func (f *Fake) ElementScreenshot(_ context.Context, xpath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, err := f.first("screenshot", xpath)
	if err != nil {
		return nil, err
	}
	return el.Shot, nil
}

func (f *Fake) Screenshot(context.Context) ([]byte, error) {
	return f.ScreenshotPNG, nil
}

func (f *Fake) FullPageScreenshot(context.Context) ([]byte, error) {
	return f.FullPagePNG, nil
}

func (f *Fake) Execute(_ context.Context, expr string) (any, error) {
	f.mu.Lock()
	f.scripts = append(f.scripts, expr)
	fn := f.ExecuteFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(expr)
	}
	return true, nil
}

func (f *Fake) AlertPresent(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alert, nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
