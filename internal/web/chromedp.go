package web

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// Chromedp drives Chrome over the DevTools protocol.
type Chromedp struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	dialogOpen atomic.Bool
}

// NewChromedp starts a local Chrome, or attaches to one when cfg.RemoteURL
// is a ws:// DevTools address.
func NewChromedp(ctx context.Context, cfg config.WebConfig) (*Chromedp, error) {
	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if strings.HasPrefix(cfg.RemoteURL, "ws://") || strings.HasPrefix(cfg.RemoteURL, "wss://") {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.WindowSize(cfg.Width, cfg.Height),
			chromedp.Flag("ignore-certificate-errors", true),
		)
		if !cfg.Headless {
			opts = append(opts, chromedp.Flag("headless", false))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	tab, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		logging.Debug(ctx, fmt.Sprintf(format, args...))
	}))

	c := &Chromedp{tab: tab, cancelTab: cancelTab, cancelAlloc: cancelAlloc}
	chromedp.ListenTarget(tab, c.onEvent)

	if err := c.run(ctx, chromedp.EmulateViewport(int64(cfg.Width), int64(cfg.Height))); err != nil {
		c.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	logging.Info(ctx, "Started Chrome", "headless", cfg.Headless)
	return c, nil
}

func (c *Chromedp) onEvent(ev any) {
	switch ev.(type) {
	case *page.EventJavascriptDialogOpening:
		c.dialogOpen.Store(true)
	case *page.EventJavascriptDialogClosed:
		c.dialogOpen.Store(false)
	}
}

// run executes actions on the tab, bounded by ctx.
func (c *Chromedp) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.tab)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (c *Chromedp) eval(ctx context.Context, expr string, res any) error {
	return c.run(ctx, chromedp.Evaluate(expr, res))
}

func (c *Chromedp) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, chromedp.Navigate(url))
}

func (c *Chromedp) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := c.run(ctx, chromedp.Location(&url))
	return url, err
}

func (c *Chromedp) PageSource(ctx context.Context) (string, error) {
	var html string
	err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (c *Chromedp) SetWindowSize(ctx context.Context, width, height int) error {
	return c.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (c *Chromedp) Maximize(ctx context.Context) error {
	return c.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		id, _, err := browser.GetWindowForTarget().Do(ctx)
		if err != nil {
			return err
		}
		return browser.SetWindowBounds(id, &browser.Bounds{WindowState: browser.WindowStateMaximized}).Do(ctx)
	}))
}

func (c *Chromedp) Count(ctx context.Context, xpath string) (int, error) {
	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return 0, err
	}
	return len(nodes), nil
}

func (c *Chromedp) Click(ctx context.Context, xpath string) error {
	return c.run(ctx, chromedp.Click(xpath, chromedp.BySearch))
}

func (c *Chromedp) Type(ctx context.Context, xpath, text string) error {
	return c.run(ctx, chromedp.SendKeys(xpath, text, chromedp.BySearch))
}

func (c *Chromedp) Clear(ctx context.Context, xpath string) error {
	return c.run(ctx, chromedp.Clear(xpath, chromedp.BySearch))
}

func (c *Chromedp) Text(ctx context.Context, xpath string) (string, error) {
	var text string
	err := c.run(ctx, chromedp.Text(xpath, &text, chromedp.BySearch))
	return text, err
}

func (c *Chromedp) Attribute(ctx context.Context, xpath, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	err := c.run(ctx, chromedp.AttributeValue(xpath, name, &value, &ok, chromedp.BySearch))
	return value, err
}

func (c *Chromedp) Visible(ctx context.Context, xpath string) (bool, error) {
	var ok bool
	err := c.eval(ctx, visibleExpr(xpath), &ok)
	return ok, err
}

func (c *Chromedp) Enabled(ctx context.Context, xpath string) (bool, error) {
	var ok bool
	err := c.eval(ctx, enabledExpr(xpath), &ok)
	return ok, err
}

func (c *Chromedp) Selected(ctx context.Context, xpath string) (bool, error) {
	var ok bool
	err := c.eval(ctx, selectedExpr(xpath), &ok)
	return ok, err
}

func (c *Chromedp) Rect(ctx context.Context, xpath string) (Rect, error) {
	var v any
	if err := c.eval(ctx, rectExpr(xpath), &v); err != nil {
		return Rect{}, err
	}
	r, ok := rectFrom(v)
	if !ok {
		return Rect{}, fmt.Errorf("%w: %s", ErrNoSuchElement, xpath)
	}
	return r, nil
}

func (c *Chromedp) Hover(ctx context.Context, xpath string) error {
	r, err := c.Rect(ctx, xpath)
	if err != nil {
		return err
	}
	x, y := r.Center()
	return c.run(ctx, chromedp.MouseEvent(input.MouseMoved, x, y))
}

func (c *Chromedp) PressKey(ctx context.Context, xpath string, key Key) error {
	k := kb.Tab
	if key == KeyEnter {
		k = kb.Enter
	}
	if xpath == "" {
		return c.run(ctx, chromedp.KeyEvent(k))
	}
	return c.run(ctx, chromedp.SendKeys(xpath, k, chromedp.BySearch))
}

func (c *Chromedp) ElementScreenshot(ctx context.Context, xpath string) ([]byte, error) {
	var buf []byte
	err := c.run(ctx, chromedp.Screenshot(xpath, &buf, chromedp.BySearch))
	return buf, err
}

func (c *Chromedp) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := c.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

func (c *Chromedp) FullPageScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := c.run(ctx, chromedp.FullScreenshot(&buf, 100))
	return buf, err
}

func (c *Chromedp) Execute(ctx context.Context, expr string) (any, error) {
	var v any
	err := c.eval(ctx, expr, &v)
	return v, err
}

func (c *Chromedp) AlertPresent(context.Context) (bool, error) {
	return c.dialogOpen.Load(), nil
}

func (c *Chromedp) Close() error {
	err := chromedp.Cancel(c.tab)
	c.cancelTab()
	c.cancelAlloc()
	return err
}
