package web

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// Playwright drives Chromium, Firefox or WebKit through playwright-go.
// Dialogs are accepted as they open; AlertPresent reports whether one has
// opened since the previous check.
type Playwright struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	dialogSeen atomic.Bool
}

// NewPlaywright launches cfg.Browser (chromium, firefox or webkit) and opens
// a page sized cfg.Width x cfg.Height.
func NewPlaywright(ctx context.Context, cfg config.WebConfig) (*Playwright, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch strings.ToLower(cfg.Browser) {
	case "", "chromium", "chrome":
		bt = pw.Chromium
	case "firefox":
		bt = pw.Firefox
	case "webkit", "safari":
		bt = pw.WebKit
	default:
		pw.Stop()
		return nil, fmt.Errorf("unsupported playwright browser %q", cfg.Browser)
	}

	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", cfg.Browser, err)
	}

	pg, err := b.NewPage(playwright.BrowserNewPageOptions{
		Viewport:          &playwright.Size{Width: cfg.Width, Height: cfg.Height},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}

	p := &Playwright{pw: pw, browser: b, page: pg}
	p.SetDefaultTimeout(cfg.DefaultTimeout)
	pg.OnDialog(func(d playwright.Dialog) {
		p.dialogSeen.Store(true)
		logging.Info(context.Background(), "Dialog opened: "+d.Message())
		if err := d.Accept(); err != nil {
			logging.Error(context.Background(), "Could not accept dialog", err)
		}
	})

	logging.Info(ctx, "Started Playwright", "browser", cfg.Browser, "headless", cfg.Headless)
	return p, nil
}

// Page exposes the underlying playwright page.
func (p *Playwright) Page() playwright.Page { return p.page }

// SetDefaultTimeout applies d to every playwright action.
func (p *Playwright) SetDefaultTimeout(d time.Duration) {
	if d > 0 {
		p.page.SetDefaultTimeout(float64(d.Milliseconds()))
	}
}

func (p *Playwright) locate(xpath string) playwright.Locator {
	return p.page.Locator("xpath=" + xpath).First()
}

func (p *Playwright) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url)
	return err
}

func (p *Playwright) CurrentURL(context.Context) (string, error) {
	return p.page.URL(), nil
}

func (p *Playwright) PageSource(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *Playwright) SetWindowSize(_ context.Context, width, height int) error {
	return p.page.SetViewportSize(width, height)
}

// Maximize sizes the viewport to the screen, since playwright pages have
// no window of their own.
func (p *Playwright) Maximize(ctx context.Context) error {
	v, err := p.page.Evaluate("({w: window.screen.availWidth, h: window.screen.availHeight})")
	if err != nil {
		return err
	}
	m, _ := v.(map[string]any)
	w, h := int(number(m["w"])), int(number(m["h"]))
	if w == 0 || h == 0 {
		return fmt.Errorf("screen size unavailable")
	}
	return p.SetWindowSize(ctx, w, h)
}

func (p *Playwright) Count(ctx context.Context, xpath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.page.Locator("xpath=" + xpath).Count()
}

func (p *Playwright) Click(_ context.Context, xpath string) error {
	return p.locate(xpath).Click()
}

func (p *Playwright) Type(_ context.Context, xpath, text string) error {
	return p.locate(xpath).PressSequentially(text)
}

func (p *Playwright) Clear(_ context.Context, xpath string) error {
	return p.locate(xpath).Clear()
}

func (p *Playwright) Text(_ context.Context, xpath string) (string, error) {
	return p.locate(xpath).InnerText()
}

func (p *Playwright) Attribute(_ context.Context, xpath, name string) (string, error) {
	return p.locate(xpath).GetAttribute(name)
}

func (p *Playwright) Visible(_ context.Context, xpath string) (bool, error) {
	return p.locate(xpath).IsVisible()
}

func (p *Playwright) Enabled(_ context.Context, xpath string) (bool, error) {
	return p.locate(xpath).IsEnabled()
}

func (p *Playwright) Selected(_ context.Context, xpath string) (bool, error) {
	v, err := p.page.Evaluate(selectedExpr(xpath))
	if err != nil {
		return false, err
	}
	ok, _ := v.(bool)
	return ok, nil
}

func (p *Playwright) Hover(_ context.Context, xpath string) error {
	return p.locate(xpath).Hover()
}

func (p *Playwright) Rect(_ context.Context, xpath string) (Rect, error) {
	box, err := p.locate(xpath).BoundingBox()
	if err != nil {
		return Rect{}, err
	}
	if box == nil {
		return Rect{}, fmt.Errorf("%w: %s is not rendered", ErrNoSuchElement, xpath)
	}
	return Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

func (p *Playwright) PressKey(_ context.Context, xpath string, key Key) error {
	if xpath == "" {
		return p.page.Keyboard().Press(string(key))
	}
	return p.locate(xpath).Press(string(key))
}

func (p *Playwright) ElementScreenshot(_ context.Context, xpath string) ([]byte, error) {
	return p.locate(xpath).Screenshot()
}

func (p *Playwright) Screenshot(context.Context) ([]byte, error) {
	return p.page.Screenshot()
}

func (p *Playwright) FullPageScreenshot(context.Context) ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
}

func (p *Playwright) Execute(ctx context.Context, expr string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Evaluate(expr)
}

func (p *Playwright) AlertPresent(context.Context) (bool, error) {
	return p.dialogSeen.Swap(false), nil
}

func (p *Playwright) Close() error {
	var firstErr error
	if err := p.browser.Close(); err != nil {
		firstErr = err
	}
	if err := p.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
