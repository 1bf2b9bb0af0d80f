package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/the-sdet/sdetkit/internal/common"
	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/files"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// Utils is the step-level API over a Driver. Lookups wait up to the default
// timeout for the element to exist, like an implicit WebDriver wait.
type Utils struct {
	driver   Driver
	timeout  time.Duration
	interval time.Duration
}

// New wraps d with the timeouts from cfg.
func New(d Driver, cfg config.WebConfig) *Utils {
	return &Utils{
		driver:   d,
		timeout:  cfg.DefaultTimeout,
		interval: cfg.PollInterval,
	}
}

// Driver returns the underlying engine.
func (u *Utils) Driver() Driver { return u.driver }

// Close ends the browser session.
func (u *Utils) Close() error {
	return u.driver.Close()
}

// opContext bounds a single driver call by the default timeout.
func (u *Utils) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.timeout)
}

// find waits up to the default timeout for xpath to match.
func (u *Utils) find(ctx context.Context, xpath string) error {
	err := poll(ctx, u.timeout, u.interval, xpath, func(ctx context.Context) (bool, error) {
		n, err := u.driver.Count(ctx, xpath)
		return n > 0, err
	})
	if errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %s", ErrNoSuchElement, xpath)
	}
	return err
}

// act finds xpath and runs fn against it.
func (u *Utils) act(ctx context.Context, xpath string, fn func(context.Context) error) error {
	if err := u.find(ctx, xpath); err != nil {
		return err
	}
	ctx, cancel := u.opContext(ctx)
	defer cancel()
	return fn(ctx)
}

// OpenPage navigates to url.
func (u *Utils) OpenPage(ctx context.Context, url string) error {
	ctx2, cancel := u.opContext(ctx)
	defer cancel()
	if err := u.driver.Navigate(ctx2, url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	logging.Info(ctx, "Opened URL: "+url)
	return nil
}

// MaximizeScreen maximizes the browser window.
func (u *Utils) MaximizeScreen(ctx context.Context) error {
	if err := u.driver.Maximize(ctx); err != nil {
		return fmt.Errorf("maximize window: %w", err)
	}
	logging.Info(ctx, "Maximized the screen...")
	return nil
}

// SetScreenSize resizes the browser window.
func (u *Utils) SetScreenSize(ctx context.Context, width, height int) error {
	if err := u.driver.SetWindowSize(ctx, width, height); err != nil {
		return fmt.Errorf("set window size %dx%d: %w", width, height, err)
	}
	logging.Info(ctx, fmt.Sprintf("Screen size set to: %dx%d", width, height))
	return nil
}

// SetDefaultTimeout changes how long lookups wait for elements.
func (u *Utils) SetDefaultTimeout(ctx context.Context, d time.Duration) {
	u.timeout = d
	if ts, ok := u.driver.(timeoutSetter); ok {
		ts.SetDefaultTimeout(d)
	}
	logging.Info(ctx, fmt.Sprintf("Default timeout set to: %d seconds...", int(d.Seconds())))
}

// DefaultTimeout returns the current lookup timeout.
func (u *Utils) DefaultTimeout() time.Duration { return u.timeout }

// WaitFor blocks for d.
func (u *Utils) WaitFor(ctx context.Context, d time.Duration) error {
	return common.WaitFor(ctx, d)
}

// Click clicks the element at xpath.
func (u *Utils) Click(ctx context.Context, xpath string) error {
	err := u.act(ctx, xpath, func(ctx context.Context) error {
		return u.driver.Click(ctx, xpath)
	})
	if err != nil {
		return fmt.Errorf("click %s: %w", xpath, err)
	}
	logging.Info(ctx, "Clicked on Element with Xpath: "+xpath)
	return nil
}

// FillText types value into the element without clearing it.
func (u *Utils) FillText(ctx context.Context, xpath, value string) error {
	err := u.act(ctx, xpath, func(ctx context.Context) error {
		return u.driver.Type(ctx, xpath, value)
	})
	if err != nil {
		return fmt.Errorf("fill %s: %w", xpath, err)
	}
	return nil
}

// EnterText types text into the element and logs it.
func (u *Utils) EnterText(ctx context.Context, xpath, text string) error {
	if err := u.FillText(ctx, xpath, text); err != nil {
		return err
	}
	logging.Info(ctx, "Entered text: "+text+" into element with Xpath: "+xpath)
	return nil
}

// ClearAndEnterText replaces the element's value with text.
func (u *Utils) ClearAndEnterText(ctx context.Context, xpath, text string) error {
	err := u.act(ctx, xpath, func(ctx context.Context) error {
		if err := u.driver.Clear(ctx, xpath); err != nil {
			return err
		}
		return u.driver.Type(ctx, xpath, text)
	})
	if err != nil {
		return fmt.Errorf("clear and enter %s: %w", xpath, err)
	}
	logging.Info(ctx, "Entered text: "+text+" into element with Xpath: "+xpath)
	return nil
}

// WaitAndClick waits up to d for the element to be clickable, then clicks it.
func (u *Utils) WaitAndClick(ctx context.Context, xpath string, d time.Duration) error {
	if err := u.WaitForElementToBeClickable(ctx, xpath, d); err != nil {
		logging.Error(ctx, "Couldn't find element within specified time period. Xpath: "+xpath, err)
		return err
	}
	return u.Click(ctx, xpath)
}

// JavaScriptClick clicks the element through element.click().
func (u *Utils) JavaScriptClick(ctx context.Context, xpath string) error {
	if err := u.runOnElement(ctx, xpath, "el.click()"); err != nil {
		logging.Error(ctx, "An error occurred: "+err.Error(), err)
		return err
	}
	logging.Info(ctx, "Clicked on Element with Xpath: "+xpath)
	return nil
}

// JavaScriptFillText assigns value to the element's value property.
func (u *Utils) JavaScriptFillText(ctx context.Context, xpath, value string) error {
	if err := u.runOnElement(ctx, xpath, "el.value = "+jsString(value)); err != nil {
		logging.Error(ctx, "An error occurred: "+err.Error(), err)
		return err
	}
	logging.Info(ctx, "Entered Text "+value+" on Element with Xpath: "+xpath)
	return nil
}

// FocusOnElement focuses the element.
func (u *Utils) FocusOnElement(ctx context.Context, xpath string) error {
	return u.runOnElement(ctx, xpath, "el.focus()")
}

// ScrollElementIntoView scrolls the element to the top of the viewport.
func (u *Utils) ScrollElementIntoView(ctx context.Context, xpath string) error {
	return u.runOnElement(ctx, xpath, "el.scrollIntoView(true)")
}

// ScrollByPercent scrolls the window to percentage of the document height.
func (u *Utils) ScrollByPercent(ctx context.Context, percentage float64) error {
	ctx2, cancel := u.opContext(ctx)
	defer cancel()
	expr := fmt.Sprintf("window.scrollTo(0, document.documentElement.scrollHeight * (%g / 100.0))", percentage)
	if _, err := u.driver.Execute(ctx2, expr); err != nil {
		return fmt.Errorf("scroll by %g%%: %w", percentage, err)
	}
	return nil
}

// HoverOverElement moves the pointer over the element.
func (u *Utils) HoverOverElement(ctx context.Context, xpath string) error {
	return u.act(ctx, xpath, func(ctx context.Context) error {
		return u.driver.Hover(ctx, xpath)
	})
}

// PressTab sends Tab to the focused element.
func (u *Utils) PressTab(ctx context.Context) error {
	return u.driver.PressKey(ctx, "", KeyTab)
}

// PressEnter sends Enter to the focused element.
func (u *Utils) PressEnter(ctx context.Context) error {
	return u.driver.PressKey(ctx, "", KeyEnter)
}

// PressTabOnElement sends Tab to the element.
func (u *Utils) PressTabOnElement(ctx context.Context, xpath string) error {
	return u.act(ctx, xpath, func(ctx context.Context) error {
		return u.driver.PressKey(ctx, xpath, KeyTab)
	})
}

// PressEnterOnElement sends Enter to the element.
func (u *Utils) PressEnterOnElement(ctx context.Context, xpath string) error {
	return u.act(ctx, xpath, func(ctx context.Context) error {
		return u.driver.PressKey(ctx, xpath, KeyEnter)
	})
}

// AttributeValue returns the named attribute of the element.
func (u *Utils) AttributeValue(ctx context.Context, xpath, name string) (string, error) {
	var v string
	err := u.act(ctx, xpath, func(ctx context.Context) error {
		var err error
		v, err = u.driver.Attribute(ctx, xpath, name)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("attribute %s of %s: %w", name, xpath, err)
	}
	return v, nil
}

// PageSource returns the current page HTML.
func (u *Utils) PageSource(ctx context.Context) (string, error) {
	ctx, cancel := u.opContext(ctx)
	defer cancel()
	return u.driver.PageSource(ctx)
}

// CurrentURL returns the address of the current page.
func (u *Utils) CurrentURL(ctx context.Context) (string, error) {
	ctx, cancel := u.opContext(ctx)
	defer cancel()
	return u.driver.CurrentURL(ctx)
}

// ScrollToElement moves the pointer to the element, scrolling it into view.
func (u *Utils) ScrollToElement(ctx context.Context, xpath string) bool {
	if err := u.HoverOverElement(ctx, xpath); err != nil {
		logging.Error(ctx, "Exception during scroll to element...", err, "xpath", xpath)
		return false
	}
	return true
}

// ScrollAndClick moves to the element and clicks it.
func (u *Utils) ScrollAndClick(ctx context.Context, xpath string) bool {
	err := u.act(ctx, xpath, func(ctx context.Context) error {
		if err := u.driver.Hover(ctx, xpath); err != nil {
			return err
		}
		return u.driver.Click(ctx, xpath)
	})
	if err != nil {
		logging.Error(ctx, "Exception during scroll and click...", err, "xpath", xpath)
		return false
	}
	return true
}

// runOnElement evaluates body with el bound to the element at xpath.
func (u *Utils) runOnElement(ctx context.Context, xpath, body string) error {
	return u.act(ctx, xpath, func(ctx context.Context) error {
		v, err := u.driver.Execute(ctx, onNode(xpath, body))
		if err != nil {
			return err
		}
		if found, ok := v.(bool); ok && !found {
			return fmt.Errorf("%w: %s", ErrNoSuchElement, xpath)
		}
		return nil
	})
}

// nodeExpr is a JavaScript expression for the first node xpath matches.
func nodeExpr(xpath string) string {
	return "document.evaluate(" + jsString(xpath) +
		", document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue"
}

// onNode wraps body in an expression that yields false when xpath matches
// nothing and true after running body otherwise.
func onNode(xpath, body string) string {
	return "(function(el){ if (!el) { return false; } " + body + "; return true; })(" + nodeExpr(xpath) + ")"
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// Screenshot captures the viewport as PNG.
func (u *Utils) Screenshot(ctx context.Context) ([]byte, error) {
	ctx, cancel := u.opContext(ctx)
	defer cancel()
	b, err := u.driver.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return b, nil
}

// ScreenshotAsBase64 captures the viewport as base64 PNG.
func (u *Utils) ScreenshotAsBase64(ctx context.Context) (string, error) {
	b, err := u.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	return encodeBase64(b), nil
}

// ScreenshotFile captures the viewport into a temp file and returns its path.
func (u *Utils) ScreenshotFile(ctx context.Context) (string, error) {
	b, err := u.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	return files.BytesToTempFile(b, "png")
}

// TakeScreenshot saves the viewport to path.
func (u *Utils) TakeScreenshot(ctx context.Context, path string) error {
	b, err := u.Screenshot(ctx)
	if err != nil {
		return err
	}
	return saveScreenshot(ctx, path, b)
}

// ElementScreenshot captures the element as PNG.
func (u *Utils) ElementScreenshot(ctx context.Context, xpath string) ([]byte, error) {
	var b []byte
	err := u.act(ctx, xpath, func(ctx context.Context) error {
		var err error
		b, err = u.driver.ElementScreenshot(ctx, xpath)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot of %s: %w", xpath, err)
	}
	return b, nil
}

// ElementScreenshotAsBase64 captures the element as base64 PNG.
func (u *Utils) ElementScreenshotAsBase64(ctx context.Context, xpath string) (string, error) {
	b, err := u.ElementScreenshot(ctx, xpath)
	if err != nil {
		return "", err
	}
	return encodeBase64(b), nil
}

// ElementScreenshotFile captures the element into a temp file.
func (u *Utils) ElementScreenshotFile(ctx context.Context, xpath string) (string, error) {
	b, err := u.ElementScreenshot(ctx, xpath)
	if err != nil {
		return "", err
	}
	return files.BytesToTempFile(b, "png")
}

// TakeElementScreenshot saves the element to path.
func (u *Utils) TakeElementScreenshot(ctx context.Context, xpath, path string) error {
	b, err := u.ElementScreenshot(ctx, xpath)
	if err != nil {
		return err
	}
	return saveScreenshot(ctx, path, b)
}

// FullPageScreenshot captures the whole scrollable page as PNG.
func (u *Utils) FullPageScreenshot(ctx context.Context) ([]byte, error) {
	b, err := u.driver.FullPageScreenshot(ctx)
	if err != nil {
		logging.Error(ctx, "Could NOT save Screenshot...", err)
		return nil, fmt.Errorf("full page screenshot: %w", err)
	}
	return b, nil
}

// FullPageScreenshotAsBase64 captures the whole page as base64 PNG.
func (u *Utils) FullPageScreenshotAsBase64(ctx context.Context) (string, error) {
	b, err := u.FullPageScreenshot(ctx)
	if err != nil {
		return "", err
	}
	return encodeBase64(b), nil
}

// FullPageScreenshotFile captures the whole page into a temp file.
func (u *Utils) FullPageScreenshotFile(ctx context.Context) (string, error) {
	b, err := u.FullPageScreenshot(ctx)
	if err != nil {
		return "", err
	}
	return files.BytesToTempFile(b, "png")
}

// TakeFullPageScreenshot saves the whole page to path.
func (u *Utils) TakeFullPageScreenshot(ctx context.Context, path string) error {
	b, err := u.FullPageScreenshot(ctx)
	if err != nil {
		return err
	}
	return saveScreenshot(ctx, path, b)
}

func saveScreenshot(ctx context.Context, path string, b []byte) error {
	if err := files.WriteFile(path, b); err != nil {
		logging.Error(ctx, "Could NOT save Screenshot...", err)
		return err
	}
	logging.Info(ctx, "Screenshot saved to: "+path)
	return nil
}
