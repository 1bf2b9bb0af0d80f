package web_test

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/web"
	"github.com/the-sdet/sdetkit/internal/web/webtest"
)

func newUtils(t *testing.T) (*web.Utils, *webtest.Fake) {
	t.Helper()
	f := webtest.New()
	u := web.New(f, config.WebConfig{
		DefaultTimeout: 100 * time.Millisecond,
		PollInterval:   5 * time.Millisecond,
	})
	return u, f
}

func TestOpenPageAndWindow(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()

	require.NoError(t, u.OpenPage(ctx, "https://example.com/login"))
	url, err := u.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/login", url)

	require.NoError(t, u.SetScreenSize(ctx, 800, 600))
	require.NoError(t, u.MaximizeScreen(ctx))
	w, h, maximized := f.WindowSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.True(t, maximized)

	require.NoError(t, u.Close())
	assert.True(t, f.Closed())
}

func TestClickAndText(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//button", &webtest.Element{Text: "  Submit \n"})

	require.NoError(t, u.Click(ctx, "//button"))
	assert.Equal(t, []string{"click //button"}, f.Calls())

	text, err := u.ElementText(ctx, "//button")
	require.NoError(t, err)
	assert.Equal(t, "Submit", text)
}

func TestClick_Missing(t *testing.T) {
	u, _ := newUtils(t)

	err := u.Click(context.Background(), "//nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, web.ErrNoSuchElement))
}

func TestClick_WaitsForElement(t *testing.T) {
	u, f := newUtils(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.Add("//late", &webtest.Element{})
	}()
	assert.NoError(t, u.Click(context.Background(), "//late"))
}

func TestTextEntry(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//input", &webtest.Element{Value: "old"})

	require.NoError(t, u.FillText(ctx, "//input", "-a"))
	v, err := u.AttributeValue(ctx, "//input", "value")
	require.NoError(t, err)
	assert.Equal(t, "old-a", v)

	require.NoError(t, u.EnterText(ctx, "//input", "-b"))
	v, _ = u.AttributeValue(ctx, "//input", "value")
	assert.Equal(t, "old-a-b", v)

	require.NoError(t, u.ClearAndEnterText(ctx, "//input", "new"))
	v, _ = u.AttributeValue(ctx, "//input", "value")
	assert.Equal(t, "new", v)
}

func TestElements(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//li", &webtest.Element{Text: " one "}, &webtest.Element{Text: "two"}, &webtest.Element{Text: "three"})

	els, err := u.Elements(ctx, "//li")
	require.NoError(t, err)
	require.Len(t, els, 3)
	assert.Equal(t, "(//li)[2]", els[1].XPath)

	texts, err := u.ElementsText(ctx, "//li")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, texts)

	n, err := u.ElementsCount(ctx, "//li", 50*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	e, err := u.ElementByText(ctx, "//li", " two ")
	require.NoError(t, err)
	assert.Equal(t, "(//li)[2]", e.XPath)
	require.NoError(t, e.Click(ctx))

	_, err = u.ElementByText(ctx, "//li", "four")
	assert.True(t, errors.Is(err, web.ErrNoSuchElement))
}

func TestElements_WaitForFirst(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//row", &webtest.Element{Hidden: true})

	els, err := u.Elements(ctx, "//row")
	require.NoError(t, err)
	assert.Len(t, els, 1)

	els, err = u.Elements(ctx, "//row", 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, els)

	text, err := u.ElementText(ctx, "//row", 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestJavaScriptHelpers(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//input", &webtest.Element{})

	require.NoError(t, u.JavaScriptClick(ctx, "//input"))
	require.NoError(t, u.JavaScriptFillText(ctx, "//input", `it's "quoted"`))
	require.NoError(t, u.FocusOnElement(ctx, "//input"))
	require.NoError(t, u.ScrollElementIntoView(ctx, "//input"))
	require.NoError(t, u.ScrollByPercent(ctx, 50))

	scripts := f.Scripts()
	require.Len(t, scripts, 5)
	assert.Contains(t, scripts[0], "el.click()")
	assert.Contains(t, scripts[0], `document.evaluate("//input"`)
	assert.Contains(t, scripts[1], `el.value = "it's \"quoted\""`)
	assert.Contains(t, scripts[2], "el.focus()")
	assert.Contains(t, scripts[3], "el.scrollIntoView(true)")
	assert.Contains(t, scripts[4], "scrollHeight * (50 / 100.0)")
}

func TestJavaScriptClick_NodeVanished(t *testing.T) {
	u, f := newUtils(t)
	f.Add("//a", &webtest.Element{})
	f.ExecuteFunc = func(string) (any, error) { return false, nil }

	err := u.JavaScriptClick(context.Background(), "//a")
	assert.True(t, errors.Is(err, web.ErrNoSuchElement))
}

func TestKeysAndHover(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//input", &webtest.Element{})

	require.NoError(t, u.PressTab(ctx))
	require.NoError(t, u.PressEnter(ctx))
	require.NoError(t, u.PressTabOnElement(ctx, "//input"))
	require.NoError(t, u.PressEnterOnElement(ctx, "//input"))
	require.NoError(t, u.HoverOverElement(ctx, "//input"))

	assert.Equal(t, []string{
		"press Tab",
		"press Enter",
		"press Tab //input",
		"press Enter //input",
		"hover //input",
	}, f.Calls())
}

func TestScrollAndClick(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//a", &webtest.Element{})

	assert.True(t, u.ScrollToElement(ctx, "//a"))
	assert.True(t, u.ScrollAndClick(ctx, "//a"))
	assert.Equal(t, []string{"hover //a", "hover //a", "click //a"}, f.Calls())

	assert.False(t, u.ScrollToElement(ctx, "//missing"))
	assert.False(t, u.ScrollAndClick(ctx, "//missing"))
}

func TestVisibilityWaits(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//shown", &webtest.Element{})
	f.Add("//hidden", &webtest.Element{Hidden: true})
	f.Add("//disabled", &webtest.Element{Disabled: true})

	assert.True(t, u.IsVisible(ctx, "//shown"))
	assert.False(t, u.IsVisible(ctx, "//hidden"))
	assert.False(t, u.IsVisible(ctx, "//missing"))

	d := 30 * time.Millisecond
	assert.True(t, u.WaitAndCheckIsVisible(ctx, "//shown", d))
	assert.False(t, u.WaitAndCheckIsVisible(ctx, "//hidden", d))
	assert.True(t, u.WaitAndCheckIsInvisible(ctx, "//hidden", d))
	assert.True(t, u.WaitAndCheckIsInvisible(ctx, "//missing", d))
	assert.False(t, u.WaitAndCheckIsInvisible(ctx, "//shown", d))
	assert.True(t, u.WaitAndCheckIsClickable(ctx, "//shown", d))
	assert.False(t, u.WaitAndCheckIsClickable(ctx, "//disabled", d))
	assert.True(t, u.WaitAndCheckIsPresent(ctx, "//hidden", d))
	assert.False(t, u.WaitAndCheckIsPresent(ctx, "//missing", d))

	err := u.WaitForElementToBeVisible(ctx, "//hidden", d)
	assert.True(t, errors.Is(err, web.ErrTimeout))
	assert.NoError(t, u.WaitForElementToBeInvisible(ctx, "//hidden", d))
	assert.Error(t, u.WaitForElementToBeClickable(ctx, "//disabled", d))
}

func TestWaitAndCheckIsVisible_BecomesVisible(t *testing.T) {
	u, f := newUtils(t)
	f.Add("//toast", &webtest.Element{Hidden: true})

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.Update("//toast", func(e *webtest.Element) { e.Hidden = false })
	}()
	assert.True(t, u.WaitAndCheckIsVisible(context.Background(), "//toast", time.Second))
}

func TestWaitAndClick(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//ok", &webtest.Element{})
	f.Add("//off", &webtest.Element{Disabled: true})

	require.NoError(t, u.WaitAndClick(ctx, "//ok", 30*time.Millisecond))
	assert.Error(t, u.WaitAndClick(ctx, "//off", 30*time.Millisecond))
	assert.Equal(t, []string{"click //ok"}, f.Calls())
}

func TestContentWaits(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	d := 30 * time.Millisecond
	f.Add("//msg", &webtest.Element{Text: "Order 42 placed", Attrs: map[string]string{"class": "ok"}})
	f.Add("//box", &webtest.Element{Selected: true})
	require.NoError(t, u.OpenPage(ctx, "https://shop.test/orders/42"))

	assert.True(t, u.WaitAndCheckElementHasText(ctx, "//msg", d, "42"))
	assert.False(t, u.WaitAndCheckElementHasText(ctx, "//msg", d, "43"))
	assert.True(t, u.WaitAndCheckURLContains(ctx, "/orders/", d))
	assert.False(t, u.WaitAndCheckURLContains(ctx, "/cart", d))
	assert.True(t, u.WaitAndCheckIsElementSelected(ctx, "//box", d))
	assert.False(t, u.WaitAndCheckIsElementSelected(ctx, "//msg", d))
	assert.True(t, u.WaitAndCheckAttributeHasValue(ctx, "//msg", d, "class", "ok"))
	assert.False(t, u.WaitAndCheckAttributeHasValue(ctx, "//msg", d, "class", "error"))

	assert.False(t, u.WaitAndCheckIsAlertPresent(ctx, d))
	f.SetAlert(true)
	assert.True(t, u.WaitAndCheckIsAlertPresent(ctx, d))
}

func TestWaitAndFindElement(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//panel", &webtest.Element{})

	e, err := u.WaitAndFindElement(ctx, "//panel", 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "//panel", e.XPath)

	_, err = u.WaitAndFindElement(ctx, "//gone", 30*time.Millisecond)
	assert.True(t, errors.Is(err, web.ErrTimeout))
}

func TestFindElementByLocators(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//a[text()='Home']", &webtest.Element{})
	f.Add("//b", &webtest.Element{})

	e, err := u.FindElementByCustomizeXpath(ctx, "//a[text()='v1']", "Home")
	require.NoError(t, err)
	assert.Equal(t, "//a[text()='Home']", e.XPath)

	e, err = u.FindElementByMultipleLocators(ctx, "//x", "//b", "//a[text()='Home']")
	require.NoError(t, err)
	assert.Equal(t, "//b", e.XPath)

	_, err = u.FindElementByMultipleLocators(ctx, "//x", "//y")
	assert.True(t, errors.Is(err, web.ErrNoSuchElement))
}

func TestScreenshots(t *testing.T) {
	u, f := newUtils(t)
	ctx := context.Background()
	f.Add("//logo", &webtest.Element{Shot: []byte("logo")})
	dir := t.TempDir()

	b, err := u.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("viewport"), b)

	s, err := u.ScreenshotAsBase64(ctx)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("viewport")), s)

	s, err = u.ElementScreenshotAsBase64(ctx, "//logo")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("logo")), s)

	s, err = u.FullPageScreenshotAsBase64(ctx)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fullpage")), s)

	path := filepath.Join(dir, "shots", "page.png")
	require.NoError(t, u.TakeScreenshot(ctx, path))
	assertFile(t, path, "viewport")

	path = filepath.Join(dir, "logo.png")
	require.NoError(t, u.TakeElementScreenshot(ctx, "//logo", path))
	assertFile(t, path, "logo")

	path = filepath.Join(dir, "full.png")
	require.NoError(t, u.TakeFullPageScreenshot(ctx, path))
	assertFile(t, path, "fullpage")

	tmp, err := u.ScreenshotFile(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmp) })
	assert.True(t, strings.HasSuffix(tmp, ".png"))
	assertFile(t, tmp, "viewport")

	_, err = u.ElementScreenshot(ctx, "//missing")
	assert.Error(t, err)
}

func TestPageSourceQuery(t *testing.T) {
	u, f := newUtils(t)
	f.SetSource(`<html><body><ul><li> a </li><li>b</li></ul></body></html>`)

	texts, err := u.QueryPage(context.Background(), "//li")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, texts)
}

func TestSetDefaultTimeout(t *testing.T) {
	u, _ := newUtils(t)
	u.SetDefaultTimeout(context.Background(), 2*time.Second)
	assert.Equal(t, 2*time.Second, u.DefaultTimeout())
}

func assertFile(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}
