package web

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/logging"
)

// scrollPause lets lazy content settle between full-page captures.
const scrollPause = time.Second

// Selenium drives a browser through a W3C WebDriver server.
type Selenium struct {
	wd selenium.WebDriver
}

// NewSelenium opens a session on the WebDriver server at cfg.RemoteURL.
func NewSelenium(ctx context.Context, cfg config.WebConfig) (*Selenium, error) {
	s, err := NewSeleniumWithCapabilities(ctx, cfg.RemoteURL, browserCapabilities(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		if err := s.SetWindowSize(ctx, cfg.Width, cfg.Height); err != nil {
			logging.Warn(ctx, "Could not size browser window", "error", err)
		}
	}
	return s, nil
}

// NewSeleniumWithCapabilities opens a session with caller-built capabilities.
// Appium sessions are opened this way.
func NewSeleniumWithCapabilities(ctx context.Context, remoteURL string, caps selenium.Capabilities) (*Selenium, error) {
	wd, err := selenium.NewRemote(caps, remoteURL)
	if err != nil {
		return nil, fmt.Errorf("new session at %s: %w", remoteURL, err)
	}
	logging.Info(ctx, "Started WebDriver session", "url", remoteURL, "session", wd.SessionID())
	return &Selenium{wd: wd}, nil
}

func browserCapabilities(cfg config.WebConfig) selenium.Capabilities {
	name := strings.ToLower(cfg.Browser)
	if name == "" || name == "chromium" {
		name = "chrome"
	}
	caps := selenium.Capabilities{"browserName": name}

	switch name {
	case "chrome":
		args := []string{"--ignore-certificate-errors"}
		if cfg.Headless {
			args = append(args, "--headless=new")
		}
		caps.AddChrome(chrome.Capabilities{Args: args})
	case "firefox":
		var args []string
		if cfg.Headless {
			args = append(args, "-headless")
		}
		caps.AddFirefox(firefox.Capabilities{Args: args})
	}
	return caps
}

// WebDriver exposes the underlying session.
func (s *Selenium) WebDriver() selenium.WebDriver { return s.wd }

// SessionID returns the WebDriver session id.
func (s *Selenium) SessionID() string { return s.wd.SessionID() }

func (s *Selenium) element(ctx context.Context, xpath string) (selenium.WebElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	el, err := s.wd.FindElement(selenium.ByXPATH, xpath)
	if err != nil {
		if isNoSuchElement(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, xpath)
		}
		return nil, err
	}
	return el, nil
}

func isNoSuchElement(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such element")
}

func (s *Selenium) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wd.Get(url)
}

func (s *Selenium) CurrentURL(context.Context) (string, error) {
	return s.wd.CurrentURL()
}

func (s *Selenium) PageSource(context.Context) (string, error) {
	return s.wd.PageSource()
}

func (s *Selenium) SetWindowSize(_ context.Context, width, height int) error {
	return s.wd.ResizeWindow("", width, height)
}

func (s *Selenium) Maximize(context.Context) error {
	return s.wd.MaximizeWindow("")
}

func (s *Selenium) Count(ctx context.Context, xpath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	els, err := s.wd.FindElements(selenium.ByXPATH, xpath)
	if err != nil {
		if isNoSuchElement(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(els), nil
}

func (s *Selenium) Click(ctx context.Context, xpath string) error {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return err
	}
	return el.Click()
}

func (s *Selenium) Type(ctx context.Context, xpath, text string) error {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return err
	}
	return el.SendKeys(text)
}

func (s *Selenium) Clear(ctx context.Context, xpath string) error {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return err
	}
	return el.Clear()
}

func (s *Selenium) Text(ctx context.Context, xpath string) (string, error) {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (s *Selenium) Attribute(ctx context.Context, xpath, name string) (string, error) {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return "", err
	}
	return el.GetAttribute(name)
}

func (s *Selenium) Visible(ctx context.Context, xpath string) (bool, error) {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return false, err
	}
	return el.IsDisplayed()
}

func (s *Selenium) Enabled(ctx context.Context, xpath string) (bool, error) {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return false, err
	}
	return el.IsEnabled()
}

func (s *Selenium) Selected(ctx context.Context, xpath string) (bool, error) {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return false, err
	}
	return el.IsSelected()
}

// Rect reads the element rect through WebDriver. Native app contexts have no
// script engine, so the JavaScript rect is only a fallback.
func (s *Selenium) Rect(ctx context.Context, xpath string) (Rect, error) {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return Rect{}, err
	}
	r, err := elementRect(el)
	if err == nil {
		return r, nil
	}
	if js, jsErr := s.viewportRect(ctx, xpath); jsErr == nil {
		return js, nil
	}
	return Rect{}, err
}

func elementRect(el selenium.WebElement) (Rect, error) {
	loc, err := el.Location()
	if err != nil {
		return Rect{}, fmt.Errorf("element location: %w", err)
	}
	size, err := el.Size()
	if err != nil {
		return Rect{}, fmt.Errorf("element size: %w", err)
	}
	return Rect{
		X:      float64(loc.X),
		Y:      float64(loc.Y),
		Width:  float64(size.Width),
		Height: float64(size.Height),
	}, nil
}

// viewportRect scrolls the element into view and measures it in viewport
// coordinates.
func (s *Selenium) viewportRect(ctx context.Context, xpath string) (Rect, error) {
	v, err := s.Execute(ctx, rectExpr(xpath))
	if err != nil {
		return Rect{}, err
	}
	r, ok := rectFrom(v)
	if !ok {
		return Rect{}, fmt.Errorf("%w: %s", ErrNoSuchElement, xpath)
	}
	return r, nil
}

func (s *Selenium) Hover(ctx context.Context, xpath string) error {
	r, err := s.viewportRect(ctx, xpath)
	if err != nil {
		return err
	}
	x, y := r.Center()
	s.wd.StorePointerActions("mouse", selenium.MousePointer,
		selenium.PointerMoveAction(0, selenium.Point{X: int(x), Y: int(y)}, selenium.FromViewport),
	)
	return s.wd.PerformActions()
}

func (s *Selenium) PressKey(ctx context.Context, xpath string, key Key) error {
	k := selenium.TabKey
	if key == KeyEnter {
		k = selenium.EnterKey
	}

	var (
		el  selenium.WebElement
		err error
	)
	if xpath == "" {
		el, err = s.wd.ActiveElement()
	} else {
		el, err = s.element(ctx, xpath)
	}
	if err != nil {
		return err
	}
	return el.SendKeys(k)
}

func (s *Selenium) ElementScreenshot(ctx context.Context, xpath string) ([]byte, error) {
	el, err := s.element(ctx, xpath)
	if err != nil {
		return nil, err
	}
	return el.Screenshot(true)
}

func (s *Selenium) Screenshot(context.Context) ([]byte, error) {
	return s.wd.Screenshot()
}

// FullPageScreenshot scrolls through the page one viewport at a time and
// pastes the captures into a single image.
func (s *Selenium) FullPageScreenshot(ctx context.Context) ([]byte, error) {
	v, err := s.Execute(ctx, pageMetricsExpr)
	if err != nil {
		return nil, fmt.Errorf("page metrics: %w", err)
	}
	m, _ := v.(map[string]any)
	total, viewport := int(number(m["total"])), int(number(m["viewport"]))
	dpr, startY := number(m["dpr"]), int(number(m["y"]))
	if viewport <= 0 {
		return nil, fmt.Errorf("page metrics: viewport height is %d", viewport)
	}
	defer s.Execute(context.WithoutCancel(ctx), fmt.Sprintf("window.scrollTo(0, %d)", startY))

	var frames []frame
	for y := 0; y < total; y += viewport {
		if _, err := s.Execute(ctx, fmt.Sprintf("window.scrollTo(0, %d)", y)); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(scrollPause):
		}

		off, err := s.Execute(ctx, "window.pageYOffset")
		if err != nil {
			return nil, err
		}
		shot, err := s.wd.Screenshot()
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(shot))
		if err != nil {
			return nil, fmt.Errorf("decode capture: %w", err)
		}
		frames = append(frames, frame{img: img, offset: int(number(off))})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, stitch(frames, total, dpr)); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// frame is one viewport capture taken at a vertical scroll offset in CSS
// pixels.
type frame struct {
	img    image.Image
	offset int
}

// stitch pastes frames into an image totalHeight CSS pixels tall. Captures
// are in device pixels, so offsets are scaled by dpr. Later frames win where
// they overlap.
func stitch(frames []frame, totalHeight int, dpr float64) *image.RGBA {
	if dpr <= 0 {
		dpr = 1
	}
	if len(frames) == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	width := frames[0].img.Bounds().Dx()
	height := int(float64(totalHeight) * dpr)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, f := range frames {
		b := f.img.Bounds()
		y := int(float64(f.offset) * dpr)
		draw.Draw(dst, image.Rect(0, y, b.Dx(), y+b.Dy()), f.img, b.Min, draw.Src)
	}
	return dst
}

// Execute runs expr and returns its value.
func (s *Selenium) Execute(ctx context.Context, expr string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.wd.ExecuteScript("return "+expr+";", nil)
}

func (s *Selenium) AlertPresent(context.Context) (bool, error) {
	_, err := s.wd.AlertText()
	return err == nil, nil
}

func (s *Selenium) Close() error {
	return s.wd.Quit()
}
