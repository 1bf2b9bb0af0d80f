// Package mobile drives native and hybrid apps through an Appium server.
//
// Appium embeds web.Utils over a WebDriver session, so every element
// helper works on mobile too, and adds touch gestures and Android device
// keys on top.
package mobile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tebeka/selenium"

	"github.com/the-sdet/sdetkit/internal/api"
	"github.com/the-sdet/sdetkit/internal/config"
	"github.com/the-sdet/sdetkit/internal/logging"
	"github.com/the-sdet/sdetkit/internal/web"
)

// Platform is the mobile operating system under test.
type Platform string

const (
	Android Platform = "android"
	IOS     Platform = "ios"
)

// Direction is where ScrollOrSwipe moves the content.
type Direction int

const (
	Down Direction = iota
	Up
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "DOWN"
	case Up:
		return "UP"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// SwipeDirection is the direction a slider is dragged.
type SwipeDirection int

const (
	SwipeToLeft SwipeDirection = iota
	SwipeToRight
)

// AndroidKey is an Android KeyEvent key code.
type AndroidKey int

const (
	KeyHome       AndroidKey = 3
	KeyBack       AndroidKey = 4
	KeyVolumeUp   AndroidKey = 24
	KeyVolumeDown AndroidKey = 25
	KeyPower      AndroidKey = 26
	KeyTab        AndroidKey = 61
	KeySpace      AndroidKey = 62
	KeyEnter      AndroidKey = 66
	KeyDel        AndroidKey = 67
	KeyMenu       AndroidKey = 82
	KeySearch     AndroidKey = 84
	KeyAppSwitch  AndroidKey = 187
)

// Appium is web.Utils plus touch gestures.
type Appium struct {
	*web.Utils
	device   *Device
	platform Platform
}

// NewWithDriver assembles an Appium from an existing session.
func NewWithDriver(u *web.Utils, device *Device, platform Platform) *Appium {
	return &Appium{Utils: u, device: device, platform: platform}
}

// Start opens an Appium session described by cfg. Element lookups use the
// timeouts of webCfg.
func Start(ctx context.Context, cfg config.MobileConfig, webCfg config.WebConfig) (*Appium, error) {
	platform := Platform(strings.ToLower(cfg.Platform))

	s, err := web.NewSeleniumWithCapabilities(ctx, cfg.AppiumURL, capabilities(cfg, platform))
	if err != nil {
		return nil, fmt.Errorf("start appium session: %w", err)
	}

	client := api.NewClient(config.APIConfig{
		Timeout:     webCfg.DefaultTimeout + time.Minute,
		InsecureTLS: true,
	})
	device := NewDevice(client, cfg.AppiumURL, s.SessionID())
	return NewWithDriver(web.New(s, webCfg), device, platform), nil
}

func capabilities(cfg config.MobileConfig, platform Platform) selenium.Capabilities {
	caps := selenium.Capabilities{}
	switch platform {
	case IOS:
		caps["platformName"] = "iOS"
		caps["appium:automationName"] = "XCUITest"
	default:
		caps["platformName"] = "Android"
		caps["appium:automationName"] = "UiAutomator2"
	}
	if cfg.DeviceName != "" {
		caps["appium:deviceName"] = cfg.DeviceName
	}
	if cfg.App != "" {
		caps["appium:app"] = cfg.App
	}
	for k, v := range cfg.ExtraCapabilities() {
		if !strings.Contains(k, ":") && k != "platformName" && k != "browserName" {
			k = "appium:" + k
		}
		caps[k] = v
	}
	return caps
}

// Device returns the Appium extension client.
func (a *Appium) Device() *Device { return a.device }

// Platform returns the platform of the session.
func (a *Appium) Platform() Platform { return a.platform }

// AdvanceClickAt taps the screen at x, y.
func (a *Appium) AdvanceClickAt(ctx context.Context, x, y int) error {
	p := Point{X: x, Y: y}
	return a.device.Perform(ctx, Gesture{From: p, To: p})
}

// AdvanceClick lets the view settle, then taps the center of the element.
func (a *Appium) AdvanceClick(ctx context.Context, xpath string) error {
	if err := a.WaitFor(ctx, scrollSettle); err != nil {
		return err
	}
	r, err := a.elementRect(ctx, xpath)
	if err != nil {
		return err
	}
	x, y := r.Center()
	return a.AdvanceClickAt(ctx, int(x), int(y))
}

func (a *Appium) elementRect(ctx context.Context, xpath string) (web.Rect, error) {
	if _, err := a.Element(ctx, xpath); err != nil {
		return web.Rect{}, err
	}
	r, err := a.Driver().Rect(ctx, xpath)
	if err != nil {
		return web.Rect{}, fmt.Errorf("rect of %s: %w", xpath, err)
	}
	return r, nil
}

// JavaScriptClick taps the element; native views have no JavaScript.
func (a *Appium) JavaScriptClick(ctx context.Context, xpath string) error {
	return a.AdvanceClick(ctx, xpath)
}

// JavaScriptFillText types value into the element.
func (a *Appium) JavaScriptFillText(ctx context.Context, xpath, value string) error {
	return a.FillText(ctx, xpath, value)
}

// HideKeyboard hides the soft keyboard if it is shown. Android only.
func (a *Appium) HideKeyboard(ctx context.Context) error {
	logging.Info(ctx, "This method is only applicable for Android...")
	if a.platform != Android {
		return nil
	}
	shown, err := a.device.IsKeyboardShown(ctx)
	if err != nil || !shown {
		return err
	}
	return a.device.HideKeyboard(ctx)
}

// PressBackKey presses the Android back key.
func (a *Appium) PressBackKey(ctx context.Context) error {
	return a.PressKey(ctx, KeyBack)
}

// PressKey presses an Android key. Android only.
func (a *Appium) PressKey(ctx context.Context, key AndroidKey) error {
	logging.Info(ctx, "This method is only applicable for Android...")
	if a.platform != Android {
		return nil
	}
	return a.device.PressKeyCode(ctx, key)
}
