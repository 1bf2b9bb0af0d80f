package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/the-sdet/sdetkit/internal/api"
)

// Device calls the Appium endpoints that plain WebDriver has no command for.
type Device struct {
	client  *api.Client
	base    string
	session string
}

// NewDevice talks to session on the Appium server at appiumURL.
func NewDevice(client *api.Client, appiumURL, session string) *Device {
	return &Device{
		client:  client,
		base:    strings.TrimRight(appiumURL, "/"),
		session: session,
	}
}

// Point is a viewport coordinate in device-independent pixels.
type Point struct {
	X, Y int
}

// Gesture is one touch: press at From, move to To over Duration, release.
// A zero Duration with From == To is a tap.
type Gesture struct {
	From, To Point
	Duration time.Duration
}

func (d *Device) url(path string) string {
	return d.base + "/session/" + d.session + path
}

// call sends a W3C command and decodes its "value" into out.
func (d *Device) call(ctx context.Context, method, path string, payload, out any) error {
	req := api.Request{Method: method, Target: d.url(path), ContentType: api.ContentJSON}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		req.Body = b
	}

	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, resp.String())
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := json.Unmarshal(envelope.Value, out); err != nil {
		return fmt.Errorf("decode %s value: %w", path, err)
	}
	return nil
}

// WindowSize returns the screen width and height.
func (d *Device) WindowSize(ctx context.Context) (width, height int, err error) {
	var rect struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := d.call(ctx, http.MethodGet, "/window/rect", nil, &rect); err != nil {
		return 0, 0, fmt.Errorf("window size: %w", err)
	}
	return rect.Width, rect.Height, nil
}

// Perform plays g with a single touch pointer.
func (d *Device) Perform(ctx context.Context, g Gesture) error {
	steps := []map[string]any{
		{"type": "pointerMove", "duration": 0, "origin": "viewport", "x": g.From.X, "y": g.From.Y},
		{"type": "pointerDown", "button": 0},
	}
	if g.Duration > 0 || g.From != g.To {
		steps = append(steps, map[string]any{
			"type": "pointerMove", "duration": g.Duration.Milliseconds(), "origin": "viewport", "x": g.To.X, "y": g.To.Y,
		})
	}
	steps = append(steps, map[string]any{"type": "pointerUp", "button": 0})

	payload := map[string]any{
		"actions": []map[string]any{{
			"type":       "pointer",
			"id":         "finger",
			"parameters": map[string]any{"pointerType": "touch"},
			"actions":    steps,
		}},
	}
	if err := d.call(ctx, http.MethodPost, "/actions", payload, nil); err != nil {
		return fmt.Errorf("perform gesture: %w", err)
	}
	return nil
}

// IsKeyboardShown reports whether the soft keyboard is up.
func (d *Device) IsKeyboardShown(ctx context.Context) (bool, error) {
	var shown bool
	if err := d.call(ctx, http.MethodGet, "/appium/device/is_keyboard_shown", nil, &shown); err != nil {
		return false, err
	}
	return shown, nil
}

// HideKeyboard dismisses the soft keyboard.
func (d *Device) HideKeyboard(ctx context.Context) error {
	return d.call(ctx, http.MethodPost, "/appium/device/hide_keyboard", map[string]any{}, nil)
}

// PressKeyCode sends an Android key event.
func (d *Device) PressKeyCode(ctx context.Context, key AndroidKey) error {
	return d.call(ctx, http.MethodPost, "/appium/device/press_keycode", map[string]any{"keycode": int(key)}, nil)
}
