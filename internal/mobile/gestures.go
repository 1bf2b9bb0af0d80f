package mobile

import (
	"context"
	"fmt"
	"time"

	"github.com/the-sdet/sdetkit/internal/logging"
)

var (
	// scrollSettle is the pause after every Scroll and before AdvanceClick.
	scrollSettle = time.Second
	// visibilityWait bounds each visibility check while scrolling for an element.
	visibilityWait = 2 * time.Second
)

// Swipe drags horizontally from (startX, startY) to (endX, startY) over d.
func (a *Appium) Swipe(ctx context.Context, startX, startY, endX int, d time.Duration) error {
	return a.device.Perform(ctx, Gesture{
		From:     Point{X: startX, Y: startY},
		To:       Point{X: endX, Y: startY},
		Duration: d,
	})
}

// Scroll drags vertically from (startX, startY) to (startX, endY) over d and
// lets the view settle.
func (a *Appium) Scroll(ctx context.Context, startX, startY, endY int, d time.Duration) error {
	err := a.device.Perform(ctx, Gesture{
		From:     Point{X: startX, Y: startY},
		To:       Point{X: startX, Y: endY},
		Duration: d,
	})
	if err != nil {
		return err
	}
	return a.WaitFor(ctx, scrollSettle)
}

// ScrollOrSwipe moves the screen in direction until xpath is visible, at most
// three swipes for Left/Right and four scrolls for Up/Down.
func (a *Appium) ScrollOrSwipe(ctx context.Context, xpath string, direction Direction, d time.Duration) error {
	w, h, err := a.device.WindowSize(ctx)
	if err != nil {
		return err
	}

	var (
		attempts int
		move     func() error
	)
	switch direction {
	case Right:
		attempts = 3
		move = func() error { return a.Swipe(ctx, pct(w, 0.10), h/2, pct(w, 0.90), d) }
	case Left:
		attempts = 3
		move = func() error { return a.Swipe(ctx, pct(w, 0.90), h/2, pct(w, 0.05), d) }
	case Up:
		attempts = 4
		move = func() error { return a.Scroll(ctx, w/2, pct(h, 0.30), pct(h, 0.70), d) }
	case Down:
		attempts = 4
		move = func() error { return a.Scroll(ctx, w/2, pct(h, 0.70), pct(h, 0.30), d) }
	default:
		logging.Warn(ctx, "Invalid Direction...", "direction", direction.String())
		return fmt.Errorf("invalid direction %s", direction)
	}

	for i := 0; i < attempts; i++ {
		if a.IsVisible(ctx, xpath) {
			return nil
		}
		if err := move(); err != nil {
			return err
		}
	}
	return nil
}

// SwipeElementInsideContainer drags slider by the width of container.
func (a *Appium) SwipeElementInsideContainer(ctx context.Context, containerXPath, sliderXPath string, direction SwipeDirection) error {
	container, err := a.elementRect(ctx, containerXPath)
	if err != nil {
		return err
	}
	slider, err := a.elementRect(ctx, sliderXPath)
	if err != nil {
		return err
	}

	startX := int(slider.X + slider.Width/2)
	startY := int(slider.Y + slider.Height/2)
	endX := startX + int(container.Width)
	if direction == SwipeToLeft {
		endX = int(slider.X) - int(container.Width)
	}
	return a.Swipe(ctx, startX, startY, endX, 500*time.Millisecond)
}

// SwipePushNotification pulls the notification shade down from the top edge.
func (a *Appium) SwipePushNotification(ctx context.Context) error {
	w, h, err := a.device.WindowSize(ctx)
	if err != nil {
		return err
	}
	x := pct(w, 0.10)
	return a.device.Perform(ctx, Gesture{
		From:     Point{X: x, Y: pct(h, 0.10)},
		To:       Point{X: x, Y: pct(h, 0.90)},
		Duration: 600 * time.Millisecond,
	})
}

// SwipeLeft swipes across the middle of the screen from 90% to 10% of its width.
func (a *Appium) SwipeLeft(ctx context.Context) error {
	w, h, err := a.device.WindowSize(ctx)
	if err != nil {
		return err
	}
	return a.Swipe(ctx, pct(w, 0.90), h/2, pct(w, 0.10), 500*time.Millisecond)
}

// SwipeRight swipes across the middle of the screen from 10% to 90% of its width.
func (a *Appium) SwipeRight(ctx context.Context) error {
	w, h, err := a.device.WindowSize(ctx)
	if err != nil {
		return err
	}
	return a.Swipe(ctx, pct(w, 0.10), h/2, pct(w, 0.90), 500*time.Millisecond)
}

// SwipeElement swipes along the vertical center of an element, from
// startPercent to endPercent of its width.
func (a *Appium) SwipeElement(ctx context.Context, xpath string, startPercent, endPercent float64, d time.Duration) error {
	r, err := a.elementRect(ctx, xpath)
	if err != nil {
		return err
	}
	startX := int(r.X + r.Width*startPercent/100)
	endX := int(r.X + r.Width*endPercent/100)
	centerY := int(r.Y + r.Height/2)
	return a.Swipe(ctx, startX, centerY, endX, d)
}

// SwipeRightOn swipes an element from 10% to 90% of its width.
func (a *Appium) SwipeRightOn(ctx context.Context, xpath string) error {
	return a.SwipeElement(ctx, xpath, 10, 90, 500*time.Millisecond)
}

// SwipeLeftOn swipes an element from 90% to 10% of its width.
func (a *Appium) SwipeLeftOn(ctx context.Context, xpath string) error {
	return a.SwipeElement(ctx, xpath, 90, 10, 500*time.Millisecond)
}

// ScrollByPercent scrolls the content up by percentage of the screen height.
func (a *Appium) ScrollByPercent(ctx context.Context, percentage int) error {
	w, h, err := a.device.WindowSize(ctx)
	if err != nil {
		return err
	}
	p := float64(percentage) / 100
	return a.Scroll(ctx, w/2, int(float64(h)*(1-p)), int(float64(h)*p), 500*time.Millisecond)
}

// SwipeDownAndRefreshPage pulls from the middle of the screen to 85% of its
// height.
func (a *Appium) SwipeDownAndRefreshPage(ctx context.Context) error {
	w, h, err := a.device.WindowSize(ctx)
	if err != nil {
		return err
	}
	return a.Scroll(ctx, w/2, h/2, pct(h, 0.85), 800*time.Millisecond)
}

type scrollOptions struct {
	percent  int
	attempts int
}

// ScrollOption tunes CheckIsElementPresentAllowScrolling.
type ScrollOption func(*scrollOptions)

// WithScrollPercent sets how far each scroll moves, in percent of the screen.
func WithScrollPercent(p int) ScrollOption {
	return func(o *scrollOptions) { o.percent = p }
}

// WithMaxScrolls sets how many scrolls are tried.
func WithMaxScrolls(n int) ScrollOption {
	return func(o *scrollOptions) { o.attempts = n }
}

// CheckIsElementPresentAllowScrolling scrolls until xpath becomes visible.
// By default it tries five 10% scrolls.
func (a *Appium) CheckIsElementPresentAllowScrolling(ctx context.Context, xpath string, opts ...ScrollOption) bool {
	o := scrollOptions{percent: 10, attempts: 5}
	for _, opt := range opts {
		opt(&o)
	}

	for i := 0; i < o.attempts; i++ {
		if a.WaitAndCheckIsVisible(ctx, xpath, visibilityWait) {
			return true
		}
		if err := a.ScrollByPercent(ctx, o.percent); err != nil {
			logging.Error(ctx, "Scroll failed", err, "xpath", xpath)
			return false
		}
		if a.WaitAndCheckIsVisible(ctx, xpath, visibilityWait) {
			return true
		}
	}
	return false
}

// ScrollAndClick scrolls to xpath and clicks it. It reports whether the click
// happened.
func (a *Appium) ScrollAndClick(ctx context.Context, xpath string, opts ...ScrollOption) bool {
	if !a.CheckIsElementPresentAllowScrolling(ctx, xpath, opts...) {
		return false
	}
	if err := a.Click(ctx, xpath); err != nil {
		logging.Error(ctx, "Exception during scroll and click...", err, "xpath", xpath)
		return false
	}
	return true
}

func pct(n int, f float64) int {
	return int(float64(n) * f)
}
