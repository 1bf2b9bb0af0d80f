package web

import (
	"context"
	"strings"
	"time"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// condition is a check polled by the Wait* methods.
type condition func(ctx context.Context) (bool, error)

func (u *Utils) visible(xpath string) condition {
	return func(ctx context.Context) (bool, error) {
		n, err := u.driver.Count(ctx, xpath)
		if err != nil || n == 0 {
			return false, err
		}
		return u.driver.Visible(ctx, xpath)
	}
}

func (u *Utils) invisible(xpath string) condition {
	return func(ctx context.Context) (bool, error) {
		ok, err := u.visible(xpath)(ctx)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

func (u *Utils) clickable(xpath string) condition {
	return func(ctx context.Context) (bool, error) {
		ok, err := u.visible(xpath)(ctx)
		if err != nil || !ok {
			return false, err
		}
		return u.driver.Enabled(ctx, xpath)
	}
}

func (u *Utils) present(xpath string) condition {
	return func(ctx context.Context) (bool, error) {
		n, err := u.driver.Count(ctx, xpath)
		return n > 0, err
	}
}

func (u *Utils) wait(ctx context.Context, d time.Duration, what string, cond condition) error {
	return poll(ctx, d, u.interval, what, cond)
}

// IsVisible reports whether xpath currently matches a displayed element.
func (u *Utils) IsVisible(ctx context.Context, xpath string) bool {
	ctx, cancel := u.opContext(ctx)
	defer cancel()
	ok, err := u.visible(xpath)(ctx)
	return err == nil && ok
}

// WaitAndCheckIsVisible waits up to d for the element to be displayed.
func (u *Utils) WaitAndCheckIsVisible(ctx context.Context, xpath string, d time.Duration) bool {
	if err := u.wait(ctx, d, "visible "+xpath, u.visible(xpath)); err != nil {
		logging.Info(ctx, "Element is NOT Visible...", "xpath", xpath)
		return false
	}
	logging.Info(ctx, "Element is Visible: "+xpath)
	return true
}

// WaitAndCheckIsClickable waits up to d for the element to be displayed and
// enabled.
func (u *Utils) WaitAndCheckIsClickable(ctx context.Context, xpath string, d time.Duration) bool {
	if err := u.wait(ctx, d, "clickable "+xpath, u.clickable(xpath)); err != nil {
		logging.Info(ctx, "Element is NOT Clickable...", "xpath", xpath)
		return false
	}
	logging.Info(ctx, "Element is Clickable: "+xpath)
	return true
}

// WaitAndCheckIsInvisible waits up to d for the element to be hidden or gone.
func (u *Utils) WaitAndCheckIsInvisible(ctx context.Context, xpath string, d time.Duration) bool {
	if err := u.wait(ctx, d, "invisible "+xpath, u.invisible(xpath)); err != nil {
		logging.Info(ctx, "Element is visible...", "xpath", xpath)
		return false
	}
	logging.Info(ctx, "Element is Invisible: "+xpath)
	return true
}

// WaitForElementToBeVisible waits up to d for the element to be displayed.
func (u *Utils) WaitForElementToBeVisible(ctx context.Context, xpath string, d time.Duration) error {
	return u.wait(ctx, d, "visible "+xpath, u.visible(xpath))
}

// WaitForElementToBeInvisible waits up to d for the element to be hidden or gone.
func (u *Utils) WaitForElementToBeInvisible(ctx context.Context, xpath string, d time.Duration) error {
	return u.wait(ctx, d, "invisible "+xpath, u.invisible(xpath))
}

// WaitForElementToBeClickable waits up to d for the element to be displayed
// and enabled.
func (u *Utils) WaitForElementToBeClickable(ctx context.Context, xpath string, d time.Duration) error {
	return u.wait(ctx, d, "clickable "+xpath, u.clickable(xpath))
}

// WaitAndCheckElementHasText waits up to d for the element text to contain
// expected.
func (u *Utils) WaitAndCheckElementHasText(ctx context.Context, xpath string, d time.Duration, expected string) bool {
	err := u.wait(ctx, d, "text of "+xpath, func(ctx context.Context) (bool, error) {
		ok, err := u.present(xpath)(ctx)
		if err != nil || !ok {
			return false, err
		}
		text, err := u.driver.Text(ctx, xpath)
		return strings.Contains(text, expected), err
	})
	if err != nil {
		logging.Error(ctx, "TimeoutException: Element did not have the expected text within the specified time.", err)
		return false
	}
	return true
}

// WaitAndCheckURLContains waits up to d for the current URL to contain
// expected.
func (u *Utils) WaitAndCheckURLContains(ctx context.Context, expected string, d time.Duration) bool {
	err := u.wait(ctx, d, "url contains "+expected, func(ctx context.Context) (bool, error) {
		url, err := u.driver.CurrentURL(ctx)
		return strings.Contains(url, expected), err
	})
	if err != nil {
		logging.Error(ctx, "TimeoutException: URL did not contain the expected value within the specified time.", err)
		return false
	}
	return true
}

// WaitAndCheckIsAlertPresent waits up to d for a JavaScript dialog.
func (u *Utils) WaitAndCheckIsAlertPresent(ctx context.Context, d time.Duration) bool {
	err := u.wait(ctx, d, "alert", u.driver.AlertPresent)
	if err != nil {
		logging.Error(ctx, "TimeoutException: Alert did not appear within the specified time.", err)
		return false
	}
	return true
}

// WaitAndCheckIsElementSelected waits up to d for a checkbox, radio or option
// to be selected.
func (u *Utils) WaitAndCheckIsElementSelected(ctx context.Context, xpath string, d time.Duration) bool {
	err := u.wait(ctx, d, "selected "+xpath, func(ctx context.Context) (bool, error) {
		ok, err := u.present(xpath)(ctx)
		if err != nil || !ok {
			return false, err
		}
		return u.driver.Selected(ctx, xpath)
	})
	if err != nil {
		logging.Error(ctx, "TimeoutException: Element was not selected within the specified time.", err)
		return false
	}
	return true
}

// WaitAndCheckAttributeHasValue waits up to d for the named attribute to
// equal expected.
func (u *Utils) WaitAndCheckAttributeHasValue(ctx context.Context, xpath string, d time.Duration, name, expected string) bool {
	err := u.wait(ctx, d, "attribute "+name+" of "+xpath, func(ctx context.Context) (bool, error) {
		ok, err := u.present(xpath)(ctx)
		if err != nil || !ok {
			return false, err
		}
		v, err := u.driver.Attribute(ctx, xpath, name)
		return v == expected, err
	})
	if err != nil {
		logging.Error(ctx, "TimeoutException: Element attribute did not have the expected value within the specified time.", err)
		return false
	}
	return true
}

// WaitAndCheckIsPresent waits up to d for xpath to match anything, visible
// or not.
func (u *Utils) WaitAndCheckIsPresent(ctx context.Context, xpath string, d time.Duration) bool {
	if err := u.wait(ctx, d, "present "+xpath, u.present(xpath)); err != nil {
		logging.Error(ctx, "TimeoutException: Element was not present within the specified time.", err)
		return false
	}
	return true
}
