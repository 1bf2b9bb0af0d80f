package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// Element is a handle to the node an XPath locates. It is resolved again on
// every call, so a handle survives page re-renders.
type Element struct {
	XPath string
	u     *Utils
}

// Click clicks the element.
func (e Element) Click(ctx context.Context) error { return e.u.Click(ctx, e.XPath) }

// Type appends text to the element's value.
func (e Element) Type(ctx context.Context, text string) error {
	return e.u.FillText(ctx, e.XPath, text)
}

// Clear empties the element's value.
func (e Element) Clear(ctx context.Context) error {
	return e.u.act(ctx, e.XPath, func(ctx context.Context) error {
		return e.u.driver.Clear(ctx, e.XPath)
	})
}

// Text returns the element's trimmed visible text.
func (e Element) Text(ctx context.Context) (string, error) {
	var s string
	err := e.u.act(ctx, e.XPath, func(ctx context.Context) error {
		var err error
		s, err = e.u.driver.Text(ctx, e.XPath)
		return err
	})
	return strings.TrimSpace(s), err
}

// Attribute returns the named attribute.
func (e Element) Attribute(ctx context.Context, name string) (string, error) {
	return e.u.AttributeValue(ctx, e.XPath, name)
}

// Visible reports whether the element is displayed.
func (e Element) Visible(ctx context.Context) bool { return e.u.IsVisible(ctx, e.XPath) }

// Screenshot captures the element as PNG.
func (e Element) Screenshot(ctx context.Context) ([]byte, error) {
	return e.u.ElementScreenshot(ctx, e.XPath)
}

func (e Element) String() string { return e.XPath }

// nth returns the XPath of the i-th (0-based) match of xpath.
func nth(xpath string, i int) string {
	return fmt.Sprintf("(%s)[%d]", xpath, i+1)
}

// Element waits for xpath to match and returns a handle to it.
func (u *Utils) Element(ctx context.Context, xpath string) (Element, error) {
	if err := u.find(ctx, xpath); err != nil {
		return Element{}, err
	}
	return Element{XPath: xpath, u: u}, nil
}

// ElementByText returns the first match of xpath whose trimmed text equals
// text.
func (u *Utils) ElementByText(ctx context.Context, xpath, text string) (Element, error) {
	elements, err := u.Elements(ctx, xpath)
	if err != nil {
		return Element{}, err
	}
	want := strings.TrimSpace(text)
	for _, e := range elements {
		got, err := e.Text(ctx)
		if err != nil {
			continue
		}
		if got == want {
			return e, nil
		}
	}
	return Element{}, fmt.Errorf("%w: No Element Found with text content: %s", ErrNoSuchElement, text)
}

// Elements returns a handle per match of xpath.
//
// With no wait it returns the current matches immediately. Given a wait, it
// first waits that long for the first match to be visible and returns an
// empty list if it never is.
func (u *Utils) Elements(ctx context.Context, xpath string, wait ...time.Duration) ([]Element, error) {
	if len(wait) > 0 && !u.WaitAndCheckIsVisible(ctx, xpath, waitOr(DefaultElementWait, wait)) {
		return []Element{}, nil
	}

	n, err := u.count(ctx, xpath)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", xpath, err)
	}
	elements := make([]Element, n)
	for i := range elements {
		elements[i] = Element{XPath: nth(xpath, i), u: u}
	}
	return elements, nil
}

// ElementText returns the trimmed text of the element. Given a wait, it
// returns "" when the element does not become visible in time.
func (u *Utils) ElementText(ctx context.Context, xpath string, wait ...time.Duration) (string, error) {
	if len(wait) > 0 && !u.WaitAndCheckIsVisible(ctx, xpath, waitOr(DefaultElementWait, wait)) {
		return "", nil
	}
	return Element{XPath: xpath, u: u}.Text(ctx)
}

// ElementsText returns the trimmed text of every match of xpath.
func (u *Utils) ElementsText(ctx context.Context, xpath string, wait ...time.Duration) ([]string, error) {
	elements, err := u.Elements(ctx, xpath, wait...)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(elements))
	for _, e := range elements {
		ctx2, cancel := u.opContext(ctx)
		s, err := u.driver.Text(ctx2, e.XPath)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("text of %s: %w", e.XPath, err)
		}
		texts = append(texts, s)
	}
	return trimAll(texts), nil
}

// ElementsCount returns how many nodes xpath matches.
func (u *Utils) ElementsCount(ctx context.Context, xpath string, wait ...time.Duration) (int, error) {
	elements, err := u.Elements(ctx, xpath, wait...)
	if err != nil {
		return 0, err
	}
	return len(elements), nil
}

// WaitAndFindElement waits for the element to be visible (default 5s).
func (u *Utils) WaitAndFindElement(ctx context.Context, xpath string, wait ...time.Duration) (Element, error) {
	if err := u.WaitForElementToBeVisible(ctx, xpath, waitOr(DefaultElementWait, wait)); err != nil {
		return Element{}, err
	}
	return Element{XPath: xpath, u: u}, nil
}

// FindElementByCustomizeXpath fills the v1, v2... placeholders of rawXPath
// and looks the result up.
func (u *Utils) FindElementByCustomizeXpath(ctx context.Context, rawXPath string, values ...string) (Element, error) {
	return u.Element(ctx, CustomizeXpath(rawXPath, values...))
}

// FindElementByMultipleLocators returns the first of xpaths that matches
// right now.
func (u *Utils) FindElementByMultipleLocators(ctx context.Context, xpaths ...string) (Element, error) {
	for _, xpath := range xpaths {
		n, err := u.count(ctx, xpath)
		if err == nil && n > 0 {
			return Element{XPath: xpath, u: u}, nil
		}
		logging.Info(ctx, "No element found for Xpath: "+xpath)
	}
	return Element{}, fmt.Errorf("%w: Element NOT found for any of the provided locators...", ErrNoSuchElement)
}

// count asks the driver once, without waiting.
func (u *Utils) count(ctx context.Context, xpath string) (int, error) {
	ctx, cancel := u.opContext(ctx)
	defer cancel()
	n, err := u.driver.Count(ctx, xpath)
	if errors.Is(err, ErrNoSuchElement) {
		return 0, nil
	}
	return n, err
}
