package cucumber

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/the-sdet/sdetkit/internal/logging"
)

const (
	colorSuccess = "#06980e"
	colorFailure = "red"
	colorWarning = "#ff8800"
	colorSkip    = "#d4d170"
	colorAbort   = "#5c5c5c"
)

// Shooter takes a PNG screenshot. web.Utils and mobile.Appium satisfy it.
type Shooter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

func styled(color, message string) string {
	return fmt.Sprintf("<span style='color: %s;'>%s</span>", color, message)
}

func record(ctx context.Context, body, mediaType, name string) error {
	r, err := reportFrom(ctx)
	if err != nil {
		return err
	}
	r.add(godog.Attachment{Body: []byte(body), MediaType: mediaType, FileName: name})
	return nil
}

func logStyled(ctx context.Context, color, message string) error {
	if err := record(ctx, styled(color, message), mediaHTML, ""); err != nil {
		return err
	}
	logging.Info(ctx, message)
	return nil
}

// LogToReport writes text to the scenario report and the log.
func LogToReport(ctx context.Context, text string) error {
	if err := record(ctx, text, mediaText, ""); err != nil {
		return err
	}
	logging.Info(ctx, text)
	return nil
}

// LogSuccessToReport writes message in green.
func LogSuccessToReport(ctx context.Context, message string) error {
	return logStyled(ctx, colorSuccess, message)
}

// LogFailureToReport writes message in red.
func LogFailureToReport(ctx context.Context, message string) error {
	return logStyled(ctx, colorFailure, message)
}

// LogWarningToReport writes message in orange.
func LogWarningToReport(ctx context.Context, message string) error {
	return logStyled(ctx, colorWarning, message)
}

// LogSkipToReport writes message in yellow.
func LogSkipToReport(ctx context.Context, message string) error {
	return logStyled(ctx, colorSkip, message)
}

// LogAbortToReport writes message in grey.
func LogAbortToReport(ctx context.Context, message string) error {
	return logStyled(ctx, colorAbort, message)
}

// AttachScreenshot attaches a PNG taken by s. An empty name becomes
// "Attached Image".
func AttachScreenshot(ctx context.Context, s Shooter, name ...string) error {
	if _, err := reportFrom(ctx); err != nil {
		return err
	}
	png, err := s.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("attach screenshot: %w", err)
	}

	n := defaultImageName
	if len(name) > 0 && name[0] != "" {
		n = name[0]
	}
	return record(ctx, string(png), mediaPNG, n)
}

// AttachBase64Screenshot embeds a screenshot taken by s inline as an HTML img.
func AttachBase64Screenshot(ctx context.Context, s Shooter) error {
	if _, err := reportFrom(ctx); err != nil {
		return err
	}
	png, err := s.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("attach screenshot: %w", err)
	}
	img := "<img src=data:image/png;base64," + base64.StdEncoding.EncodeToString(png) + ">"
	return record(ctx, img, mediaHTML, "")
}
