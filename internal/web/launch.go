package web

import (
	"context"
	"fmt"
	"strings"

	"github.com/the-sdet/sdetkit/internal/config"
)

// Engine names accepted by Launch.
const (
	EngineChromedp   = "chromedp"
	EnginePlaywright = "playwright"
	EngineSelenium   = "selenium"
)

// Launch starts the engine cfg.Engine names and wraps it in Utils.
func Launch(ctx context.Context, cfg config.WebConfig) (*Utils, error) {
	var (
		d   Driver
		err error
	)
	switch strings.ToLower(cfg.Engine) {
	case "", EngineChromedp:
		d, err = NewChromedp(ctx, cfg)
	case EnginePlaywright:
		d, err = NewPlaywright(ctx, cfg)
	case EngineSelenium:
		d, err = NewSelenium(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown web engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, err
	}
	return New(d, cfg), nil
}
