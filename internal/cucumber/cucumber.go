// Package cucumber binds godog scenarios to a context and writes styled
// messages and screenshots into the scenario report.
package cucumber

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cucumber/godog"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// ErrNoScenario is returned when no scenario is bound to the context.
var ErrNoScenario = errors.New("set scenario first")

const (
	mediaText = "text/plain"
	mediaHTML = "text/html"
	mediaPNG  = "image/png"

	defaultImageName = "Attached Image"
)

type reportKey struct{}

// report collects the attachments of one scenario until the next flush.
type report struct {
	scenario *godog.Scenario

	mu      sync.Mutex
	pending []godog.Attachment
	all     []godog.Attachment
}

func (r *report) add(a godog.Attachment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, a)
	r.all = append(r.all, a)
}

func (r *report) drain() []godog.Attachment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.pending
	r.pending = nil
	return out
}

// WithScenario binds sc to ctx. Log lines written with the returned context
// carry the scenario name.
func WithScenario(ctx context.Context, sc *godog.Scenario) context.Context {
	ctx = logging.ContextWithScenario(ctx, sc.Name)
	return context.WithValue(ctx, reportKey{}, &report{scenario: sc})
}

func reportFrom(ctx context.Context) (*report, error) {
	r, ok := ctx.Value(reportKey{}).(*report)
	if !ok {
		return nil, ErrNoScenario
	}
	return r, nil
}

// CurrentScenario returns the scenario bound to ctx.
func CurrentScenario(ctx context.Context) (*godog.Scenario, error) {
	r, err := reportFrom(ctx)
	if err != nil {
		return nil, err
	}
	return r.scenario, nil
}

// Flush moves the attachments recorded since the last flush onto ctx with
// godog.Attach.
func Flush(ctx context.Context) context.Context {
	r, err := reportFrom(ctx)
	if err != nil {
		return ctx
	}
	if pending := r.drain(); len(pending) > 0 {
		ctx = godog.Attach(ctx, pending...)
	}
	return ctx
}

// Attachments returns everything recorded for the scenario bound to ctx.
func Attachments(ctx context.Context) []godog.Attachment {
	r, err := reportFrom(ctx)
	if err != nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]godog.Attachment(nil), r.all...)
}

// RegisterHooks binds every scenario before it runs and flushes its report
// after each step and at the end of the scenario.
func RegisterHooks(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return WithScenario(ctx, s), nil
	})
	sc.StepContext().After(func(ctx context.Context, _ *godog.Step, _ godog.StepResultStatus, err error) (context.Context, error) {
		return Flush(ctx), err
	})
	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		ctx = Flush(ctx)
		logging.Debug(ctx, "Scenario finished", "attachments", len(Attachments(ctx)), "failed", err != nil)
		return ctx, err
	})
}

// FeatureName derives the feature name from the scenario URI. With
// withPackage set the parent directory is prefixed, as "pkg - feature".
func FeatureName(sc *godog.Scenario, withPackage bool) string {
	uri := sc.Uri

	var feature, pkg string
	if scheme, rest, ok := strings.Cut(uri, ":"); ok && scheme != "file" {
		// classpath:pkg/name.feature
		parts := strings.Split(rest, "/")
		pkg = parts[0]
		if len(parts) > 1 {
			feature = parts[1]
		}
	} else {
		uri = strings.TrimPrefix(strings.TrimPrefix(uri, "file:"), "//")
		parts := strings.Split(uri, "/")
		feature = parts[len(parts)-1]
		if len(parts) > 1 {
			pkg = parts[len(parts)-2]
		}
	}
	feature, _, _ = strings.Cut(feature, ".")

	ctx := context.Background()
	logging.Info(ctx, "Feature: "+feature)
	logging.Info(ctx, "Package: "+pkg)
	if withPackage {
		return pkg + " - " + feature
	}
	return feature
}

// Tags returns the scenario tags without their leading "@".
func Tags(sc *godog.Scenario) []string {
	tags := make([]string, 0, len(sc.Tags))
	for _, t := range sc.Tags {
		tags = append(tags, strings.TrimPrefix(t.Name, "@"))
	}
	return tags
}
