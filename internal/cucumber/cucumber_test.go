package cucumber

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shooter struct {
	png []byte
	err error
}

func (s shooter) Screenshot(context.Context) ([]byte, error) { return s.png, s.err }

func TestCurrentScenario(t *testing.T) {
	_, err := CurrentScenario(context.Background())
	assert.ErrorIs(t, err, ErrNoScenario)

	sc := &godog.Scenario{Name: "login"}
	ctx := WithScenario(context.Background(), sc)
	got, err := CurrentScenario(ctx)
	require.NoError(t, err)
	assert.Same(t, sc, got)
}

func TestLogToReport(t *testing.T) {
	ctx := WithScenario(context.Background(), &godog.Scenario{Name: "styled"})

	require.NoError(t, LogToReport(ctx, "plain"))
	require.NoError(t, LogSuccessToReport(ctx, "ok"))
	require.NoError(t, LogFailureToReport(ctx, "bad"))
	require.NoError(t, LogWarningToReport(ctx, "careful"))
	require.NoError(t, LogSkipToReport(ctx, "later"))
	require.NoError(t, LogAbortToReport(ctx, "stop"))

	var bodies []string
	for _, a := range Attachments(ctx) {
		bodies = append(bodies, string(a.Body))
	}
	assert.Equal(t, []string{
		"plain",
		"<span style='color: #06980e;'>ok</span>",
		"<span style='color: red;'>bad</span>",
		"<span style='color: #ff8800;'>careful</span>",
		"<span style='color: #d4d170;'>later</span>",
		"<span style='color: #5c5c5c;'>stop</span>",
	}, bodies)
}

func TestLogToReport_Unbound(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, LogToReport(ctx, "x"), ErrNoScenario)
	assert.ErrorIs(t, LogSuccessToReport(ctx, "x"), ErrNoScenario)
	assert.ErrorIs(t, AttachScreenshot(ctx, shooter{}), ErrNoScenario)
	assert.Nil(t, Attachments(ctx))
}

func TestAttachScreenshot(t *testing.T) {
	ctx := WithScenario(context.Background(), &godog.Scenario{})
	png := []byte{0x89, 'P', 'N', 'G'}

	require.NoError(t, AttachScreenshot(ctx, shooter{png: png}))
	require.NoError(t, AttachScreenshot(ctx, shooter{png: png}, "checkout"))
	require.NoError(t, AttachBase64Screenshot(ctx, shooter{png: png}))

	got := Attachments(ctx)
	require.Len(t, got, 3)
	assert.Equal(t, "Attached Image", got[0].FileName)
	assert.Equal(t, "image/png", got[0].MediaType)
	assert.Equal(t, png, got[0].Body)
	assert.Equal(t, "checkout", got[1].FileName)
	assert.Equal(t, "<img src=data:image/png;base64,"+base64.StdEncoding.EncodeToString(png)+">", string(got[2].Body))
	assert.Equal(t, "text/html", got[2].MediaType)

	err := AttachScreenshot(ctx, shooter{err: errors.New("no session")})
	assert.ErrorContains(t, err, "no session")
}

func TestFlush(t *testing.T) {
	ctx := WithScenario(context.Background(), &godog.Scenario{})
	require.NoError(t, LogToReport(ctx, "one"))

	r, err := reportFrom(ctx)
	require.NoError(t, err)
	Flush(ctx)
	assert.Empty(t, r.drain())
	assert.Len(t, Attachments(ctx), 1)

	assert.Equal(t, context.Background(), Flush(context.Background()))
}

func TestFeatureName(t *testing.T) {
	tests := []struct {
		uri         string
		withPackage bool
		want        string
	}{
		{"features/auth/login.feature", false, "login"},
		{"features/auth/login.feature", true, "auth - login"},
		{"file:///home/ci/features/cart/checkout.feature", true, "cart - checkout"},
		{"classpath:payments/refund.feature", true, "payments - refund"},
		{"classpath:payments/refund.feature", false, "refund"},
		{"smoke.feature", true, " - smoke"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.uri, tt.withPackage), func(t *testing.T) {
			assert.Equal(t, tt.want, FeatureName(&godog.Scenario{Uri: tt.uri}, tt.withPackage))
		})
	}
}

func TestTags(t *testing.T) {
	sc := &godog.Scenario{Tags: []*messages.PickleTag{{Name: "@smoke"}, {Name: "@regression"}}}
	assert.Equal(t, []string{"smoke", "regression"}, Tags(sc))
	assert.Empty(t, Tags(&godog.Scenario{}))
}

func TestRegisterHooks(t *testing.T) {
	var (
		name    string
		tags    []string
		entries int
	)

	suite := godog.TestSuite{
		Name: "report",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			RegisterHooks(sc)
			sc.Step(`^the scenario is bound$`, func(ctx context.Context) error {
				s, err := CurrentScenario(ctx)
				if err != nil {
					return err
				}
				name, tags = s.Name, Tags(s)
				return nil
			})
			sc.Step(`^I log "([^"]*)" to the report$`, func(ctx context.Context, msg string) error {
				return LogSuccessToReport(ctx, msg)
			})
			sc.Step(`^the report holds (\d+) entry$`, func(ctx context.Context, n int) error {
				entries = len(Attachments(ctx))
				if entries != n {
					return fmt.Errorf("want %d entries, got %d", n, entries)
				}
				return nil
			})
		},
		Options: &godog.Options{
			Format: "progress",
			Paths:  []string{"testdata/report.feature"},
			Output: io.Discard,
			Strict: true,
		},
	}

	require.Equal(t, 0, suite.Run())
	assert.Equal(t, "Write to the report", name)
	assert.Equal(t, []string{"smoke", "login"}, tags)
	assert.Equal(t, 1, entries)
}

type cukeFeature struct {
	Elements []struct {
		Steps []struct {
			Name       string `json:"name"`
			Embeddings []struct {
				Name     string `json:"name"`
				MimeType string `json:"mime_type"`
				Data     string `json:"data"`
			} `json:"embeddings"`
		} `json:"steps"`
	} `json:"elements"`
}

func TestRegisterHooks_AttachmentsReachFormatter(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	var out bytes.Buffer

	suite := godog.TestSuite{
		Name: "attach",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			RegisterHooks(sc)
			sc.Step(`^I log "([^"]*)" to the report$`, func(ctx context.Context, msg string) error {
				return LogToReport(ctx, msg)
			})
			sc.Step(`^I take a screenshot$`, func(ctx context.Context) error {
				return AttachScreenshot(ctx, shooter{png: png})
			})
			sc.Step(`^nothing else is attached$`, func(context.Context) error { return nil })
		},
		Options: &godog.Options{
			Format: "cucumber",
			Paths:  []string{"testdata/attach.feature"},
			Output: &out,
			Strict: true,
		},
	}
	require.Equal(t, 0, suite.Run())

	var features []cukeFeature
	require.NoError(t, json.Unmarshal(out.Bytes(), &features))
	require.Len(t, features, 1)
	require.Len(t, features[0].Elements, 1)
	steps := features[0].Elements[0].Steps
	require.Len(t, steps, 3)

	require.Len(t, steps[0].Embeddings, 1)
	assert.Equal(t, "text/plain", steps[0].Embeddings[0].MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("hello")), steps[0].Embeddings[0].Data)

	require.Len(t, steps[1].Embeddings, 1)
	assert.Equal(t, "image/png", steps[1].Embeddings[0].MimeType)
	assert.Equal(t, "Attached Image", steps[1].Embeddings[0].Name)
	assert.Equal(t, base64.StdEncoding.EncodeToString(png), steps[1].Embeddings[0].Data)

	assert.Empty(t, steps[2].Embeddings)
}
