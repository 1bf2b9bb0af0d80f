package web

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-sdet/sdetkit/internal/config"
)

func TestCustomizeXpath(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		values []string
		want   string
	}{
		{"one", "//a[text()='v1']", []string{"Home"}, "//a[text()='Home']"},
		{"two", "//tr[td='v1']/td[v2]", []string{"Bob", "3"}, "//tr[td='Bob']/td[3]"},
		{"three", "//v1/v2/v3", []string{"a", "b", "c"}, "//a/b/c"},
		{"repeated", "//x[@id='v1' or @name='v1']", []string{"q"}, "//x[@id='q' or @name='q']"},
		{"none", "//div", nil, "//div"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CustomizeXpath(tt.raw, tt.values...))
		})
	}
}

func TestCustomizeXpath_TenPlaceholders(t *testing.T) {
	values := make([]string, 10)
	for i := range values {
		values[i] = string(rune('a' + i))
	}
	assert.Equal(t, "a-j", CustomizeXpath("v1-v10", values...))
}

func TestCustomizeXpath_ValuesAreLiteral(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		values []string
		want   string
	}{
		{"value names later placeholder", "//a[@id='v1']/b[text()='v2']", []string{"v2", "x"}, "//a[@id='v2']/b[text()='x']"},
		{"value names itself", "//a[text()='v1']", []string{"v1 v1"}, "//a[text()='v1 v1']"},
		{"value names v10", "v2|v10", []string{"a", "v10", "c", "d", "e", "f", "g", "h", "i", "j"}, "v10|j"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CustomizeXpath(tt.raw, tt.values...))
		})
	}
}

func TestPoll(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := poll(ctx, time.Second, time.Millisecond, "third call", func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	err = poll(ctx, 20*time.Millisecond, time.Millisecond, "never", func(context.Context) (bool, error) {
		return false, nil
	})
	assert.True(t, errors.Is(err, ErrTimeout))

	err = poll(ctx, 20*time.Millisecond, time.Millisecond, "missing", func(context.Context) (bool, error) {
		return false, ErrNoSuchElement
	})
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "no such element")

	boom := errors.New("session deleted")
	err = poll(ctx, time.Second, time.Millisecond, "broken", func(context.Context) (bool, error) {
		return false, boom
	})
	assert.Same(t, boom, err)
}

func TestOnNode(t *testing.T) {
	expr := onNode(`//a[@id="x"]`, "el.click()")
	assert.True(t, strings.HasPrefix(expr, "(function(el){"))
	assert.Contains(t, expr, `document.evaluate("//a[@id=\"x\"]"`)
	assert.Contains(t, expr, "el.click(); return true;")
}

func TestRectFrom(t *testing.T) {
	r, ok := rectFrom(map[string]any{"x": 10.0, "y": 20.0, "width": 100.0, "height": 40.0})
	require.True(t, ok)
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 100, Height: 40}, r)

	x, y := r.Center()
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 40.0, y)

	_, ok = rectFrom(nil)
	assert.False(t, ok)
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestStitch(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}

	// 250px page, 100px viewport, dpr 2: the last capture is clamped to 150.
	frames := []frame{
		{img: solid(20, 200, red), offset: 0},
		{img: solid(20, 200, red), offset: 100},
		{img: solid(20, 200, blue), offset: 150},
	}
	img := stitch(frames, 250, 2)

	assert.Equal(t, image.Rect(0, 0, 20, 500), img.Bounds())
	assert.Equal(t, red, img.RGBAAt(5, 10))
	assert.Equal(t, red, img.RGBAAt(5, 299))
	assert.Equal(t, blue, img.RGBAAt(5, 300))
	assert.Equal(t, blue, img.RGBAAt(5, 499))
}

func TestStitch_Empty(t *testing.T) {
	assert.True(t, stitch(nil, 100, 1).Bounds().Empty())
}

func TestQuerySource(t *testing.T) {
	texts, err := QuerySource(`<table><tr><td>1</td><td> 2 </td></tr></table>`, "//td")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, texts)

	_, err = QuerySource(`<p/>`, "//[")
	assert.Error(t, err)
}

func TestLaunch_UnknownEngine(t *testing.T) {
	_, err := Launch(context.Background(), config.WebConfig{Engine: "netscape"})
	assert.Error(t, err)
}
