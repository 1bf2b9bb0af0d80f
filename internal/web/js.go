package web

// JavaScript expressions over the first node an XPath matches. Engines that
// lack a native primitive evaluate these instead.

func visibleExpr(xpath string) string {
	return "(function(el){ if (!el) { return false; }" +
		" var s = window.getComputedStyle(el); var r = el.getBoundingClientRect();" +
		" return s.visibility !== 'hidden' && s.display !== 'none' && (r.width > 0 || r.height > 0); })(" +
		nodeExpr(xpath) + ")"
}

func enabledExpr(xpath string) string {
	return "(function(el){ return !!el && !el.disabled; })(" + nodeExpr(xpath) + ")"
}

func selectedExpr(xpath string) string {
	return "(function(el){ return !!el && !!(el.checked || el.selected); })(" + nodeExpr(xpath) + ")"
}

// rectExpr scrolls the node into view and yields its viewport rectangle.
func rectExpr(xpath string) string {
	return "(function(el){ if (!el) { return null; } el.scrollIntoView({block: 'center', inline: 'center'});" +
		" var r = el.getBoundingClientRect(); return {x: r.x, y: r.y, width: r.width, height: r.height}; })(" +
		nodeExpr(xpath) + ")"
}

const pageMetricsExpr = "({" +
	"total: Math.max(document.body ? document.body.scrollHeight : 0, document.documentElement.scrollHeight)," +
	" viewport: window.innerHeight, dpr: window.devicePixelRatio || 1, y: window.pageYOffset})"

// rectFrom converts a decoded rectExpr result.
func rectFrom(v any) (Rect, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Rect{}, false
	}
	return Rect{
		X:      number(m["x"]),
		Y:      number(m["y"]),
		Width:  number(m["width"]),
		Height: number(m["height"]),
	}, true
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
