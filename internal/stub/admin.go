package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// AdminPrefix is where the stub serves its own pages. Requests under it are
// not recorded.
const AdminPrefix = "/__stub"

func isAdmin(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, AdminPrefix)
}

func (s *Server) setupAdmin(routes []Route) {
	s.router.Route(AdminPrefix, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := dashboard(routes, s.Received(), s.Load()).Render(r.Context(), w); err != nil {
				logging.Error(r.Context(), "render dashboard", err)
			}
		})
		r.Get("/received", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(s.Received()); err != nil {
				logging.Error(r.Context(), "json encode error", err)
			}
		})
		r.Delete("/received", func(w http.ResponseWriter, r *http.Request) {
			s.Reset()
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

// dashboard lists the configured routes and the requests answered so far.
func dashboard(routes []Route, received []Received, load Load) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><head><title>Stub</title></head><body>`)
		b.WriteString(`<h1>Routes</h1><table><tr><th>Method</th><th>Path</th><th>Status</th><th>Delay</th></tr>`)
		for _, rt := range routes {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td></tr>`,
				templ.EscapeString(rt.Method), templ.EscapeString(rt.Path), rt.Status, rt.Delay)
		}
		b.WriteString(`</table>`)

		if load.MaxConcurrent > 0 {
			fmt.Fprintf(&b, `<p>In flight: %d of %d</p>`, load.Active, load.MaxConcurrent)
		}

		fmt.Fprintf(&b, `<h1>Received (%d)</h1><table><tr><th>Request</th><th>Method</th><th>Path</th><th>Body</th></tr>`, len(received))
		for _, rc := range received {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%s</td><td><pre>%s</pre></td></tr>`,
				templ.EscapeString(rc.RequestID), templ.EscapeString(rc.Method),
				templ.EscapeString(rc.Path), templ.EscapeString(rc.Body))
		}
		b.WriteString(`</table></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
