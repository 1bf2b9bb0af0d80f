package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/the-sdet/sdetkit/internal/api"
	"github.com/the-sdet/sdetkit/internal/db"
	"github.com/the-sdet/sdetkit/internal/logging"
	"github.com/the-sdet/sdetkit/internal/stub"
	"github.com/the-sdet/sdetkit/internal/web"
)

func apiCmd(e *env) *cobra.Command {
	var (
		headers     []string
		query       []string
		body        string
		contentType string
		jsonPath    string
	)

	cmd := &cobra.Command{
		Use:   "api <method> <url>",
		Short: "Send an HTTP request and print the response body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.Request{
				Method:      strings.ToUpper(args[0]),
				Target:      args[1],
				Headers:     pairs(headers),
				QueryParams: pairs(query),
				Body:        []byte(body),
				ContentType: api.ContentType(contentType),
			}
			if strings.HasPrefix(body, "@") {
				data, err := os.ReadFile(strings.TrimPrefix(body, "@"))
				if err != nil {
					return err
				}
				req.Body = data
			}

			resp, err := api.NewClient(e.cfg.API).Do(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonPath != "" {
				v, err := resp.JSONValue(jsonPath)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), resp.String())
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("request failed: %s", resp.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header as key=value")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value")
	cmd.Flags().StringVarP(&body, "data", "d", "", "request body, or @file")
	cmd.Flags().StringVar(&contentType, "content-type", string(api.ContentJSON), "request content type")
	cmd.Flags().StringVar(&jsonPath, "jsonpath", "", "print only this JSONPath of the response")
	return cmd
}

// pairs splits key=value flags. Entries without "=" are dropped.
func pairs(kvs []string) map[string]string {
	if len(kvs) == 0 {
		return nil
	}
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[strings.TrimSpace(k)] = v
		}
	}
	return m
}

func dbCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "db", Short: "Run SQL against DATABASE_URL"}

	query := &cobra.Command{
		Use:   "query <sql>",
		Short: "Print the result rows as JSON records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			r, err := db.Open(cmd.Context(), e.cfg.Database.URL, db.PoolConfigFrom(e.cfg.Database))
			if err != nil {
				return err
			}
			defer r.Close()

			records, err := r.ReadWithColumnNames(cmd.Context(), args[0])
			if err != nil {
				return withHint(cmd, err)
			}
			rows := make([]map[string]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, rec.Map())
			}
			return printJSON(cmd, rows)
		},
	}

	exec := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a statement and print the affected row count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			r, err := db.Open(cmd.Context(), e.cfg.Database.URL, db.PoolConfigFrom(e.cfg.Database))
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := r.Exec(cmd.Context(), args[0])
			if err != nil {
				return withHint(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.AddCommand(query, exec)
	return cmd
}

// withHint prints the explanation of a failed query before returning err.
func withHint(cmd *cobra.Command, err error) error {
	var qe *db.QueryError
	if errors.As(err, &qe) {
		fmt.Fprintln(cmd.ErrOrStderr(), qe.Hint)
	}
	return err
}

func stubCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "stub", Short: "Canned-response HTTP server"}

	var routesFile string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routes of a YAML file until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if routesFile == "" {
				routesFile = e.cfg.Stub.RoutesFile
			}
			routes, err := stub.LoadRoutes(routesFile)
			if err != nil {
				return err
			}
			server := stub.NewServer(routes,
				stub.WithAPIKeys(e.cfg.Stub.APIKeys...),
				stub.WithMaxConcurrent(e.cfg.Stub.MaxConcurrent, e.cfg.Stub.MaxWait),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start(e.cfg.Stub.Addr()) }()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logging.Info(cmd.Context(), "shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.Stub.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logging.Error(shutdownCtx, "shutdown error", err)
				return err
			}
			return nil
		},
	}
	serve.Flags().StringVar(&routesFile, "routes", "", "routes file (default STUB_ROUTES_FILE)")

	cmd.AddCommand(serve)
	return cmd
}

func webCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "web", Short: "Browser helpers"}

	var (
		fullPage bool
		xpath    string
		engine   string
	)
	screenshot := &cobra.Command{
		Use:   "screenshot <url> <file>",
		Short: "Open a page and save a PNG screenshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := e.cfg.Web
			if engine != "" {
				cfg.Engine = engine
			}
			u, err := web.Launch(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer u.Close()

			ctx := cmd.Context()
			if err := u.OpenPage(ctx, args[0]); err != nil {
				return err
			}
			switch {
			case xpath != "":
				return u.TakeElementScreenshot(ctx, xpath, args[1])
			case fullPage:
				return u.TakeFullPageScreenshot(ctx, args[1])
			default:
				return u.TakeScreenshot(ctx, args[1])
			}
		},
	}
	screenshot.Flags().BoolVar(&fullPage, "full-page", false, "capture the whole scrollable page")
	screenshot.Flags().StringVar(&xpath, "xpath", "", "capture only this element")
	screenshot.Flags().StringVar(&engine, "engine", "", "chromedp, playwright or selenium (default WEB_ENGINE)")

	var wantAll bool
	query := &cobra.Command{
		Use:   "query <url> <xpath>",
		Short: "Open a page and print the text of XPath matches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := web.Launch(cmd.Context(), e.cfg.Web)
			if err != nil {
				return err
			}
			defer u.Close()

			ctx := cmd.Context()
			if err := u.OpenPage(ctx, args[0]); err != nil {
				return err
			}
			texts, err := u.QueryPage(ctx, args[1])
			if err != nil {
				return err
			}
			if !wantAll && len(texts) > 1 {
				texts = texts[:1]
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(texts, "\n"))
			return nil
		},
	}
	query.Flags().BoolVar(&wantAll, "all", false, "print every match")

	cmd.AddCommand(screenshot, query)
	return cmd
}
