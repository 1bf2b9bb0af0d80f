package stub

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Route is one canned response.
//
// Example routes file:
//
//	routes:
//	  - method: GET
//	    path: /users/{id}
//	    status: 200
//	    json: {id: 7, name: alice}
//	  - method: POST
//	    path: /login
//	    status: 401
//	    headers: {WWW-Authenticate: Basic}
//	    body: denied
//	    delay: 250ms
type Route struct {
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`
	JSON    any               `yaml:"json"`
	Delay   time.Duration     `yaml:"delay"`
}

type routesFile struct {
	Routes []Route `yaml:"routes"`
}

// LoadRoutes reads routes from a YAML file.
func LoadRoutes(path string) ([]Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes %s: %w", path, err)
	}
	routes, err := ParseRoutes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return routes, nil
}

// ParseRoutes decodes and validates YAML route definitions.
func ParseRoutes(data []byte) ([]Route, error) {
	var f routesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}

	for i := range f.Routes {
		r := &f.Routes[i]
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		if r.Method == "" {
			r.Method = http.MethodGet
		}
		if !methods[r.Method] {
			return nil, fmt.Errorf("route %d: unsupported method %q", i, r.Method)
		}
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %d: path %q must start with /", i, r.Path)
		}
		if err := checkPattern(r.Path); err != nil {
			return nil, fmt.Errorf("route %d: path %q: %w", i, r.Path, err)
		}
		if r.Status == 0 {
			r.Status = http.StatusOK
		}
		if r.Status < 100 || r.Status > 599 {
			return nil, fmt.Errorf("route %d: invalid status %d", i, r.Status)
		}
		if r.JSON != nil && r.Body != "" {
			return nil, fmt.Errorf("route %d: set body or json, not both", i)
		}
	}
	return f.Routes, nil
}

var methods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// checkPattern rejects route patterns the router cannot register: unclosed
// {params}, repeated param names, bad param regexps and a * that is not last.
func checkPattern(path string) error {
	seen := map[string]bool{}
	rest := path
	for {
		open := strings.IndexByte(rest, '{')
		star := strings.IndexByte(rest, '*')
		if star >= 0 && (open < 0 || star < open) {
			if star != len(rest)-1 {
				return errors.New("wildcard * must be the last character")
			}
			return nil
		}
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return errors.New("unexpected }")
			}
			return nil
		}
		if strings.IndexByte(rest[:open], '}') >= 0 {
			return errors.New("unexpected }")
		}

		depth, end := 0, -1
		for i, c := range rest[open:] {
			if c == '{' {
				depth++
			} else if c == '}' {
				depth--
				if depth == 0 {
					end = open + i
					break
				}
			}
		}
		if end < 0 {
			return errors.New("param is missing its closing }")
		}

		name, expr, hasExpr := strings.Cut(rest[open+1:end], ":")
		if name == "" {
			return errors.New("param has no name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate param %q", name)
		}
		seen[name] = true
		if hasExpr {
			if _, err := regexp.Compile(expr); err != nil {
				return fmt.Errorf("param %q: %w", name, err)
			}
		}
		rest = rest[end+1:]
	}
}
