package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from the process environment.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads configuration through getenv. Every unparsable or missing
// required variable is reported, not just the first.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	l := &loader{getenv: getenv}
	l.load(reflect.ValueOf(cfg).Elem())
	if len(l.errs) > 0 {
		return nil, fmt.Errorf("config load: %w", errors.Join(l.errs...))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() or TestMain where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

var durationType = reflect.TypeOf(time.Duration(0))

// loader populates tagged struct fields. Tags: env, envAlt (fallback
// variable), default, required ("true") and sep (slice separator, ",").
type loader struct {
	getenv func(string) string
	errs   []error
}

func (l *loader) load(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, fieldVal := t.Field(i), v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			l.load(fieldVal)
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		value, ok := l.lookup(name, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				l.errs = append(l.errs, fmt.Errorf("required environment variable %s is not set", name))
				continue
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		sep := field.Tag.Get("sep")
		if sep == "" {
			sep = ","
		}
		if err := setField(fieldVal, value, sep); err != nil {
			l.errs = append(l.errs, fmt.Errorf("invalid value for %s=%q: %w", name, value, err))
		}
	}
}

func (l *loader) lookup(names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if value := l.getenv(name); value != "" {
			return value, true
		}
	}
	return "", false
}

// setField parses value into field according to its kind.
func setField(field reflect.Value, value, sep string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(value, sep) {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	// API validation
	if c.API.Timeout <= 0 {
		errs = append(errs, "API_TIMEOUT must be positive")
	}

	// Database validation
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.ConnectTimeout <= 0 {
		errs = append(errs, "DB_CONNECT_TIMEOUT must be positive")
	}

	// Web validation
	validEngines := map[string]bool{"chromedp": true, "playwright": true, "selenium": true}
	if !validEngines[strings.ToLower(c.Web.Engine)] {
		errs = append(errs, fmt.Sprintf("WEB_ENGINE (%q) must be one of: chromedp, playwright, selenium", c.Web.Engine))
	}
	if c.Web.DefaultTimeout <= 0 {
		errs = append(errs, "WEB_DEFAULT_TIMEOUT must be positive")
	}
	if c.Web.PollInterval <= 0 {
		errs = append(errs, "WEB_POLL_INTERVAL must be positive")
	}
	if c.Web.Width <= 0 || c.Web.Height <= 0 {
		errs = append(errs, fmt.Sprintf("WEB_WIDTH x WEB_HEIGHT (%dx%d) must be positive", c.Web.Width, c.Web.Height))
	}

	// Mobile validation
	validPlatforms := map[string]bool{"android": true, "ios": true}
	if !validPlatforms[strings.ToLower(c.Mobile.Platform)] {
		errs = append(errs, fmt.Sprintf("MOBILE_PLATFORM (%q) must be one of: android, ios", c.Mobile.Platform))
	}
	for _, kv := range c.Mobile.Capabilities {
		if !strings.Contains(kv, "=") {
			errs = append(errs, fmt.Sprintf("MOBILE_CAPABILITIES entry %q must be key=value", kv))
		}
	}

	// Stub validation
	if c.Stub.Port <= 0 || c.Stub.Port > 65535 {
		errs = append(errs, fmt.Sprintf("STUB_PORT (%d) must be 1-65535", c.Stub.Port))
	}
	if c.Stub.ShutdownTimeout <= 0 {
		errs = append(errs, "STUB_SHUTDOWN_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ExtraCapabilities parses MOBILE_CAPABILITIES into a map.
func (c *MobileConfig) ExtraCapabilities() map[string]string {
	caps := make(map[string]string, len(c.Capabilities))
	for _, kv := range c.Capabilities {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		caps[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return caps
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ", c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("API: {BaseURL: %q, Timeout: %s, InsecureTLS: %v}, ",
		c.API.BaseURL, c.API.Timeout, c.API.InsecureTLS))
	if c.Database.URL != "" {
		b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
			c.Database.MaxConns, c.Database.MinConns))
	} else {
		b.WriteString(fmt.Sprintf("Database: {URL: \"\", MaxConns: %d, MinConns: %d}, ",
			c.Database.MaxConns, c.Database.MinConns))
	}
	b.WriteString(fmt.Sprintf("Web: {Engine: %q, Headless: %v, DefaultTimeout: %s}, ",
		c.Web.Engine, c.Web.Headless, c.Web.DefaultTimeout))
	b.WriteString(fmt.Sprintf("Mobile: {AppiumURL: %q, Platform: %q}, ", c.Mobile.AppiumURL, c.Mobile.Platform))
	b.WriteString(fmt.Sprintf("Stub: {Addr: %q}", c.Stub.Addr()))
	b.WriteString("}")
	return b.String()
}
