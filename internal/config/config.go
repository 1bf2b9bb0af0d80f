// Package config provides centralized configuration management for sdetkit.
// It loads configuration from environment variables with sensible defaults and
// validates all settings up front so a misconfigured test run fails fast.
package config

import "time"

// Config holds all library and CLI configuration.
// All settings can be configured via environment variables.
type Config struct {
	Logging  LoggingConfig
	API      APIConfig
	Database DatabaseConfig
	Web      WebConfig
	Mobile   MobileConfig
	Report   ReportConfig
	Stub     StubConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// APIConfig holds HTTP client settings.
type APIConfig struct {
	// BaseURL is prepended to endpoints when set
	BaseURL string `env:"API_BASE_URL"`

	// Timeout bounds a single request including the body read (default: 30s)
	Timeout time.Duration `env:"API_TIMEOUT" default:"30s"`

	// InsecureTLS skips certificate verification (default: true)
	InsecureTLS bool `env:"API_INSECURE_TLS" default:"true"`

	// LogBodies logs request and response bodies (default: true)
	LogBodies bool `env:"API_LOG_BODIES" default:"true"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is any dburl connection string (postgres://, mysql://, sqlserver://, sqlite:)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// ConnectTimeout bounds the initial ping (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// WebConfig holds browser automation settings.
type WebConfig struct {
	// Engine selects the browser driver: chromedp, playwright or selenium (default: chromedp)
	Engine string `env:"WEB_ENGINE" default:"chromedp"`

	// Browser is the browser name for playwright and selenium (default: chromium)
	Browser string `env:"WEB_BROWSER" default:"chromium"`

	// Headless runs the browser without a window (default: true)
	Headless bool `env:"WEB_HEADLESS" default:"true"`

	// RemoteURL is the WebDriver endpoint for the selenium engine
	RemoteURL string `env:"WEB_REMOTE_URL" default:"http://127.0.0.1:4444/wd/hub"`

	// DefaultTimeout applies to element lookups and navigation (default: 10s)
	DefaultTimeout time.Duration `env:"WEB_DEFAULT_TIMEOUT" default:"10s"`

	// PollInterval is how often waits re-check their condition (default: 250ms)
	PollInterval time.Duration `env:"WEB_POLL_INTERVAL" default:"250ms"`

	// Width and Height are the initial viewport size (default: 1920x1080)
	Width  int `env:"WEB_WIDTH" default:"1920"`
	Height int `env:"WEB_HEIGHT" default:"1080"`
}

// MobileConfig holds Appium session settings.
type MobileConfig struct {
	// AppiumURL is the Appium server endpoint (default: http://127.0.0.1:4723)
	AppiumURL string `env:"APPIUM_URL" default:"http://127.0.0.1:4723"`

	// Platform is android or ios (default: android)
	Platform string `env:"MOBILE_PLATFORM" default:"android"`

	// DeviceName is passed as appium:deviceName
	DeviceName string `env:"MOBILE_DEVICE_NAME"`

	// App is the application path or identifier passed as appium:app
	App string `env:"MOBILE_APP"`

	// Capabilities holds extra key=value capabilities, comma-separated
	Capabilities []string `env:"MOBILE_CAPABILITIES"`
}

// ReportConfig holds test report settings.
type ReportConfig struct {
	// ScreenshotDir is where screenshots are written (default: target/screenshots)
	ScreenshotDir string `env:"REPORT_SCREENSHOT_DIR" default:"target/screenshots"`

	// TimestampPattern is the Java-style pattern appended to screenshot names
	TimestampPattern string `env:"REPORT_TIMESTAMP_PATTERN" default:"yyyyMMdd_HHmmss"`
}

// StubConfig holds stub HTTP server settings.
type StubConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"STUB_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8089)
	Port int `env:"STUB_PORT" default:"8089"`

	// RoutesFile is the YAML file describing canned routes
	RoutesFile string `env:"STUB_ROUTES_FILE" default:"stub.yaml"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 5s)
	ShutdownTimeout time.Duration `env:"STUB_SHUTDOWN_TIMEOUT" default:"5s"`

	// APIKeys, when set, are the accepted X-API-Key or Bearer values, comma-separated
	APIKeys []string `env:"STUB_API_KEYS"`

	// MaxConcurrent caps requests in flight; 0 means unlimited (default: 0)
	MaxConcurrent int `env:"STUB_MAX_CONCURRENT" default:"0"`

	// MaxWait is how long a request waits for a free slot before a 503 (default: 5s)
	MaxWait time.Duration `env:"STUB_MAX_WAIT" default:"5s"`
}

// Addr returns the stub server listen address in host:port format.
func (c *StubConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
