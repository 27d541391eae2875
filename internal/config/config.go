package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultEndpoint = "http://127.0.0.1:5000"
	apiPath         = "/api/bmi"
)

// DefaultLogFile is relative to the working directory.
var DefaultLogFile = filepath.Join(".bmi-client", "logs", "bmi-client.log")

// Config is the client's runtime configuration. Flags set by the CLI are
// applied on top of what Load reads from the environment.
type Config struct {
	// Endpoint is the base URL of the BMI service.
	Endpoint string
	LogFile  string
	// DiagAddr enables the local diagnostics server when non-empty.
	DiagAddr string
	Debug    bool
	// Telemetry is on when an OTLP endpoint is configured.
	Telemetry bool
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Endpoint:  getEnv("BMI_ENDPOINT", DefaultEndpoint),
		LogFile:   getEnv("BMI_LOG_FILE", DefaultLogFile),
		DiagAddr:  getEnv("BMI_DIAG_ADDR", ""),
		Telemetry: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "") != "",
	}

	if v := getEnv("BMI_DEBUG", ""); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BMI_DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

// Validate checks that Endpoint is an absolute http(s) URL.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}
	return nil
}

// APIURL is the full URL of the calculate route.
func (c Config) APIURL() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return url.JoinPath(c.Endpoint, apiPath)
}
