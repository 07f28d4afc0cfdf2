package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/service"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	TraceNone   = "none"
	TraceStdout = "stdout"
)

type Config struct {
	Env                 string        `koanf:"env"`                   // Environment (dev, staging, prod) (default: dev)
	Port                int           `koanf:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration `koanf:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)

	Log      LogConfig      `koanf:"log"`
	Keycloak KeycloakConfig `koanf:"keycloak"`
	CORS     CORSConfig     `koanf:"cors"`
	Access   AccessConfig   `koanf:"access"`
	Error    ErrorConfig    `koanf:"error"`
	Trace    TraceConfig    `koanf:"trace"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error (default: info)
	Format string `koanf:"format"` // json, text (default: json)
}

type KeycloakConfig struct {
	BaseURL      string        `koanf:"base_url"`      // Required (default: http://localhost:8080)
	Realm        string        `koanf:"realm"`         // Required (default: constrsw)
	ClientID     string        `koanf:"client_id"`     // Required (default: oauth)
	ClientSecret string        `koanf:"client_secret"` // Optional: confidential clients only
	Audience     string        `koanf:"audience"`      // Optional: UMA audience (default: client id)
	Timeout      time.Duration `koanf:"timeout"`       // Per upstream call (default: 10s)
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"` // Empty disables CORS handling
}

type AccessConfig struct {
	Policy    string            `koanf:"policy"`    // allowlist or uma (default: allowlist)
	Allowlist service.Allowlist `koanf:"allowlist"` // role -> resources, YAML only
}

type ErrorConfig struct {
	Source string `koanf:"source"` // error_source in envelopes (default: OAuthAPI)
	Debug  bool   `koanf:"debug"`  // include error_stack detail (default: true when env is dev)
}

type TraceConfig struct {
	Exporter string `koanf:"exporter"` // none or stdout (default: none)
}

// envKeys maps the recognised environment variables onto config keys.
// Anything else in the environment is ignored.
var envKeys = map[string]string{
	"ENV":                    "env",
	"PORT":                   "port",
	"SHUTDOWN_GRACE_PERIOD":  "shutdown_grace_period",
	"LOG_LEVEL":              "log.level",
	"LOG_FORMAT":             "log.format",
	"KEYCLOAK_BASE_URL":      "keycloak.base_url",
	"KEYCLOAK_REALM":         "keycloak.realm",
	"KEYCLOAK_CLIENT_ID":     "keycloak.client_id",
	"KEYCLOAK_CLIENT_SECRET": "keycloak.client_secret",
	"KEYCLOAK_AUDIENCE":      "keycloak.audience",
	"KEYCLOAK_TIMEOUT":       "keycloak.timeout",
	"CORS_ALLOWED_ORIGINS":   "cors.allowed_origins",
	"ACCESS_POLICY":          "access.policy",
	"ERROR_SOURCE":           "error.source",
	"ERROR_DEBUG":            "error.debug",
	"TRACE_EXPORTER":         "trace.exporter",
}

func defaults() map[string]any {
	return map[string]any{
		"env":                   "dev",
		"port":                  8080,
		"shutdown_grace_period": "10s",
		"log.level":             "info",
		"log.format":            "json",
		"keycloak.base_url":     "http://localhost:8080",
		"keycloak.realm":        "constrsw",
		"keycloak.client_id":    "oauth",
		"keycloak.timeout":      "10s",
		"access.policy":         service.PolicyAllowlist,
		"error.source":          "OAuthAPI",
		"trace.exporter":        TraceNone,
	}
}

// LoadConfig reads defaults, then the YAML file named by CONFIG_FILE (if
// any), then the environment. Later sources win.
func LoadConfig() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if !k.Exists("error.debug") {
		cfg.Error.Debug = cfg.Env == "dev"
	}
	cfg.CORS.AllowedOrigins = cleanList(cfg.CORS.AllowedOrigins)

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.Keycloak.BaseURL) == "" {
		errs = append(errs, errors.New("keycloak.base_url is required"))
	}
	if strings.TrimSpace(c.Keycloak.Realm) == "" {
		errs = append(errs, errors.New("keycloak.realm is required"))
	}
	if strings.TrimSpace(c.Keycloak.ClientID) == "" {
		errs = append(errs, errors.New("keycloak.client_id is required"))
	}

	switch strings.ToLower(c.Access.Policy) {
	case service.PolicyAllowlist, service.PolicyUMA:
	default:
		errs = append(errs, fmt.Errorf("access.policy %q must be %s or %s",
			c.Access.Policy, service.PolicyAllowlist, service.PolicyUMA))
	}

	switch strings.ToLower(c.Trace.Exporter) {
	case "", TraceNone, TraceStdout:
	default:
		errs = append(errs, fmt.Errorf("trace.exporter %q must be %s or %s", c.Trace.Exporter, TraceNone, TraceStdout))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	return errors.Join(errs...)
}

// cleanList splits comma joined entries and drops blanks.
func cleanList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
