package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultScope            = "accounts payments"
	defaultHTTPTimeout      = 30 * time.Second
	defaultPollMaxAttempts  = 10
	defaultPollInterval     = 2 * time.Second
	defaultPollMultiplier   = 1.0
	defaultEnvFile          = ".env"
	defaultSandboxAddr      = ":8080"
	defaultTokenPath        = "/oauth/token"
	defaultMigrationsSubdir = "migrations"
)

// RequiredKeys are the environment variables the connection check treats as mandatory.
var RequiredKeys = []string{
	"CLIENT_ID",
	"CLIENT_SECRET",
	"API_BASE_URL",
	"TRANSPORT_CERT_PATH",
	"TRANSPORT_KEY_PATH",
}

// OptionalKeys are reported by the connection check but never fail it.
var OptionalKeys = []string{
	"SIGNING_CERT_PATH",
	"SIGNING_KEY_PATH",
	"CA_CERT_PATH",
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
}

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	Scope        string

	TransportCertPath    string
	TransportKeyPath     string
	TransportP12Path     string
	TransportP12Password string
	CACertPath           string
	SigningCertPath      string
	SigningKeyPath       string

	OpenAIAPIKey    string
	AnthropicAPIKey string

	HTTPTimeout         time.Duration
	PollMaxAttempts     int
	PollInterval        time.Duration
	PollMultiplier      float64
	PollMaxInterval     time.Duration
	SnapshotConcurrency int

	DatabaseDSN   string
	MigrationsDir string
	RedisAddr     string
	AMQPURL       string
	LogFormat     string
	SandboxAddr   string
}

// Load reads configuration from the process environment, falling back to
// values found in envFile when it exists. An empty envFile means ".env".
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("oauth_scope", defaultScope)
	v.SetDefault("poll_max_attempts", defaultPollMaxAttempts)
	v.SetDefault("poll_backoff_multiplier", defaultPollMultiplier)
	v.SetDefault("snapshot_concurrency", 0)
	v.SetDefault("migrations_dir", filepath.Join("src", defaultMigrationsSubdir))
	v.SetDefault("log_format", "text")
	v.SetDefault("sandbox_addr", defaultSandboxAddr)

	if strings.TrimSpace(envFile) == "" {
		envFile = defaultEnvFile
	}
	if err := readEnvFile(v, envFile); err != nil {
		return Config{}, err
	}

	baseURL := strings.TrimRight(get(v, "api_base_url"), "/")
	tokenURL := get(v, "token_url")
	if tokenURL == "" && baseURL != "" {
		tokenURL = baseURL + defaultTokenPath
	}

	var durationErrs []error
	readDuration := func(key string, fallback time.Duration) time.Duration {
		d, err := duration(v, key, fallback)
		if err != nil {
			durationErrs = append(durationErrs, err)
		}
		return d
	}
	httpTimeout := readDuration("http_timeout", defaultHTTPTimeout)
	pollInterval := readDuration("poll_interval", defaultPollInterval)
	pollMaxInterval := readDuration("poll_max_interval", 0)
	if err := errors.Join(durationErrs...); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ClientID:     get(v, "client_id"),
		ClientSecret: get(v, "client_secret"),
		BaseURL:      baseURL,
		TokenURL:     tokenURL,
		Scope:        get(v, "oauth_scope"),

		TransportCertPath:    get(v, "transport_cert_path"),
		TransportKeyPath:     get(v, "transport_key_path"),
		TransportP12Path:     get(v, "transport_p12_path"),
		TransportP12Password: v.GetString("transport_p12_password"),
		CACertPath:           get(v, "ca_cert_path"),
		SigningCertPath:      get(v, "signing_cert_path"),
		SigningKeyPath:       get(v, "signing_key_path"),

		OpenAIAPIKey:    get(v, "openai_api_key"),
		AnthropicAPIKey: get(v, "anthropic_api_key"),

		HTTPTimeout:         httpTimeout,
		PollMaxAttempts:     v.GetInt("poll_max_attempts"),
		PollInterval:        pollInterval,
		PollMultiplier:      v.GetFloat64("poll_backoff_multiplier"),
		PollMaxInterval:     pollMaxInterval,
		SnapshotConcurrency: v.GetInt("snapshot_concurrency"),

		DatabaseDSN:   get(v, "database_dsn"),
		MigrationsDir: get(v, "migrations_dir"),
		RedisAddr:     get(v, "redis_addr"),
		AMQPURL:       get(v, "amqp_url"),
		LogFormat:     strings.ToLower(get(v, "log_format")),
		SandboxAddr:   get(v, "sandbox_addr"),
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = defaultPollMaxAttempts
	}
	if cfg.PollInterval < 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollMultiplier < 1 {
		cfg.PollMultiplier = defaultPollMultiplier
	}

	return cfg, nil
}

// Value returns the configured value for one of RequiredKeys or OptionalKeys.
func (c Config) Value(key string) string {
	switch key {
	case "CLIENT_ID":
		return c.ClientID
	case "CLIENT_SECRET":
		return c.ClientSecret
	case "API_BASE_URL":
		return c.BaseURL
	case "TRANSPORT_CERT_PATH":
		return c.TransportCertPath
	case "TRANSPORT_KEY_PATH":
		return c.TransportKeyPath
	case "SIGNING_CERT_PATH":
		return c.SigningCertPath
	case "SIGNING_KEY_PATH":
		return c.SigningKeyPath
	case "CA_CERT_PATH":
		return c.CACertPath
	case "OPENAI_API_KEY":
		return c.OpenAIAPIKey
	case "ANTHROPIC_API_KEY":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// MissingRequired lists the RequiredKeys with no value. A PKCS#12 bundle
// stands in for the certificate and key pair.
func (c Config) MissingRequired() []string {
	var missing []string
	for _, key := range RequiredKeys {
		if c.Value(key) != "" {
			continue
		}
		if c.TransportP12Path != "" && (key == "TRANSPORT_CERT_PATH" || key == "TRANSPORT_KEY_PATH") {
			continue
		}
		missing = append(missing, key)
	}
	return missing
}

func readEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %q: %w", path, err)
	}
	return nil
}

// duration reads key as a Go duration ("2s", "1m30s"). A bare number is a
// count of seconds.
func duration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := get(v, key)
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 30s or a number of seconds, got %q", strings.ToUpper(key), raw)
	}
	return d, nil
}

func get(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}
