package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DebugMode gates verbose per-message logging across the application.
var DebugMode bool

type Config struct {
	RestEndpoint    string `yaml:"rest_endpoint"`
	StreamEndpoint  string `yaml:"stream_endpoint"`
	CredentialToken string `yaml:"credential_token"`

	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb"`

	MetricsAddr string `yaml:"metrics_addr"`

	HTTPTimeout           time.Duration `yaml:"http_timeout"`
	TransactionsPageLimit int           `yaml:"transactions_page_limit"`

	Debug bool `yaml:"debug"`
}

func defaults() *Config {
	return &Config{
		RestEndpoint:          "https://api.rupeex.in",
		StreamEndpoint:        "wss://stream.rupeex.in/ws",
		LogLevel:              "info",
		MetricsAddr:           ":8080",
		HTTPTimeout:           10 * time.Second,
		TransactionsPageLimit: 50,
	}
}

// Load builds the configuration from defaults, an optional yaml file and
// environment variables, in that order of precedence. A .env file is loaded
// first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	conf := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "failed to read config file %s", path)
			}
		} else if err := yaml.Unmarshal(raw, conf); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	applyEnv(conf)

	DebugMode = conf.Debug
	return conf, nil
}

func applyEnv(conf *Config) {
	if v := os.Getenv("RUPEEX_REST_ENDPOINT"); v != "" {
		conf.RestEndpoint = v
	}
	if v := os.Getenv("RUPEEX_STREAM_ENDPOINT"); v != "" {
		conf.StreamEndpoint = v
	}
	if v := os.Getenv("RUPEEX_TOKEN"); v != "" {
		conf.CredentialToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		conf.LogLevel = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		conf.LogFile = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		conf.MetricsAddr = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			conf.Debug = parsed
		}
	}
}
