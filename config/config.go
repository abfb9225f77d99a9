// Package config loads the harness configuration from defaults, an optional
// YAML file, an optional .env file and the process environment (in that order).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUsername is used for the session capture when PW_USERNAME is unset.
	DefaultUsername = "example@gmail.com"
	// DefaultPassword is used for the session capture when PW_PASSWORD is unset.
	DefaultPassword = "1234567"
)

// Config is the complete harness configuration.
type Config struct {
	// BaseURL of the cinema web application. Empty means: start the built-in fixture application.
	BaseURL string `yaml:"baseURL"`
	// APIBaseURL of the JSON API. Defaults to BaseURL.
	APIBaseURL string `yaml:"apiBaseURL"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// StatePath is where the captured browser storage state is persisted.
	StatePath string `yaml:"statePath"`
	// TokenPath is where the captured API access token is persisted.
	TokenPath string `yaml:"tokenPath"`

	Browser BrowserConfig `yaml:"browser"`
	DB      DBConfig      `yaml:"db"`
}

// BrowserConfig configures the browser process.
type BrowserConfig struct {
	// Name is one of chromium, firefox or webkit.
	Name     string `yaml:"name"`
	Headless bool   `yaml:"headless"`
	// SlowMo delays each browser operation, useful when watching a headed run.
	SlowMo time.Duration `yaml:"slowMo"`
	// Install downloads the Playwright driver and browsers before launching.
	Install bool `yaml:"install"`

	DefaultTimeout    time.Duration `yaml:"defaultTimeout"`
	NavigationTimeout time.Duration `yaml:"navigationTimeout"`
}

// DBConfig configures the ticketing store that is reset between booking tests.
type DBConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Dialect string `yaml:"dialect"`
}

// Enabled reports whether a database is configured.
func (c DBConfig) Enabled() bool {
	return c.DSN != ""
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Username:  DefaultUsername,
		Password:  DefaultPassword,
		StatePath: ".auth/state.json",
		TokenPath: ".auth/token.json",
		Browser: BrowserConfig{
			Name:              "chromium",
			Headless:          true,
			Install:           true,
			DefaultTimeout:    15 * time.Second,
			NavigationTimeout: 30 * time.Second,
		},
		DB: DBConfig{
			Driver:  "sqlite",
			Dialect: "sqlite",
		},
	}
}

// Load builds the configuration. path names an optional YAML file; a missing
// file is only an error if path was given explicitly. envFile names an optional
// dotenv file whose values never override variables already set in the process.
func Load(path string, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = cfg.BaseURL
	}

	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("CINEMA_BASE_URL", &cfg.BaseURL)
	str("CINEMA_API_BASE_URL", &cfg.APIBaseURL)
	str("PW_USERNAME", &cfg.Username)
	str("PW_PASSWORD", &cfg.Password)
	str("CINEMA_STATE_FILE", &cfg.StatePath)
	str("CINEMA_TOKEN_FILE", &cfg.TokenPath)
	str("CINEMA_BROWSER", &cfg.Browser.Name)
	str("CINEMA_DB_DRIVER", &cfg.DB.Driver)
	str("CINEMA_DB_DSN", &cfg.DB.DSN)
	str("CINEMA_DB_DIALECT", &cfg.DB.Dialect)

	if v, ok := lookup("HEADLESS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS value %q: %w", v, err)
		}
		cfg.Browser.Headless = b
	}
	if v, ok := lookup("CINEMA_INSTALL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CINEMA_INSTALL value %q: %w", v, err)
		}
		cfg.Browser.Install = b
	}
	if v, ok := lookup("CINEMA_SLOWMO"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CINEMA_SLOWMO value %q: %w", v, err)
		}
		cfg.Browser.SlowMo = d
	}

	return nil
}
