// Package config loads CoreLab settings from defaults, an optional YAML file
// and CORELAB_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfig         = "CORELAB_CONFIG"
	EnvDB             = "CORELAB_DB"
	EnvAddr           = "CORELAB_ADDR"
	EnvServerURL      = "CORELAB_SERVER_URL"
	EnvLogLevel       = "CORELAB_LOG_LEVEL"
	EnvLogFile        = "CORELAB_LOG_FILE"
	EnvRequestTimeout = "CORELAB_REQUEST_TIMEOUT"
)

// Config holds all CoreLab settings.
type Config struct {
	DBPath string       `yaml:"db" validate:"required"`
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Log    LogConfig    `yaml:"log"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

// ServerConfig configures `corelab serve`.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"min=0"`
	EventLogSize    int           `yaml:"event_log_size" validate:"min=0"`
	CORSOrigins     []string      `yaml:"cors_origins" validate:"dive,required"`
}

// ClientConfig selects a remote backend instead of the local database.
type ClientConfig struct {
	ServerURL string `yaml:"server_url" validate:"omitempty,url"`
	// RequestTimeout bounds each HTTP call. Zero means no timeout.
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"min=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// Dir returns the CoreLab home directory, ~/.corelab.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".corelab")
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DBPath: filepath.Join(Dir(), "corelab.db"),
		Server: ServerConfig{
			Addr:            "127.0.0.1:7777",
			ShutdownTimeout: 10 * time.Second,
			EventLogSize:    256,
		},
		Log: LogConfig{
			Level: "info",
		},
		LoadedFrom: []string{"defaults"},
	}
}

// Load builds the configuration. path names a YAML file that must exist;
// when empty, $CORELAB_CONFIG is used, then ~/.corelab/config.yaml if it is
// present.
func Load(path string) (*Config, error) {
	cfg := Default()

	required := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = filepath.Join(Dir(), "config.yaml")
		required = false
	}

	if err := cfg.loadFile(path); err != nil {
		if required || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.LoadedFrom = append(c.LoadedFrom, path)
	return nil
}

func (c *Config) loadEnv() error {
	applied := false
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
			applied = true
		}
	}
	set(EnvDB, &c.DBPath)
	set(EnvAddr, &c.Server.Addr)
	set(EnvServerURL, &c.Client.ServerURL)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvLogFile, &c.Log.File)

	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		c.Client.RequestTimeout = d
		applied = true
	}

	if applied {
		c.LoadedFrom = append(c.LoadedFrom, "environment")
	}
	return nil
}

// parseDuration accepts Go durations ("1m30s") or whole seconds ("90").
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
