// Package gwconfig loads and validates the gateway's static configuration:
// server bind address, backing store location, the account the gateway
// writes metadata records under, and the logging/telemetry/metrics
// sub-configs. Configuration sources, highest precedence first:
//
//  1. Environment variables (S3GW_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// The only CLI flag, cmd/s3gw's --config, selects the file; no flag
// overrides an individual setting.
package gwconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ajay-paratmandali/s3gw/internal/gwbytesize"
)

// Config is the gateway's static configuration.
type Config struct {
	// Server configures the HTTP listener and graceful shutdown.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Store configures the backing metadata index and object container.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Account is the account name the gateway attributes written objects to.
	// There is no multi-tenant auth in this gateway; it is a single
	// configured identity, not a per-request credential.
	Account string `mapstructure:"account" validate:"required" yaml:"account"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls the Prometheus metrics endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// BindAddress is the host:port the gateway listens on.
	BindAddress string `mapstructure:"bind_address" validate:"required" yaml:"bind_address"`

	// ShutdownTimeout is the maximum time to wait for in-flight requests
	// to drain during graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// RequestTimeout bounds how long a single request may run before the
	// router's Timeout middleware cancels its context.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required,gt=0" yaml:"request_timeout"`
}

// StoreConfig configures the backing metadata index and object container.
type StoreConfig struct {
	// Backend selects the storage implementation: "memory", "file", or
	// "badger+file". "memory" is for local development and tests only.
	Backend string `mapstructure:"backend" validate:"required,oneof=memory file badger+file" yaml:"backend"`

	// IndexDir is the Badger data directory for metadata records. Used
	// only when Backend is "badger+file".
	IndexDir string `mapstructure:"index_dir" yaml:"index_dir,omitempty"`

	// ContainerDir is the root directory under which one file per object
	// id is written. Unused when Backend is "memory".
	ContainerDir string `mapstructure:"container_dir" yaml:"container_dir,omitempty"`

	// MaxObjectSize is parsed and defaulted (5 TiB) but not read by the
	// put-part path; a part's content length is checked only against
	// gwmetadata's fixed 5 TiB ceiling.
	// Supports human-readable sizes: "5Gi", "100Mi".
	MaxObjectSize gwbytesize.ByteSize `mapstructure:"max_object_size" yaml:"max_object_size,omitempty"`
}

// LoggingConfig controls logging behavior. Mirrors logger.Config with
// struct tags for decoding; gwconfig.Load never imports internal/logger
// so the config layer stays independent of the logging implementation.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is the log output encoding: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether the OTLP gRPC connection skips TLS.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling rate, 0.0 to 1.0.
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the /metrics
	// endpoint are active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port the metrics endpoint is served on.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

var validate = validator.New()

// Load loads configuration from the file, lets S3GW_* environment
// variables override keys the file sets, fills the rest with defaults, and
// validates the result. When no config file is found it returns the
// defaults without reading the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, producing an actionable error if no config
// file exists at the resolved path.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"create one there, or specify a custom config file:\n"+
				"  s3gw serve --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML, creating parent directories as
// needed. File permissions are restricted since Account may be considered
// sensitive deployment metadata.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate runs struct validation tags over cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if (cfg.Store.Backend == "file" || cfg.Store.Backend == "badger+file") && cfg.Store.ContainerDir == "" {
		return fmt.Errorf("store.container_dir is required for backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "badger+file" && cfg.Store.IndexDir == "" {
		return fmt.Errorf("store.index_dir is required for backend %q", cfg.Store.Backend)
	}
	return nil
}

// GetDefaultConfig returns the configuration used when no config file is
// present: in-memory store, text logging to stdout, tracing and metrics
// both disabled.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields of cfg with defaults. Called
// after unmarshaling a partial config file so unset fields still get a
// sane value rather than Go's zero value.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.BindAddress == "" {
		cfg.Server.BindAddress = "0.0.0.0:8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 5 * time.Minute
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Store.MaxObjectSize == 0 {
		cfg.Store.MaxObjectSize = 5 * gwbytesize.TiB
	}
	if cfg.Account == "" {
		cfg.Account = "default"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
}

// setupViper configures environment variable and config file handling.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("S3GW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the config file if present. A missing file is not
// an error; the caller falls back to defaults.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks composes the custom mapstructure decode hooks this
// config needs beyond viper's defaults.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to gwbytesize.ByteSize,
// so config files can write "5Gi" instead of a raw byte count.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(gwbytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return gwbytesize.ParseByteSize(v)
		case int:
			return gwbytesize.ByteSize(v), nil
		case int64:
			return gwbytesize.ByteSize(v), nil
		case uint64:
			return gwbytesize.ByteSize(v), nil
		case float64:
			return gwbytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the directory config files are discovered in,
// honoring XDG_CONFIG_HOME with a ~/.config fallback.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "s3gw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "s3gw")
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir exposes the config directory for an init-style command.
func GetConfigDir() string {
	return getConfigDir()
}
