// Package config loads glasshouse's configuration from a YAML config file,
// GLASSHOUSE_* environment variables, and defaults. No CLI flags other than
// the config file path are merged into the configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/glasshouse/pkg/store"
	"github.com/marmos91/glasshouse/pkg/store/blobstore"
)

// Config represents glasshouse's full configuration surface: the SSH
// listener set, the persistence backend, the filesystem's seed archive,
// the enrichment providers, and the ambient logging/telemetry/metrics
// stack.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (GLASSHOUSE_*), for keys present in the file
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// When no config file is found, the defaults are returned unchanged and
// environment variables are not applied. CLI flags are not merged; the
// --config flag only selects which file is read.
type Config struct {
	// Interfaces is the list of "host:port" addresses the SSH listener
	// binds. Each gets its own acceptor goroutine. Default: [":2222"].
	Interfaces []string `mapstructure:"interfaces" yaml:"interfaces" validate:"required,min=1"`

	// Hostname is the name the shell prompt and `uname -n` report.
	Hostname string `mapstructure:"hostname" yaml:"hostname"`

	// ServerID identifies this instance in recorded evidence, useful when
	// several honeypots feed one database.
	ServerID string `mapstructure:"server_id" yaml:"server_id" validate:"required"`

	// AuthenticationBanner is sent to clients before authentication, as
	// the SSH protocol's pre-auth banner.
	AuthenticationBanner string `mapstructure:"authentication_banner" yaml:"authentication_banner"`

	// WelcomeMessage is printed once a session is established, before the
	// first prompt (the honeypot's MOTD).
	WelcomeMessage string `mapstructure:"welcome_message" yaml:"welcome_message"`

	// RejectAllAuth rejects every authentication attempt instead of the
	// default accept-everything policy. Attempts are still recorded.
	RejectAllAuth bool `mapstructure:"reject_all_auth" yaml:"reject_all_auth"`

	// DisableCLIInterface rejects every authentication attempt (attempts
	// are still recorded), so neither the shell nor SFTP is served.
	DisableCLIInterface bool `mapstructure:"disable_cli_interface" yaml:"disable_cli_interface"`

	// EnableSFTP turns on the SFTP subsystem handler alongside the shell.
	EnableSFTP bool `mapstructure:"enable_sftp" yaml:"enable_sftp"`

	// KeyFolder is the directory host keys are loaded from (or generated
	// into, on first run). Default: $XDG_DATA_HOME/glasshouse/keys.
	KeyFolder string `mapstructure:"key_folder" yaml:"key_folder"`

	// ServerVersion is the SSH identification string offered during the
	// protocol banner exchange. Default: "SSH-2.0-OpenSSH_8.2p1 Ubuntu-4ubuntu0.4".
	ServerVersion string `mapstructure:"server_version" yaml:"server_version"`

	// IdleTimeout closes a session's channel when no data callback has
	// fired for this long.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// DisableSoReusePort disables SO_REUSEPORT on the listening sockets.
	DisableSoReusePort bool `mapstructure:"disable_so_reuseport" yaml:"disable_so_reuseport"`

	// DisableSoReuseAddr disables SO_REUSEADDR on the listening sockets.
	DisableSoReuseAddr bool `mapstructure:"disable_so_reuseaddr" yaml:"disable_so_reuseaddr"`

	// DisableBaseTarGzLoading skips seeding the in-memory filesystem from
	// BaseTarGzPath, leaving the synthetic directory tree as the only
	// content.
	DisableBaseTarGzLoading bool `mapstructure:"disable_base_tar_gz_loading" yaml:"disable_base_tar_gz_loading"`

	// BaseTarGzPath is the gzip+tar archive ingested into the in-memory
	// filesystem at startup, unless DisableBaseTarGzLoading is set.
	BaseTarGzPath string `mapstructure:"base_tar_gz_path" yaml:"base_tar_gz_path"`

	// Tarpit controls the slow-write deception layer.
	Tarpit TarpitConfig `mapstructure:"tarpit" yaml:"tarpit"`

	// Database configures the persistence actor's backing store.
	Database store.Config `mapstructure:"database" yaml:"database"`

	// Blobstore holds the S3-compatible storage settings. The upload path
	// does not read them: uploaded file bytes are always stored in the
	// database blob column.
	Blobstore BlobstoreConfig `mapstructure:"blobstore" yaml:"blobstore"`

	// Reputation configures the AbuseIPDB enrichment client.
	Reputation ReputationConfig `mapstructure:"reputation" yaml:"reputation"`

	// Geolocation configures the ip-api.com enrichment client.
	Geolocation GeolocationConfig `mapstructure:"geolocation" yaml:"geolocation"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing and Pyroscope
	// profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics controls the Prometheus metrics HTTP surface.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// HTTP controls the ambient /healthz and /metrics control surface.
	HTTP HTTPConfig `mapstructure:"http" yaml:"http"`

	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight sessions and the persistence actor to drain.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// TarpitConfig controls the slow-write deception layer applied to shell
// output, intended to keep low-effort scanners connected and recording.
type TarpitConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Delay is not read by the tarpit writer, which sleeps a random
	// 10–700 ms before each byte it writes.
	Delay time.Duration `mapstructure:"delay" yaml:"delay"`

	// QueueDepth bounds the per-connection tarpit writer's backlog before
	// it starts dropping writes rather than blocking the session forever.
	QueueDepth int `mapstructure:"queue_depth" yaml:"queue_depth" validate:"omitempty,min=1"`
}

// BlobstoreConfig holds settings for an S3-compatible blob store. No
// component reads it at runtime; upload bytes are stored in a database
// blob column whether or not Enabled is set.
type BlobstoreConfig struct {
	Enabled bool             `mapstructure:"enabled" yaml:"enabled"`
	S3      blobstore.Config `mapstructure:"s3" yaml:"s3"`
}

// ReputationConfig configures the AbuseIPDB enrichment client.
type ReputationConfig struct {
	// APIKey authenticates against the AbuseIPDB API. Lookups are skipped
	// entirely when empty.
	APIKey string `mapstructure:"abuse_ip_db_api_key" yaml:"abuse_ip_db_api_key"`

	// CacheCleanupIntervalHours is validated but not read by any
	// component; expired cache rows are not swept from the database.
	CacheCleanupIntervalHours int `mapstructure:"abuse_ip_cache_cleanup_interval_hours" yaml:"abuse_ip_cache_cleanup_interval_hours" validate:"omitempty,min=1"`

	// MaxAge is how long a cached AbuseIPDB result is considered fresh.
	MaxAge time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// GeolocationConfig configures the ip-api.com enrichment client.
type GeolocationConfig struct {
	// Disabled skips geolocation lookups entirely.
	Disabled bool `mapstructure:"disable_ipapi" yaml:"disable_ipapi"`

	// MaxAge is how long a cached ip-api.com result is considered fresh.
	MaxAge time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled    bool             `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string           `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool             `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64          `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig  `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus metrics. Enabled turns on collection
// and the /metrics route of the HTTP control server (HTTPConfig.Addr);
// Addr is not read.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// HTTPConfig configures the ambient health/status surface.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// Load loads configuration from file, environment, and defaults.
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
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning a user-friendly error when no
// config file exists at the resolved path.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  glasshouse init\n\n"+
				"Or specify a custom config file:\n"+
				"  glasshouse <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  glasshouse init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML form, restricted to owner
// read/write since it may carry the AbuseIPDB API key or database
// credentials.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("GLASSHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

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

// durationDecodeHook converts strings and numbers into time.Duration,
// letting config files use "30s", "5m", "1h" instead of raw nanoseconds.
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

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "glasshouse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "glasshouse")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path, exposed for the
// init command.
func GetConfigDir() string {
	return getConfigDir()
}
