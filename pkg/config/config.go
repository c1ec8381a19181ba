// Package config loads the coordinator's and storage node's static
// configuration, grounded on the teacher's pkg/config package: a YAML
// file plus environment-variable overrides bound through spf13/viper and
// mitchellh/mapstructure, validated with go-playground/validator/v10.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level static configuration for a netdoc-coordinatord
// or netdoc-storaged process.
//
// Configuration precedence (highest to lowest), mirroring the teacher's
// pkg/config.Load:
//  1. Environment variables (NETDOC_*), for keys the configuration file sets
//  2. Configuration file (YAML)
//  3. Default values (Default)
//
// A NETDOC_* variable whose key is absent from the configuration file is
// ignored, and with no configuration file Load returns Default() without
// reading the environment.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database" validate:"required"`
	Limits   LimitsConfig   `mapstructure:"limits" yaml:"limits" validate:"required"`

	// Storage configures netdoc-storaged's blob backend and its
	// registration against a coordinator. Zero value everywhere for
	// netdoc-coordinatord, which never reads this section.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Telemetry controls OpenTelemetry distributed tracing across the
	// client → coordinator → storage-node call chain. Opt-in: disabled
	// processes run with a no-op tracer.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Lock has no fields: the sentence lock table has no configurable TTL
	// in the scoped core (spec.md §4.3 — lock lifetime equals the owning
	// session's lifetime, nothing to tune). Present as a documented
	// absence rather than silently missing a section other config
	// structs in this repository's family would have.
}

// LoggingConfig controls internal/logger's output (spec.md's ambient
// logging stack).
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// ServerConfig covers the process's network endpoints.
type ServerConfig struct {
	// ListenAddress is the primary protocol port: the coordinator's
	// client/storage-node wire listener, or a storage node's content
	// listener.
	ListenAddress string `mapstructure:"listen_address" yaml:"listen_address" validate:"required,hostname_port"`

	// AdminAddress serves the go-chi admin HTTP surface
	// (/healthz, /metricz, /debug/catalog) — coordinator only.
	AdminAddress string `mapstructure:"admin_address" yaml:"admin_address" validate:"omitempty,hostname_port"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required,gt=0"`
}

// DatabaseConfig selects and configures the catalog.Store backend.
type DatabaseConfig struct {
	// Type is "memory" or "postgres".
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory postgres"`

	// DSN is the PostgreSQL connection string, required when Type is
	// "postgres" and ignored otherwise.
	DSN string `mapstructure:"dsn" yaml:"dsn" validate:"required_if=Type postgres"`
}

// StorageConfig is netdoc-storaged's own section: which blob backend to
// open, and how to announce itself to a coordinator.
type StorageConfig struct {
	// Backend is "badger" or "s3".
	Backend string `mapstructure:"backend" yaml:"backend" validate:"omitempty,oneof=badger s3"`

	// BadgerDir is the on-disk directory for the badger backend.
	BadgerDir string `mapstructure:"badger_dir" yaml:"badger_dir"`

	// S3 configures the s3 backend; ignored otherwise.
	S3 S3Config `mapstructure:"s3" yaml:"s3"`

	// CoordinatorAddress is the coordinator to REGISTER_SS against and
	// send periodic HEARTBEATs to.
	CoordinatorAddress string `mapstructure:"coordinator_address" yaml:"coordinator_address"`

	// AdvertiseAddress is the "host:port" this node reports to the
	// coordinator at registration time — it may differ from
	// Server.ListenAddress behind NAT.
	AdvertiseAddress string `mapstructure:"advertise_address" yaml:"advertise_address"`
}

// S3Config mirrors pkg/storagenode/blobstore/s3.Config; kept separate so
// pkg/config has no import-cycle dependence on the blobstore package.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	Region          string `mapstructure:"region" yaml:"region"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	KeyPrefix       string `mapstructure:"key_prefix" yaml:"key_prefix"`
	ForcePathStyle  bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing, grounded
// on the teacher's pkg/config.TelemetryConfig (trimmed of the Pyroscope
// profiling sub-section, which has no equivalent component here — see
// DESIGN.md).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled. Default
	// false: a disabled process uses a no-op tracer, costing nothing per
	// request.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to dial the collector without TLS.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling rate: 1.0 samples everything,
	// 0.0 samples nothing.
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"omitempty,gte=0,lte=1"`
}

// LimitsConfig carries the resource caps spec.md §5 requires: "fixed
// upper bounds exist for concurrent clients, registered users, live
// storage nodes, and outstanding sentence locks."
type LimitsConfig struct {
	MaxConnections  int `mapstructure:"max_connections" yaml:"max_connections" validate:"required,gt=0"`
	MaxUsers        int `mapstructure:"max_users" yaml:"max_users" validate:"required,gt=0"`
	MaxStorageNodes int `mapstructure:"max_storage_nodes" yaml:"max_storage_nodes" validate:"required,gt=0"`
	MaxLocks        int `mapstructure:"max_locks" yaml:"max_locks" validate:"required,gt=0"`
	MaxNameLength   int `mapstructure:"max_name_length" yaml:"max_name_length" validate:"required,gt=0"`

	// HeartbeatInterval/HeartbeatTimeout drive the coordinator's
	// liveness reaper (spec.md §9's "a reimplementation should add a
	// heartbeat timeout that flips the bit"). Timeout defaults to 3x
	// the interval in Default().
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" yaml:"heartbeat_interval" validate:"required,gt=0"`
	HeartbeatTimeout  time.Duration `mapstructure:"heartbeat_timeout" yaml:"heartbeat_timeout" validate:"required,gt=0"`
}

// Default returns the baseline configuration used when no config file is
// present, mirroring the teacher's GetDefaultConfig.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
		Server: ServerConfig{
			ListenAddress:   "0.0.0.0:9000",
			AdminAddress:    "127.0.0.1:9090",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Type: "memory"},
		Storage: StorageConfig{
			Backend:            "badger",
			BadgerDir:          "./data/blobs",
			CoordinatorAddress: "127.0.0.1:9000",
			AdvertiseAddress:   "127.0.0.1:9001",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			Endpoint:   "localhost:4317",
			Insecure:   true,
			SampleRate: 1.0,
		},
		Limits: LimitsConfig{
			MaxConnections:    1024,
			MaxUsers:          4096,
			MaxStorageNodes:   64,
			MaxLocks:          100000,
			MaxNameLength:     255,
			HeartbeatInterval: 10 * time.Second,
			HeartbeatTimeout:  30 * time.Second,
		},
	}
}

// Load reads configuration from configPath (a YAML file) over Default(),
// lets NETDOC_-prefixed environment variables override the keys that file
// sets, and validates the result. When no configuration file is found,
// Default() is validated and returned; environment variables are not read.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if found {
		if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		))); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate runs go-playground/validator's struct tags over cfg. This is a
// deliberate departure from the teacher, whose own go.mod lists
// go-playground/validator/v10 as a dependency but never calls it; every
// hand-rolled field check the teacher does instead (oneof, required,
// range) is expressed here as struct tags and actually enforced.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("NETDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		return false, fmt.Errorf("read config file: %w", err)
	}
	return true, nil
}
