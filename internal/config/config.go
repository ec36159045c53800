// Package config loads polageo settings from an optional YAML file and
// POLAGEO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/polageo/catalog"
	"github.com/signalsfoundry/polageo/internal/logging"
	"github.com/signalsfoundry/polageo/internal/observability"
)

// EnvPrefix prefixes every environment override; "catalog.group" is read
// from POLAGEO_CATALOG_GROUP.
const EnvPrefix = "POLAGEO"

// Config is the resolved configuration of the CLI and the server.
type Config struct {
	Log     logging.Config
	Catalog catalog.Config
	Server  ServerConfig
	Tracing observability.TracingConfig
}

// ServerConfig configures cmd/polageo-server.
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	RefreshInterval time.Duration
	CORSOrigins     []string
	// Track limits the registry to these catalog names; empty keeps every
	// record of the group.
	Track []string
}

// SetDefaults installs the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("catalog.url_template", catalog.DefaultURLTemplate)
	v.SetDefault("catalog.group", catalog.DefaultGroup)
	v.SetDefault("catalog.target", catalog.DefaultTarget)
	v.SetDefault("catalog.timeout", time.Duration(0))

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.grpc_addr", ":9090")
	v.SetDefault("server.refresh_interval", 30*time.Minute)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.track", []string{})

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "polageo")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// New returns a viper instance with defaults and environment overrides
// wired, but no file read.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path when non-empty, otherwise looks for polageo.yaml in the
// working directory and ./configs, and applies environment overrides. A
// missing default file is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("polageo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return FromViper(v)
}

// FromViper resolves and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Log: logging.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Catalog: catalog.Config{
			URLTemplate: v.GetString("catalog.url_template"),
			Group:       v.GetString("catalog.group"),
			Target:      v.GetString("catalog.target"),
			Timeout:     v.GetDuration("catalog.timeout"),
		},
		Server: ServerConfig{
			HTTPAddr:        v.GetString("server.http_addr"),
			GRPCAddr:        v.GetString("server.grpc_addr"),
			RefreshInterval: v.GetDuration("server.refresh_interval"),
			CORSOrigins:     stringList(v.GetStringSlice("server.cors_origins")),
			Track:           stringList(v.GetStringSlice("server.track")),
		},
		Tracing: observability.TracingConfig{
			Enabled:     v.GetBool("tracing.enabled"),
			ServiceName: v.GetString("tracing.service_name"),
			Exporter:    v.GetString("tracing.exporter"),
			Endpoint:    v.GetString("tracing.endpoint"),
			SampleRatio: v.GetFloat64("tracing.sample_ratio"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format)
	}
	if c.Catalog.URLTemplate == "" {
		return errors.New("catalog.url_template: must not be empty")
	}
	if c.Catalog.Group == "" {
		return errors.New("catalog.group: must not be empty")
	}
	if c.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog.timeout: must not be negative, got %s", c.Catalog.Timeout)
	}
	if c.Server.RefreshInterval < 0 {
		return fmt.Errorf("server.refresh_interval: must not be negative, got %s", c.Server.RefreshInterval)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio: must be within [0,1], got %v", c.Tracing.SampleRatio)
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "stdout", "otlp", "otlpgrpc":
	default:
		return fmt.Errorf("tracing.exporter: unsupported exporter %q", c.Tracing.Exporter)
	}
	return nil
}

// stringList accepts both YAML lists and comma-separated environment values.
func stringList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
