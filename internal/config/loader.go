package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tenancydeposit/tribunalrag/internal/domain"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "TRIBUNALRAG"

// newViper builds a pre-configured Viper instance: YAML file type,
// TRIBUNALRAG_ env prefix, automatic env binding, and a key replacer mapping
// "." to "_" so nested keys like "llm.primary_model" resolve to
// TRIBUNALRAG_LLM_PRIMARY_MODEL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the YAML file at configPath (if non-empty), merges any
// TRIBUNALRAG_* environment variable overrides, applies engine defaults for
// unset fields, and validates the result. A local .env file is loaded first
// if present, matching the teacher binaries' convention; its absence is not
// an error.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from TRIBUNALRAG_* environment
// variables and a local .env file, with no config file required.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, domain.NewError(domain.KindConfig, "config.Load", fmt.Errorf("config: validation failed: %w", err))
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file changes on disk. Intended for hot-reloading
// non-critical settings such as log level; if the changed file fails to
// parse or validate, onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on error. It is
// intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
