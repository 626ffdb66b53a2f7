package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix prefixes every environment variable read by Load.
const DefaultEnvPrefix = "ZENJECT"

// LoaderConfig holds optional file locations for Load.
type LoaderConfig struct {
	ConfigFile string // YAML/JSON/TOML file read by viper (optional)
	EnvFile    string // .env file loaded into the process environment (optional)
	EnvPrefix  string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides DefaultEnvPrefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Load builds Settings from defaults, then the config file, then the environment.
// Variables from the .env file never override variables already set.
func Load(opts ...LoaderOption) (Settings, error) {
	lc := LoaderConfig{EnvPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()
	setDefaults(v, Default())

	if lc.EnvFile != "" {
		if _, err := os.Stat(lc.EnvFile); err != nil {
			return Settings{}, fmt.Errorf("env file %s: %w", lc.EnvFile, err)
		}
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return Settings{}, fmt.Errorf("failed to load env file %s: %w", lc.EnvFile, err)
		}
	}

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config file %s: %w", lc.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(lc.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s, viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// setDefaults registers every key so that AutomaticEnv can override keys that
// are absent from the config file.
func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("validation_error_response", d.ValidationErrorResponse.String())
	v.SetDefault("validation_root_resolve_method", d.ValidationRootResolveMethod.String())
	v.SetDefault("display_warning_when_resolving_during_install", d.DisplayWarningWhenResolvingDuringInstall)
	v.SetDefault("default_pool.initial_size", d.DefaultPool.InitialSize)
	v.SetDefault("default_pool.max_size", d.DefaultPool.MaxSize)
	v.SetDefault("default_pool.expand_method", d.DefaultPool.ExpandMethod.String())
}
