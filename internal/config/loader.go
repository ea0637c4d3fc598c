package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envConfigDefaultPath = "CHANSERV_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars. Callers apply flag overrides with UpdateFrom.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()
	configPath := resolveConfigPath(explicitPath)

	v, err := newViper(cfg, configPath)
	if err != nil {
		return cfg, configPath, err
	}
	if err := readConfig(v, logger, configPath, cfg); err != nil {
		return cfg, configPath, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, configPath, err
	}

	return cfg, configPath, nil
}

// envPrefix scopes environment overrides, e.g. CHANSERV_LOG_LEVEL.
const envPrefix = "CHANSERV"

// newViper registers every Config key with its default so that each one can
// be overridden from the environment.
func newViper(defaults Config, path string) (*viper.Viper, error) {
	keys := map[string]any{}
	if err := mapstructure.Decode(defaults, &keys); err != nil {
		return nil, fmt.Errorf("collect config defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range keys {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(path)
	return v, nil
}

// readConfig reads the file at path, first writing defaults there when it
// does not exist yet.
func readConfig(v *viper.Viper, logger *zerolog.Logger, path string, defaults Config) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}

	if writeErr := writeDefaultConfig(path, defaults); writeErr != nil {
		if logger != nil {
			logger.Warn().Err(writeErr).Str("path", path).Msg("failed to write default config")
		}
		return nil
	}
	if logger != nil {
		logger.Info().Str("path", path).Msg("created default config")
	}
	if readErr := v.ReadInConfig(); readErr != nil && logger != nil {
		logger.Warn().Err(readErr).Str("path", path).Msg("failed to read config after writing default")
	}
	return nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
