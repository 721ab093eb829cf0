package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every labelscan environment variable
const EnvPrefix = "LABELSCAN"

// LoadWithViper loads configuration using Viper
func LoadWithViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	setupEnvBinding(v)

	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("output.format", "table")
	v.SetDefault("output.quiet", false)
	v.SetDefault("output.no_color", false)
	v.SetDefault("scan.workers", 1)
	v.SetDefault("scan.carriers", DefaultCarriers)
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.path", DefaultCachePath)
	v.SetDefault("cache.ttl", DefaultCacheTTL.String())
}

// setupEnvBinding binds LABELSCAN_* environment variables
func setupEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"log.level":       "LOG_LEVEL",
		"output.format":   "FORMAT",
		"output.quiet":    "QUIET",
		"output.no_color": "NO_COLOR",
		"scan.workers":    "WORKERS",
		"scan.carriers":   "CARRIERS",
		"cache.disabled":  "CACHE_DISABLED",
		"cache.path":      "CACHE_PATH",
		"cache.ttl":       "CACHE_TTL",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, EnvPrefix+"_"+envSuffix)
	}

	// NO_COLOR is honoured as a de facto standard
	v.BindEnv("output.no_color", EnvPrefix+"_NO_COLOR", "NO_COLOR")
}

// loadConfigFile reads labelscan.{yaml,json,toml} if one exists
func loadConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME")
		v.SetConfigName("labelscan")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

// unmarshalConfig copies Viper values into Config
func unmarshalConfig(v *viper.Viper, config *Config) error {
	config.LogLevel = v.GetString("log.level")
	config.Format = v.GetString("output.format")
	config.Quiet = v.GetBool("output.quiet")
	config.NoColor = v.GetBool("output.no_color")
	config.Workers = v.GetInt("scan.workers")
	config.DisableCache = v.GetBool("cache.disabled")
	config.CachePath = v.GetString("cache.path")

	// Lists come from the file as arrays and from the environment as "a,b,c"
	switch raw := v.Get("scan.carriers").(type) {
	case string:
		config.Carriers = parseList(raw)
	default:
		for _, name := range v.GetStringSlice("scan.carriers") {
			config.Carriers = append(config.Carriers, parseList(name)...)
		}
	}

	ttl, err := parseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	config.CacheTTL = ttl

	return nil
}

// Load loads configuration from .env, the environment and an optional config file
func Load() (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	return LoadWithViper(viper.New())
}

// LoadWithFile loads configuration from a specific file
func LoadWithFile(configFile string) (*Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadWithViper(v)
}
