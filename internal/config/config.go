// Package config provides hierarchical application configuration:
// defaults, an optional YAML config file, and NFE_-prefixed environment
// variables, in increasing order of precedence.
package config

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Address      string `mapstructure:"address" yaml:"address"`
		Debug        bool   `mapstructure:"debug" yaml:"debug"`
		ReadTimeout  int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		WriteTimeout int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	} `mapstructure:"server" yaml:"server"`

	Regime struct {
		RBT12 float64 `mapstructure:"rbt12" yaml:"rbt12"`
		Annex string  `mapstructure:"annex" yaml:"annex"`
	} `mapstructure:"regime" yaml:"regime"`

	Reference struct {
		// File points to the YAML reference data set (CEST table, ST
		// prefixes, rate constants). Empty means built-in defaults.
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"reference" yaml:"reference"`
}

// Load initializes configuration with hierarchical precedence.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.nfe-analyzer")
		v.AddConfigPath(".nfe-analyzer")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("NFE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return nil, err
		}
		// no config file is fine, defaults and env vars apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("regime.rbt12", 180000.0)
	v.SetDefault("regime.annex", "Anexo I")
	v.SetDefault("reference.file", "")
}

// ConfigureLogging sets up the shared logrus logger from the config.
func (c *Config) ConfigureLogging() *logrus.Logger {
	logger := logrus.StandardLogger()

	level, err := logrus.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", c.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.ToLower(c.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
