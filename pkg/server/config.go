package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings is the web server configuration, read from a config file with
// environment overrides (PATCH_ATLAS_* variables).
type Settings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Driver          string        `mapstructure:"driver"`
	HistoryDB       string        `mapstructure:"history_db"`
	Locale          string        `mapstructure:"locale"`
	Insecure        bool          `mapstructure:"insecure"`
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
}

func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PATCH_ATLAS")
	v.AutomaticEnv()

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8080)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("driver", "apiremoting")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	return &settings, nil
}
