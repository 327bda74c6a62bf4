package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application settings. It mirrors config.yaml; every key
// can also be overridden through environment variables (SERVER_PORT,
// WAR_START_TIME, ...).
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	War      WarConfig      `mapstructure:"war"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// WarConfig drives the Vibe War scheduler.
type WarConfig struct {
	// StartTime is the daily wall-clock time ("HH:MM") when a new war
	// opens for voting. The war then runs until midnight.
	StartTime string `mapstructure:"startTime"`
	// Timezone is the civil timezone the contest day is defined in.
	Timezone string `mapstructure:"timezone"`
	// RecentVibeSample is how many of a contestant's newest visible
	// vibes the selector draws from.
	RecentVibeSample int `mapstructure:"recentVibeSample"`
}

// Load finds and parses config.yaml, applies defaults and environment
// overrides, and returns the resulting Config. A missing config file is
// fine; defaults plus environment variables are enough to run.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "slaymeter")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "slaymeter")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("war.startTime", "11:10")
	v.SetDefault("war.timezone", "Asia/Baku")
	v.SetDefault("war.recentVibeSample", 5)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; only a malformed one is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
