package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig         `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Mongo       MongoConfig       `yaml:"mongo"`
	Redis       RedisConfig       `yaml:"redis"`
	Google      GoogleConfig      `yaml:"google"`
	Collections CollectionsConfig `yaml:"collections"`
	Sweep       SweepConfig       `yaml:"sweep"`
	Logging     LoggingConfig     `yaml:"logging"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port              int     `yaml:"port"`
	ReadHeaderTimeout int     `yaml:"read_header_timeout"`
	WriteTimeout      int     `yaml:"write_timeout"`
	RateLimitRPS      float64 `yaml:"rate_limit_rps"`
	RateLimitBurst    int     `yaml:"rate_limit_burst"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// GoogleConfig identifies the project whose Cloud Scheduler jobs and
// FCM endpoint this service drives. The credentials file is a service
// account key shared by both APIs.
type GoogleConfig struct {
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"`
	CredentialsFile string `yaml:"credentials_file"`
}

type CollectionsConfig struct {
	Users         string `yaml:"users"`
	Bookings      string `yaml:"bookings"`
	Cancelled     string `yaml:"cancelled"`
	Notifications string `yaml:"notifications"`
}

type SweepConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
	Timezone string `yaml:"timezone"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
}

// Load reads the YAML config, expanding ${VAR} references from the
// environment (a .env file is honored when present).
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expanded, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo uri is required")
	}
	if c.Google.ProjectID == "" {
		return errors.New("google project id is required")
	}
	if c.Google.Location == "" {
		return errors.New("google location is required")
	}
	if c.Sweep.Enabled {
		if _, err := time.ParseDuration(c.Sweep.Interval); err != nil {
			return fmt.Errorf("invalid sweep interval %q: %w", c.Sweep.Interval, err)
		}
		if _, err := time.LoadLocation(c.Sweep.Timezone); err != nil {
			return fmt.Errorf("invalid sweep timezone %q: %w", c.Sweep.Timezone, err)
		}
	}
	return nil
}

// SweepInterval returns the parsed cadence; call after Validate.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.Sweep.Interval)
	if err != nil {
		return time.Hour
	}
	return d
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ridesync"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "ride_app"
	}
	if c.Collections.Users == "" {
		c.Collections.Users = "users"
	}
	if c.Collections.Bookings == "" {
		c.Collections.Bookings = "bookingRequest"
	}
	if c.Collections.Cancelled == "" {
		c.Collections.Cancelled = "cancelledBooking"
	}
	if c.Collections.Notifications == "" {
		c.Collections.Notifications = "notifications"
	}
	if c.Sweep.Interval == "" {
		c.Sweep.Interval = "1h"
	}
	if c.Sweep.Timezone == "" {
		c.Sweep.Timezone = "Indian/Antananarivo"
	}
}
