package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Cache struct {
		Backend  string        `yaml:"backend"` // memory or redis
		RouteTTL time.Duration `yaml:"route_ttl"`
		Redis    struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Geocoding struct {
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Profile     string        `yaml:"profile"`
		Timeout     time.Duration `yaml:"timeout"`
		KnownCities []string      `yaml:"known_cities"`
		Region      struct {
			Country string  `yaml:"country"`
			MinLat  float64 `yaml:"min_lat"`
			MaxLat  float64 `yaml:"max_lat"`
			MinLng  float64 `yaml:"min_lng"`
			MaxLng  float64 `yaml:"max_lng"`
		} `yaml:"region"`
	} `yaml:"geocoding"`
	Providers struct {
		Enabled     []string      `yaml:"enabled"`
		CallTimeout time.Duration `yaml:"call_timeout"`
	} `yaml:"providers"`
	Resilience struct {
		FailureThreshold int           `yaml:"failure_threshold"`
		SuccessThreshold int           `yaml:"success_threshold"`
		RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
		HalfOpenMaxCalls int           `yaml:"half_open_max_calls"`
		Retry            struct {
			MaxAttempts int           `yaml:"max_attempts"`
			BaseDelay   time.Duration `yaml:"base_delay"`
			MaxDelay    time.Duration `yaml:"max_delay"`
		} `yaml:"retry"`
	} `yaml:"resilience"`
	RateStream struct {
		URL            string        `yaml:"url"`
		APIKey         string        `yaml:"api_key"`
		Lanes          []string      `yaml:"lanes"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"rate_stream"`
	Events struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		Compression  string   `yaml:"compression"`
		RequiredAcks int      `yaml:"required_acks"`
	} `yaml:"events"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled"`
		Capacity     float64 `yaml:"capacity"`
		RefillPerSec float64 `yaml:"refill_per_sec"`
	} `yaml:"rate_limit"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("ORS_API_KEY"); v != "" {
		c.Geocoding.APIKey = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RATE_STREAM_API_KEY"); v != "" {
		c.RateStream.APIKey = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.RouteTTL == 0 {
		c.Cache.RouteTTL = time.Hour
	}
	if c.Geocoding.Profile == "" {
		c.Geocoding.Profile = "driving-car"
	}
	if c.Geocoding.Timeout == 0 {
		c.Geocoding.Timeout = 10 * time.Second
	}
	if c.Providers.CallTimeout == 0 {
		c.Providers.CallTimeout = 5 * time.Second
	}
	if c.Resilience.FailureThreshold == 0 {
		c.Resilience.FailureThreshold = 5
	}
	if c.Resilience.SuccessThreshold == 0 {
		c.Resilience.SuccessThreshold = 2
	}
	if c.Resilience.RecoveryTimeout == 0 {
		c.Resilience.RecoveryTimeout = 30 * time.Second
	}
	if c.Resilience.HalfOpenMaxCalls == 0 {
		c.Resilience.HalfOpenMaxCalls = 1
	}
	if c.Resilience.Retry.MaxAttempts == 0 {
		c.Resilience.Retry.MaxAttempts = 3
	}
	if c.Resilience.Retry.BaseDelay == 0 {
		c.Resilience.Retry.BaseDelay = 200 * time.Millisecond
	}
	if c.Resilience.Retry.MaxDelay == 0 {
		c.Resilience.Retry.MaxDelay = 5 * time.Second
	}
	// Service region defaults to Colombia.
	if c.Geocoding.Region.Country == "" {
		c.Geocoding.Region.Country = "CO"
		c.Geocoding.Region.MinLat = -4.3
		c.Geocoding.Region.MaxLat = 13.5
		c.Geocoding.Region.MinLng = -81.8
		c.Geocoding.Region.MaxLng = -66.8
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Providers.Enabled) == 0 {
		return fmt.Errorf("providers.enabled cannot be empty")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Geocoding.BaseURL != "" && c.Geocoding.APIKey == "" {
		return fmt.Errorf("geocoding.api_key is required when geocoding.base_url is set")
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("events.brokers cannot be empty when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("events.topic is required when events are enabled")
		}
	}
	return nil
}
