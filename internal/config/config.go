package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"load-optimizer/internal/domain"
)

// MaxOrdersLimit is the widest candidate set the optimiser's bitmask holds.
const MaxOrdersLimit = 63

type Config struct {
	Port           string        `yaml:"port"`
	BodyLimit      int           `yaml:"body_limit"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxOrders      int           `yaml:"max_orders"`
	MaxWindowDays  int           `yaml:"max_window_days"`
	CacheSize      int           `yaml:"cache_size"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	RedisURL       string        `yaml:"redis_url"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

func Default() Config {
	return Config{
		Port:           "8080",
		BodyLimit:      1 * 1024 * 1024,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxOrders:      25,
		MaxWindowDays:  30,
		CacheSize:      1000,
		CacheTTL:       10 * time.Minute,
		RateLimitRPS:   50,
		RateLimitBurst: 100,
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, then environment variables (a .env file is read first if present).
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"BODY_LIMIT", &c.BodyLimit},
		{"MAX_ORDERS", &c.MaxOrders},
		{"MAX_WINDOW_DAYS", &c.MaxWindowDays},
		{"CACHE_SIZE", &c.CacheSize},
		{"RATE_LIMIT_BURST", &c.RateLimitBurst},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", e.key, err)
		}
		*e.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"READ_TIMEOUT", &c.ReadTimeout},
		{"WRITE_TIMEOUT", &c.WriteTimeout},
		{"CACHE_TTL", &c.CacheTTL},
	}
	for _, e := range durations {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", e.key, err)
		}
		*e.dst = d
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("config: port is required")
	case c.MaxOrders <= 0 || c.MaxOrders > MaxOrdersLimit:
		return fmt.Errorf("config: max_orders must be in 1..%d (got %d)", MaxOrdersLimit, c.MaxOrders)
	case c.MaxWindowDays < 0 || c.MaxWindowDays > domain.MaxWindowDaysLimit:
		return fmt.Errorf("config: max_window_days must be in 0..%d (got %d)", domain.MaxWindowDaysLimit, c.MaxWindowDays)
	case c.BodyLimit <= 0:
		return fmt.Errorf("config: body_limit must be positive")
	case c.CacheSize <= 0:
		return fmt.Errorf("config: cache_size must be positive")
	case c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0:
		return fmt.Errorf("config: rate limit must be positive")
	}
	return nil
}
