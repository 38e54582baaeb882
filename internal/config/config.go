package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	NATS     NATSConfig     `yaml:"nats"`
	JWT      JWTConfig      `yaml:"jwt"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	Display  DisplayConfig  `yaml:"display"`
	Render   RenderConfig   `yaml:"render"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// APIConfig represents API configuration
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig represents the optional shared render cache. An empty Addr
// disables it and rendering falls back to the in-process cache only.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig represents NATS configuration
type NATSConfig struct {
	URL               string        `yaml:"url"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	MaxReconnects     int           `yaml:"max_reconnects"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
}

// JWTConfig represents JWT configuration for the admin API
type JWTConfig struct {
	Secret          string        `yaml:"secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

// AdminConfig is the initial management account. It is seeded on startup
// when no user with that email exists yet, so a fresh database always has
// an account that can log in.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DisplayConfig represents the device display protocol defaults
type DisplayConfig struct {
	// HostURL overrides the request-derived origin in image URLs.
	// Useful behind a proxy that does not set forwarding headers.
	HostURL string `yaml:"host_url"`

	DefaultScreen      string `yaml:"default_screen"`
	DefaultRefreshRate int    `yaml:"default_refresh_rate"`
	DefaultWidth       int    `yaml:"default_width"`
	DefaultHeight      int    `yaml:"default_height"`
	DefaultTimezone    string `yaml:"default_timezone"`
}

// RenderConfig represents the rendering pipeline configuration
type RenderConfig struct {
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Load loads configuration from file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Apply environment overrides
	cfg.applyEnvOverrides()
	cfg.setDefaults()

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}

	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		c.Redis.Addr = redisAddr
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		c.NATS.URL = natsURL
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		c.JWT.Secret = jwtSecret
	}

	if adminEmail := os.Getenv("ADMIN_EMAIL"); adminEmail != "" {
		c.Admin.Email = adminEmail
	}

	if adminPassword := os.Getenv("ADMIN_PASSWORD"); adminPassword != "" {
		c.Admin.Password = adminPassword
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Log.Level = logLevel
	}

	if hostURL := os.Getenv("HOST_URL"); hostURL != "" {
		c.Display.HostURL = hostURL
	}
}

// setDefaults fills in defaults for anything the file left unset
func (c *Config) setDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}

	if c.Display.DefaultScreen == "" {
		c.Display.DefaultScreen = "color-dashboard"
	}
	if c.Display.DefaultRefreshRate == 0 {
		c.Display.DefaultRefreshRate = 900 // 15 minutes, suitable for e-ink
	}
	if c.Display.DefaultWidth == 0 {
		c.Display.DefaultWidth = 800
	}
	if c.Display.DefaultHeight == 0 {
		c.Display.DefaultHeight = 480
	}
	if c.Display.DefaultTimezone == "" {
		c.Display.DefaultTimezone = "UTC"
	}

	if c.Render.CacheSize == 0 {
		c.Render.CacheSize = 128
	}
	if c.Render.CacheTTL == 0 {
		c.Render.CacheTTL = 15 * time.Minute
	}
	if c.Render.Timeout == 0 {
		c.Render.Timeout = 30 * time.Second
	}

	if c.Admin.Email == "" {
		c.Admin.Email = "admin@example.com"
	}
	if c.Admin.Password == "" {
		c.Admin.Password = "admin"
	}

	if c.JWT.AccessTokenTTL == 0 {
		c.JWT.AccessTokenTTL = time.Hour
	}
	if c.JWT.RefreshTokenTTL == 0 {
		c.JWT.RefreshTokenTTL = 7 * 24 * time.Hour
	}
}
