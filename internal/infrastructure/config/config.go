package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	ERP         ERPConfig
	Redis       RedisConfig
	PostedStore PostedStoreConfig
	Log         LogConfig
	HTTP        HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// ERPConfig holds the connection settings for the external ERP backend.
// Server may carry a transport prefix (e.g. "tcp:erp-db.local") that the
// database channel accepts; the session manager normalizes it before use.
type ERPConfig struct {
	Server            string
	Port              int
	Database          string
	User              string
	Password          string
	UseWindowsAuth    bool
	ConnectionTimeout time.Duration
	CommandTimeout    time.Duration
	CommandPort       int
	OperatorUser      string
	OperatorPassword  string
	CompanyCode       string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PostedStoreConfig selects the backend for the owned posted-status store
type PostedStoreConfig struct {
	Backend   string // memory or redis
	KeyPrefix string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LEMONCO_ prefix (e.g. LEMONCO_ERP_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("LEMONCO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		ERP: ERPConfig{
			Server:            v.GetString("erp.server"),
			Port:              v.GetInt("erp.port"),
			Database:          v.GetString("erp.database"),
			User:              v.GetString("erp.user"),
			Password:          v.GetString("erp.password"),
			UseWindowsAuth:    v.GetBool("erp.use_windows_auth"),
			ConnectionTimeout: v.GetDuration("erp.connection_timeout"),
			CommandTimeout:    v.GetDuration("erp.command_timeout"),
			CommandPort:       v.GetInt("erp.command_port"),
			OperatorUser:      v.GetString("erp.operator_user"),
			OperatorPassword:  v.GetString("erp.operator_password"),
			CompanyCode:       v.GetString("erp.company_code"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		PostedStore: PostedStoreConfig{
			Backend:   v.GetString("posted_store.backend"),
			KeyPrefix: v.GetString("posted_store.key_prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lemonco-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.ERP.Server == "" {
		cfg.ERP.Server = "localhost"
	}
	if cfg.ERP.Port == 0 {
		cfg.ERP.Port = 5432
	}
	if cfg.ERP.Database == "" {
		cfg.ERP.Database = "lemonco_erp"
	}
	if cfg.ERP.User == "" && !cfg.ERP.UseWindowsAuth {
		cfg.ERP.User = "postgres"
	}
	if cfg.ERP.ConnectionTimeout == 0 {
		cfg.ERP.ConnectionTimeout = 30 * time.Second
	}
	if cfg.ERP.CommandTimeout == 0 {
		cfg.ERP.CommandTimeout = 60 * time.Second
	}
	if cfg.ERP.CommandPort == 0 {
		cfg.ERP.CommandPort = 8800
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.PostedStore.Backend == "" {
		cfg.PostedStore.Backend = "memory"
	}
	if cfg.PostedStore.KeyPrefix == "" {
		cfg.PostedStore.KeyPrefix = "assembly:posted:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// NOTE: CORS origins are intentionally not defaulted to "*". An empty
	// list rejects all cross-origin requests until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.PostedStore.Backend != "memory" && c.PostedStore.Backend != "redis" {
		return fmt.Errorf("posted_store.backend must be 'memory' or 'redis', got %q", c.PostedStore.Backend)
	}

	if c.App.Env == "production" {
		if c.ERP.Password == "" && !c.ERP.UseWindowsAuth {
			return fmt.Errorf("erp.password is required in production unless erp.use_windows_auth is set")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the read-channel connection string for the ERP database with
// properly escaped values. The server address is normalized first: a
// transport prefix is valid here but kept out of the DSN for consistency
// with the licensing channel.
func (e *ERPConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", e.NormalizedServer(), e.Port),
		Path:   e.Database,
	}
	if !e.UseWindowsAuth {
		u.User = url.UserPassword(e.User, e.Password)
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	q.Set("connect_timeout", fmt.Sprintf("%d", int(e.ConnectionTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

// NormalizedServer strips transport-prefix artifacts from the configured
// server address. "tcp:host" is accepted by raw database connections but the
// companion licensing channel parses the whole string as a host name, so the
// prefix must never reach it.
func (e *ERPConfig) NormalizedServer() string {
	server := strings.TrimSpace(e.Server)
	for _, prefix := range []string{"tcp:", "TCP:"} {
		server = strings.TrimPrefix(server, prefix)
	}
	return server
}

// CommandBaseURL returns the base URL of the ERP application server's
// command API, built from the normalized server address.
func (e *ERPConfig) CommandBaseURL() string {
	return fmt.Sprintf("http://%s:%d", e.NormalizedServer(), e.CommandPort)
}
