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
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Commerce  CommerceConfig
	Sync      SyncConfig
	Reorder   ReorderConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// CommerceConfig holds the point-of-sale platform API settings
type CommerceConfig struct {
	BaseURL        string
	AccessToken    string
	APIVersion     string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
}

// SyncConfig holds resync pipeline tuning
type SyncConfig struct {
	PageSize        int           // offset page size for store reads
	ChunkSize       int           // rows per batch write
	LookupChunkSize int           // ids per identity lookup query
	Workers         int           // concurrent batch writers
	ChunkDelay      time.Duration // pause between batch chunks
	SalesWindowDays int           // sales history pulled on resync
	ScheduleEvery   time.Duration // periodic full resync, 0 disables
}

// ReorderConfig holds replenishment parameters
type ReorderConfig struct {
	LeadTimeDays int
	WindowDays   int
}

// CacheConfig holds recommendation cache settings
type CacheConfig struct {
	Enabled  bool
	UseRedis bool
	TTL      time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	Profiling         ProfilingConfig
}

// ProfilingConfig holds Pyroscope continuous profiling configuration
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string   // Pyroscope server (e.g., "http://localhost:4040")
	ApplicationName   string   // Defaults to the telemetry service name
	BasicAuthUser     string   // Grafana Cloud only
	BasicAuthPassword string   // Grafana Cloud only
	ProfileTypes      []string // e.g. cpu, alloc_space, inuse_space, goroutines
	SpanProfiles      bool     // Link profiles to trace spans (requires tracing)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOCKWISE_ prefix (e.g., STOCKWISE_DATABASE_PASSWORD)
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

	v.SetEnvPrefix("STOCKWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Commerce: CommerceConfig{
			BaseURL:        v.GetString("commerce.base_url"),
			AccessToken:    v.GetString("commerce.access_token"),
			APIVersion:     v.GetString("commerce.api_version"),
			Timeout:        v.GetDuration("commerce.timeout"),
			MaxRetries:     v.GetInt("commerce.max_retries"),
			InitialBackoff: v.GetDuration("commerce.initial_backoff"),
		},
		Sync: SyncConfig{
			PageSize:        v.GetInt("sync.page_size"),
			ChunkSize:       v.GetInt("sync.chunk_size"),
			LookupChunkSize: v.GetInt("sync.lookup_chunk_size"),
			Workers:         v.GetInt("sync.workers"),
			ChunkDelay:      v.GetDuration("sync.chunk_delay"),
			SalesWindowDays: v.GetInt("sync.sales_window_days"),
			ScheduleEvery:   v.GetDuration("sync.schedule_every"),
		},
		Reorder: ReorderConfig{
			LeadTimeDays: v.GetInt("reorder.lead_time_days"),
			WindowDays:   v.GetInt("reorder.window_days"),
		},
		Cache: CacheConfig{
			Enabled:  v.GetBool("cache.enabled"),
			UseRedis: v.GetBool("cache.use_redis"),
			TTL:      v.GetDuration("cache.ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			Profiling: ProfilingConfig{
				Enabled:           v.GetBool("telemetry.profiling.enabled"),
				ServerAddress:     v.GetString("telemetry.profiling.server_address"),
				ApplicationName:   v.GetString("telemetry.profiling.application_name"),
				BasicAuthUser:     v.GetString("telemetry.profiling.basic_auth_user"),
				BasicAuthPassword: v.GetString("telemetry.profiling.basic_auth_password"),
				ProfileTypes:      v.GetStringSlice("telemetry.profiling.profile_types"),
				SpanProfiles:      v.GetBool("telemetry.profiling.span_profiles"),
			},
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
		cfg.App.Name = "stockwise"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "stockwise"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
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
		// a full resync runs inside the request
		cfg.HTTP.WriteTimeout = 10 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Commerce.BaseURL == "" {
		cfg.Commerce.BaseURL = "https://connect.squareup.com"
	}
	if cfg.Commerce.APIVersion == "" {
		cfg.Commerce.APIVersion = "2024-01-18"
	}
	if cfg.Commerce.Timeout == 0 {
		cfg.Commerce.Timeout = 30 * time.Second
	}
	if cfg.Commerce.MaxRetries == 0 {
		cfg.Commerce.MaxRetries = 3
	}
	if cfg.Commerce.InitialBackoff == 0 {
		cfg.Commerce.InitialBackoff = time.Second
	}
	if cfg.Sync.PageSize == 0 {
		cfg.Sync.PageSize = 1000
	}
	if cfg.Sync.ChunkSize == 0 {
		cfg.Sync.ChunkSize = 100
	}
	if cfg.Sync.LookupChunkSize == 0 {
		cfg.Sync.LookupChunkSize = 200
	}
	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = 3
	}
	if cfg.Sync.ChunkDelay == 0 {
		cfg.Sync.ChunkDelay = 50 * time.Millisecond
	}
	if cfg.Sync.SalesWindowDays == 0 {
		cfg.Sync.SalesWindowDays = 14
	}
	if cfg.Reorder.LeadTimeDays == 0 {
		cfg.Reorder.LeadTimeDays = 7
	}
	if cfg.Reorder.WindowDays == 0 {
		cfg.Reorder.WindowDays = 14
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "stockwise"
	}
	if cfg.Telemetry.Profiling.ServerAddress == "" {
		cfg.Telemetry.Profiling.ServerAddress = "http://localhost:4040"
	}
	if cfg.Telemetry.Profiling.ApplicationName == "" {
		cfg.Telemetry.Profiling.ApplicationName = cfg.Telemetry.ServiceName
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Sync.PageSize <= 0 {
		return fmt.Errorf("sync.page_size must be positive")
	}
	if c.Sync.Workers <= 0 {
		return fmt.Errorf("sync.workers must be positive")
	}
	if c.Sync.SalesWindowDays <= 0 {
		return fmt.Errorf("sync.sales_window_days must be positive")
	}
	if c.Sync.ScheduleEvery < 0 {
		return fmt.Errorf("sync.schedule_every cannot be negative")
	}
	if c.Reorder.WindowDays <= 0 {
		return fmt.Errorf("reorder.window_days must be positive")
	}
	if c.Reorder.LeadTimeDays < 0 {
		return fmt.Errorf("reorder.lead_time_days cannot be negative")
	}
	if c.Reorder.WindowDays > c.Sync.SalesWindowDays {
		return fmt.Errorf("reorder.window_days (%d) cannot exceed sync.sales_window_days (%d)",
			c.Reorder.WindowDays, c.Sync.SalesWindowDays)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Commerce.AccessToken == "" {
			return fmt.Errorf("commerce.access_token is required in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
