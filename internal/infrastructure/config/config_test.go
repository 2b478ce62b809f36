package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"STOCKWISE_APP_NAME",
	"STOCKWISE_APP_ENV",
	"STOCKWISE_APP_PORT",
	"STOCKWISE_DATABASE_HOST",
	"STOCKWISE_DATABASE_PORT",
	"STOCKWISE_DATABASE_PASSWORD",
	"STOCKWISE_DATABASE_SSLMODE",
	"STOCKWISE_DATABASE_MAX_OPEN_CONNS",
	"STOCKWISE_DATABASE_MAX_IDLE_CONNS",
	"STOCKWISE_COMMERCE_ACCESS_TOKEN",
	"STOCKWISE_SYNC_PAGE_SIZE",
	"STOCKWISE_SYNC_WORKERS",
	"STOCKWISE_SYNC_CHUNK_DELAY",
	"STOCKWISE_SYNC_SALES_WINDOW_DAYS",
	"STOCKWISE_REORDER_LEAD_TIME_DAYS",
	"STOCKWISE_REORDER_WINDOW_DAYS",
	"STOCKWISE_TELEMETRY_SAMPLING_RATIO",
	"STOCKWISE_TELEMETRY_SERVICE_NAME",
	"STOCKWISE_TELEMETRY_PROFILING_ENABLED",
	"STOCKWISE_TELEMETRY_PROFILING_SERVER_ADDRESS",
	"STOCKWISE_TELEMETRY_PROFILING_PROFILE_TYPES",
}

func withCleanEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "stockwise", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 1000, cfg.Sync.PageSize)
		assert.Equal(t, 100, cfg.Sync.ChunkSize)
		assert.Equal(t, 200, cfg.Sync.LookupChunkSize)
		assert.Equal(t, 3, cfg.Sync.Workers)
		assert.Equal(t, 3, cfg.Commerce.MaxRetries)
		assert.Equal(t, time.Second, cfg.Commerce.InitialBackoff)
		assert.Equal(t, 7, cfg.Reorder.LeadTimeDays)
		assert.Equal(t, 14, cfg.Reorder.WindowDays)
	})

	t.Run("loads values from environment variables with STOCKWISE prefix", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_APP_PORT", "9000")
		os.Setenv("STOCKWISE_DATABASE_HOST", "testdb.local")
		os.Setenv("STOCKWISE_SYNC_PAGE_SIZE", "500")
		os.Setenv("STOCKWISE_SYNC_CHUNK_DELAY", "10ms")
		os.Setenv("STOCKWISE_REORDER_LEAD_TIME_DAYS", "14")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 500, cfg.Sync.PageSize)
		assert.Equal(t, 10*time.Millisecond, cfg.Sync.ChunkDelay)
		assert.Equal(t, 14, cfg.Reorder.LeadTimeDays)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("STOCKWISE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects a reorder window longer than the synced sales window", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_SYNC_SALES_WINDOW_DAYS", "7")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reorder.window_days")
	})

	t.Run("rejects negative page size", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_SYNC_PAGE_SIZE", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync.page_size")
	})

	t.Run("profiling is off by default and named after the service", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_TELEMETRY_SERVICE_NAME", "stockwise-eu")

		cfg, err := Load()
		require.NoError(t, err)

		assert.False(t, cfg.Telemetry.Profiling.Enabled)
		assert.Equal(t, "http://localhost:4040", cfg.Telemetry.Profiling.ServerAddress)
		assert.Equal(t, "stockwise-eu", cfg.Telemetry.Profiling.ApplicationName)
	})

	t.Run("loads profiling block from environment", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_TELEMETRY_PROFILING_ENABLED", "true")
		os.Setenv("STOCKWISE_TELEMETRY_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")
		os.Setenv("STOCKWISE_TELEMETRY_PROFILING_PROFILE_TYPES", "cpu goroutines")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.Telemetry.Profiling.Enabled)
		assert.Equal(t, "http://pyroscope:4040", cfg.Telemetry.Profiling.ServerAddress)
		assert.Equal(t, []string{"cpu", "goroutines"}, cfg.Telemetry.Profiling.ProfileTypes)
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires commerce access token in production", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_APP_ENV", "production")
		os.Setenv("STOCKWISE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("STOCKWISE_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commerce.access_token is required in production")
	})

	t.Run("rejects disabled sslmode in production", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_APP_ENV", "production")
		os.Setenv("STOCKWISE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("STOCKWISE_COMMERCE_ACCESS_TOKEN", "token")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("accepts a complete production config", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STOCKWISE_APP_ENV", "production")
		os.Setenv("STOCKWISE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("STOCKWISE_DATABASE_SSLMODE", "require")
		os.Setenv("STOCKWISE_COMMERCE_ACCESS_TOKEN", "token")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "user",
		Password: "p@ss word",
		DBName:   "stockwise",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://user:p%40ss%20word@db:5432/stockwise?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
