package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "tenancy-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "tenancy", cfg.Database.DBName)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
		assert.Equal(t, 5, cfg.Billing.DueDay)
		assert.Equal(t, 5, cfg.Billing.PaymentRetries)
		assert.Equal(t, "0 0 1 * *", cfg.Billing.AutoGenerateCron)
		assert.Equal(t, "KES ", cfg.Billing.Currency)
		assert.Equal(t, 24*time.Hour, cfg.Billing.IdempotencyTTL)
		assert.Equal(t, "log", cfg.Mail.Provider)
		assert.Equal(t, 3, cfg.Mail.MaxRetries)
		assert.False(t, cfg.Redis.Enabled())
		assert.Equal(t, 54*time.Second, cfg.Realtime.PingInterval)
	})

	t.Run("loads values from environment variables with TENANCY prefix", func(t *testing.T) {
		t.Setenv("TENANCY_APP_NAME", "test-app")
		t.Setenv("TENANCY_APP_PORT", "9000")
		t.Setenv("TENANCY_DATABASE_HOST", "testdb.local")
		t.Setenv("TENANCY_DATABASE_PORT", "5433")
		t.Setenv("TENANCY_REDIS_HOST", "cache.local")
		t.Setenv("TENANCY_JWT_EXPIRATION", "48h")
		t.Setenv("TENANCY_BILLING_DUE_DAY", "10")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.Redis.Enabled())
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.Equal(t, 48*time.Hour, cfg.JWT.Expiration)
		assert.Equal(t, 10, cfg.Billing.DueDay)
		assert.Equal(t, "test-app", cfg.Telemetry.ServiceName)
	})

	t.Run("rejects sendgrid without api key", func(t *testing.T) {
		t.Setenv("TENANCY_MAIL_PROVIDER", "sendgrid")

		_, err := Load()
		assert.ErrorContains(t, err, "sendgrid_api_key")
	})

	t.Run("rejects unknown mail provider", func(t *testing.T) {
		t.Setenv("TENANCY_MAIL_PROVIDER", "pigeon")

		_, err := Load()
		assert.ErrorContains(t, err, "mail.provider")
	})

	t.Run("enforces production secrets", func(t *testing.T) {
		t.Setenv("TENANCY_APP_ENV", "production")
		t.Setenv("TENANCY_JWT_SECRET", "short")

		_, err := Load()
		assert.ErrorContains(t, err, "at least 32 characters")
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("idle exceeds open", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = cfg.Database.MaxOpenConns + 1
		assert.Error(t, cfg.validate())
	})

	t.Run("due day out of range", func(t *testing.T) {
		cfg := base()
		cfg.Billing.DueDay = 31
		assert.ErrorContains(t, cfg.validate(), "billing.due_day")
	})

	t.Run("ping must be shorter than pong", func(t *testing.T) {
		cfg := base()
		cfg.Realtime.PingInterval = cfg.Realtime.PongWait
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio bounds", func(t *testing.T) {
		cfg := base()
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss word", DBName: "tenancy", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%20word@db:5432/tenancy?sslmode=disable", d.DSN())
}
