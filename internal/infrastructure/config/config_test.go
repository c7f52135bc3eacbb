package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "kasso-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "kasso", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.Payment.ProviderTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Payment.ReplayTTL)
	assert.Equal(t, "https://lydia-app.com", cfg.Payment.Lydia.BaseURL)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KASSO_DATABASE_PASSWORD", "sekret")
	t.Setenv("KASSO_APP_PORT", "9090")
	t.Setenv("KASSO_PAYMENT_PROVIDER_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sekret", cfg.Database.Password)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 5*time.Second, cfg.Payment.ProviderTimeout)
}

func TestValidateConnectionPool(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = 50 // exceeds MaxOpenConns

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_conns")
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.password")

	cfg.Database.Password = "sekret"
	cfg.Database.SSLMode = "require"
	assert.NoError(t, cfg.validate())
}

func TestDSNEscapesCredentials(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "kasso",
		Password: "p@ss/word",
		DBName:   "kasso",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestProviderConfigValidate(t *testing.T) {
	assert.Error(t, (&LydiaConfig{}).Validate())
	assert.NoError(t, (&LydiaConfig{VendorToken: "v", APIToken: "a"}).Validate())

	assert.Error(t, (&VivaConfig{ClientID: "id"}).Validate())
	assert.NoError(t, (&VivaConfig{ClientID: "id", ClientSecret: "s"}).Validate())

	assert.Error(t, (&SumUpConfig{APIKey: "k"}).Validate())
	assert.NoError(t, (&SumUpConfig{APIKey: "k", MerchantCode: "M1"}).Validate())
}
