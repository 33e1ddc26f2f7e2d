package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Storage.Driver)
	assert.Equal(t, "seed", cfg.Catalog.Provider)
	assert.True(t, cfg.Pricing.TaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.True(t, cfg.Pricing.FlatShippingFee.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, cfg.Pricing.FreeShippingThreshold.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TAX_RATE", "0.1")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "75")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.1", cfg.Pricing.TaxRate.String())
	assert.Equal(t, "75", cfg.Pricing.FreeShippingThreshold.String())
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoad_InvalidDecimalFallsBack(t *testing.T) {
	t.Setenv("SHIPPING_FLAT_FEE", "nine")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9.99", cfg.Pricing.FlatShippingFee.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"short jwt secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET"},
		{"unknown storage", map[string]string{"STORAGE_DRIVER": "sqlite"}, "STORAGE_DRIVER"},
		{"rapidapi without key", map[string]string{"CATALOG_PROVIDER": "rapidapi"}, "RAPIDAPI_KEY"},
		{"negative tax", map[string]string{"TAX_RATE": "-0.1"}, "negative"},
		{"postgres ok", map[string]string{"STORAGE_DRIVER": "postgres"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
