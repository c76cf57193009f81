package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/timetrack-auth/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const longSecret = "0123456789abcdef0123456789abcdef"

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{"AUTH_SIGNING_SECRET": "dev"})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetPort())
	assert.Equal(t, "Timetrack Auth", cfg.GetAppName())
	assert.Equal(t, "DEV", cfg.GetEnv())
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "info", cfg.GetLogLevel())

	assert.Equal(t, []byte("dev"), cfg.GetSigningSecret())
	assert.Equal(t, 2*time.Hour, cfg.GetTokenTTL())
	assert.Empty(t, cfg.GetIssuer())

	assert.Equal(t, config.StoreFile, cfg.GetCredentialStore())
	assert.Equal(t, "./data/credentials.yaml", cfg.GetCredentialFile())
	assert.Equal(t, int32(10), cfg.GetDBMaxConns())
	assert.False(t, cfg.GetMigrateOnStart())
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 5*time.Minute, cfg.GetCacheTTL())

	assert.Empty(t, cfg.GetAllowedOrigins())
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		"PORT":                 ":9090",
		"ENV":                  "prod",
		"LOG_LEVEL":            "debug",
		"AUTH_SIGNING_SECRET":  longSecret,
		"AUTH_TOKEN_TTL":       "30m",
		"AUTH_ISSUER":          "timetrack",
		"CREDENTIAL_STORE":     "postgres",
		"DATABASE_URL":         "postgres://u:p@db:5432/auth",
		"DB_MAX_CONNS":         "4",
		"DB_MIGRATE_ON_START":  "true",
		"REDIS_ADDR":           "redis:6379",
		"REDIS_DB":             "2",
		"CREDENTIAL_CACHE_TTL": "1m",
		"CORS_ALLOWED_ORIGINS": "https://app.example.com, https://www.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GetPort())
	assert.Equal(t, "PROD", cfg.GetEnv())
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 30*time.Minute, cfg.GetTokenTTL())
	assert.Equal(t, "timetrack", cfg.GetIssuer())
	assert.Equal(t, config.StorePostgres, cfg.GetCredentialStore())
	assert.Equal(t, "postgres://u:p@db:5432/auth", cfg.GetDatabaseURL())
	assert.Equal(t, int32(4), cfg.GetDBMaxConns())
	assert.True(t, cfg.GetMigrateOnStart())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, "redis:6379", cfg.GetRedisAddr())
	assert.Equal(t, 2, cfg.GetRedisDB())
	assert.Equal(t, time.Minute, cfg.GetCacheTTL())

	origins := cfg.GetAllowedOrigins()
	assert.True(t, origins.IsAllowedOrigin("https://app.example.com"))
	assert.True(t, origins.IsAllowedOrigin("https://www.example.com"))
	assert.False(t, origins.IsAllowedOrigin("https://evil.example.com"))
	assert.Equal(t, "https://app.example.com, https://www.example.com", origins.String())
}

func TestFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			vars:    map[string]string{},
			wantErr: "AUTH_SIGNING_SECRET is required",
		},
		{
			name:    "short secret outside dev",
			vars:    map[string]string{"ENV": "PROD", "AUTH_SIGNING_SECRET": "short"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "non-positive ttl",
			vars:    map[string]string{"AUTH_SIGNING_SECRET": "dev", "AUTH_TOKEN_TTL": "0s"},
			wantErr: "AUTH_TOKEN_TTL must be positive",
		},
		{
			name:    "unparseable ttl",
			vars:    map[string]string{"AUTH_SIGNING_SECRET": "dev", "AUTH_TOKEN_TTL": "two hours"},
			wantErr: "parse config",
		},
		{
			name:    "unknown store",
			vars:    map[string]string{"AUTH_SIGNING_SECRET": "dev", "CREDENTIAL_STORE": "ldap"},
			wantErr: "unknown CREDENTIAL_STORE",
		},
		{
			name:    "postgres without url",
			vars:    map[string]string{"AUTH_SIGNING_SECRET": "dev", "CREDENTIAL_STORE": "postgres"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "cache without ttl",
			vars:    map[string]string{"AUTH_SIGNING_SECRET": "dev", "REDIS_ADDR": "localhost:6379", "CREDENTIAL_CACHE_TTL": "0s"},
			wantErr: "CREDENTIAL_CACHE_TTL must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromMap(tt.vars)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("AUTH_SIGNING_SECRET", longSecret)
	t.Setenv("PORT", "7000")
	t.Setenv("APP_NAME", "Auth Test")

	cfg, err := config.New()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.GetPort())
	assert.Equal(t, "Auth Test", cfg.GetAppName())
}

func TestAllowedOrigins_Wildcard(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{"AUTH_SIGNING_SECRET": "dev", "CORS_ALLOWED_ORIGINS": "*"})
	require.NoError(t, err)

	origins := cfg.GetAllowedOrigins()
	assert.True(t, origins.IsAllowedOrigin("https://anything.example"))
	assert.False(t, origins.IsAllowedOrigin(""))
	assert.True(t, strings.Contains(cfg.GetAllowedMethods(), "POST"))
}
