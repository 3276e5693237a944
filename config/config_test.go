package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	unsetEnv(t, "STORAGE_BACKEND", "PORT", "SQLITE_PATH")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, "thoughts.db", cfg.SQLitePath)
}

func TestLoadParsesList(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_BACKEND", " SQLite ")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{StorageBackend: BackendMemory, JWTSecret: "s"}, false},
		{"postgres without url", Config{StorageBackend: BackendPostgres, JWTSecret: "s"}, true},
		{"postgres with url", Config{StorageBackend: BackendPostgres, DatabaseURL: "postgres://x", JWTSecret: "s"}, false},
		{"unknown backend", Config{StorageBackend: "mongo", JWTSecret: "s"}, true},
		{"missing secret", Config{StorageBackend: BackendMemory}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CLINIC_THOUGHTS_TEST", "value")
	assert.Equal(t, "value", GetEnv("CLINIC_THOUGHTS_TEST", "fallback"))
	assert.Equal(t, "fallback", GetEnv("CLINIC_THOUGHTS_UNSET", "fallback"))
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
