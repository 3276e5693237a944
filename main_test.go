package main

import (
	"path/filepath"
	"testing"

	"github.com/clinic-thoughts/config"
	"github.com/clinic-thoughts/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsStorageErrors(t *testing.T) {
	err := run(config.Config{StorageBackend: "bogus", GinMode: gin.TestMode}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown storage backend "bogus"`)
}

func TestRunReturnsListenErrors(t *testing.T) {
	err := run(config.Config{
		Port:           "not-a-port",
		StorageBackend: config.BackendSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "thoughts.db"),
		JWTSecret:      "test-secret",
		GinMode:        gin.TestMode,
	}, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start server")
}
