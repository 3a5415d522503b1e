package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthemis/internal/config"
	"arthemis/internal/logger"
	"arthemis/internal/repositories"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:        "development",
		JWTSecret:     "test_jwt_secret",
		JWTExpire:     time.Hour,
		MaxFileUpload: 1000000,
		CurationTTL:   time.Minute,
		CORSOrigin:    "*",
	}
}

func TestServerStartupAndHealthCheck(t *testing.T) {
	store := repositories.NewMemoryStore()
	app, artworks := NewApp(testConfig(), store, logger.Nop(), Dependencies{})
	defer artworks.Wait()

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, repositories.DriverMemory, body["driver"])
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Not authorized to access this route", body["error"])
	})

	t.Run("PublicListing", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/artworks", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "arthemis_http_requests_total")
	})
}
