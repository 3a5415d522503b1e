package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, 720*time.Hour, cfg.JWTExpire)
	assert.Equal(t, int64(1000000), cfg.MaxFileUpload)
	assert.Equal(t, "development_secret", cfg.JWTSecret)
	assert.False(t, cfg.S3.Enabled())
}

func TestFromViper_RequiresSecretInProduction(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("APP_ENV", "production")

	_, err := FromViper(v)
	assert.Error(t, err)

	v.Set("JWT_SECRET", "s3cret")
	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestFromViper_TrimsURLs(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("CDN_BASE_URL", "https://cdn.example.com/")
	v.Set("S3_BUCKET", "art")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", cfg.S3.CDNBaseURL)
	assert.True(t, cfg.S3.Enabled())
}

func TestFromViper_RejectsInvalidUploadCap(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("MAX_FILE_UPLOAD", 0)

	_, err := FromViper(v)
	assert.Error(t, err)
}
