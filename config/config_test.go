package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vispana/apppackage-client/config"
)

var keys = []string{
	"APPPKG_ENDPOINT",
	"APPPKG_CONFIG_HOST",
	"APPPKG_REQUEST_TIMEOUT",
	"APPPKG_ALLOWED_ORIGINS",
	"APPPKG_S3_ENDPOINT",
	"APPPKG_S3_ACCESS_KEY",
	"APPPKG_S3_SECRET_KEY",
	"APPPKG_S3_BUCKET",
	"APPPKG_S3_REGION",
	"APPPKG_S3_USE_SSL",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	conf, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultEndpoint, conf.Endpoint)
	assert.Equal(t, "", conf.ConfigHost)
	assert.Equal(t, config.DefaultRequestTimeout, conf.RequestTimeout)
	assert.Empty(t, conf.AllowedOrigins)
	assert.Equal(t, config.DefaultBucket, conf.S3.Bucket)
	assert.Equal(t, config.DefaultRegion, conf.S3.Region)
	assert.True(t, conf.S3.UseSSL)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte(
		"APPPKG_CONFIG_HOST=cfg.local\n"+
			"APPPKG_REQUEST_TIMEOUT=5s\n"+
			"APPPKG_ALLOWED_ORIGINS=http://a.com, http://b.com,\n"+
			"APPPKG_S3_ENDPOINT=minio:9000\n"+
			"APPPKG_S3_USE_SSL=false\n",
	), 0644))

	// the environment wins over the file
	t.Setenv("APPPKG_CONFIG_HOST", "cfg.env")

	conf, err := config.Load(file)
	require.NoError(t, err)

	assert.Equal(t, "cfg.env", conf.ConfigHost)
	assert.Equal(t, 5*time.Second, conf.RequestTimeout)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, conf.AllowedOrigins)
	assert.Equal(t, "minio:9000", conf.S3.Endpoint)
	assert.False(t, conf.S3.UseSSL)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("APPPKG_REQUEST_TIMEOUT", "soon")
	_, err := config.Load(missing)
	assert.ErrorContains(t, err, "APPPKG_REQUEST_TIMEOUT")

	t.Setenv("APPPKG_REQUEST_TIMEOUT", "")
	t.Setenv("APPPKG_S3_USE_SSL", "maybe")
	_, err = config.Load(missing)
	assert.ErrorContains(t, err, "APPPKG_S3_USE_SSL")
}
