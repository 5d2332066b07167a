// Package config loads the process configuration from an optional .env file and the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DefaultEndpoint       = "127.0.0.1:6789"
	DefaultRequestTimeout = 30 * time.Second
	DefaultBucket         = "apppackages"
	DefaultRegion         = "us-east-1"
)

type Config struct {
	Endpoint       string        // gateway listen address
	ConfigHost     string        // default config host for commands and requests without one
	RequestTimeout time.Duration // timeout of a single remote call
	AllowedOrigins []string      // CORS origins, all if empty
	S3             S3Config
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Load reads the given .env files, or .env in the working directory if none is given, and then
// builds the configuration from the environment. Missing .env files are ignored; variables already
// present in the environment are never overridden.
func Load(filenames ...string) (*Config, error) {
	loadEnvFiles(filenames...)

	timeout, err := parseDuration("APPPKG_REQUEST_TIMEOUT", DefaultRequestTimeout)
	if err != nil {
		return nil, err
	}

	useSSL, err := parseBool("APPPKG_S3_USE_SSL", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		Endpoint:       firstNonEmpty(env("APPPKG_ENDPOINT"), DefaultEndpoint),
		ConfigHost:     env("APPPKG_CONFIG_HOST"),
		RequestTimeout: timeout,
		AllowedOrigins: splitList(env("APPPKG_ALLOWED_ORIGINS")),
		S3: S3Config{
			Endpoint:  env("APPPKG_S3_ENDPOINT"),
			AccessKey: env("APPPKG_S3_ACCESS_KEY"),
			SecretKey: env("APPPKG_S3_SECRET_KEY"),
			Bucket:    firstNonEmpty(env("APPPKG_S3_BUCKET"), DefaultBucket),
			Region:    firstNonEmpty(env("APPPKG_S3_REGION"), DefaultRegion),
			UseSSL:    useSSL,
		},
	}, nil
}

func loadEnvFiles(filenames ...string) {
	if len(filenames) == 0 {
		_ = godotenv.Load()
		return
	}

	for _, filename := range filenames {
		_ = godotenv.Load(filename)
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := env(key)
	if len(raw) == 0 {
		return defaultValue, nil
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.WithMessagef(err, "invalid %s", key)
	}

	return v, nil
}

func parseBool(key string, defaultValue bool) (bool, error) {
	raw := env(key)
	if len(raw) == 0 {
		return defaultValue, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.WithMessagef(err, "invalid %s", key)
	}

	return v, nil
}

func splitList(raw string) []string {
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); len(v) > 0 {
			values = append(values, v)
		}
	}
	return values
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return ""
}
