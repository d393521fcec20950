package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecret(ctx context.Context, name string) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", errors.New("secret not found")
	}
	return v, nil
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "PORT", "MONGODB_URL", "MONGODB_DATABASE", "JWT_SECRET", "TOKEN_TTL",
		"MEDIA_PROVIDER", "CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
		"AWS_S3_BUCKET", "AWS_S3_PREFIX", "AWS_S3_PUBLIC_BASE_URL", "REDIS_URL",
		"PRODUCT_CACHE_TTL", "ALLOWED_ORIGINS", "USER_EVENTS_TOPIC_ARN",
		"CLOUDWATCH_ENABLED", "REQUEST_TIMEOUT", "RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := load(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "ecommerce", cfg.MongoDatabase)
	assert.Equal(t, MediaProviderCloudinary, cfg.MediaProvider)
	assert.Equal(t, time.Duration(0), cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.UseSecrets)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := load(context.Background(), nil)
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000/, https://shop.example.com")
	t.Setenv("MEDIA_PROVIDER", "S3")
	t.Setenv("AWS_S3_BUCKET", "media")

	cfg, err := load(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, MediaProviderS3, cfg.MediaProvider)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	t.Run("Duration", func(t *testing.T) {
		t.Setenv("TOKEN_TTL", "forever")
		_, err := load(context.Background(), nil)
		assert.ErrorContains(t, err, "TOKEN_TTL")
	})

	t.Run("S3 Without Bucket", func(t *testing.T) {
		t.Setenv("MEDIA_PROVIDER", "s3")
		_, err := load(context.Background(), nil)
		assert.ErrorContains(t, err, "AWS_S3_BUCKET")
	})

	t.Run("Unknown Provider", func(t *testing.T) {
		t.Setenv("MEDIA_PROVIDER", "ftp")
		_, err := load(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestLoadSecretsOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CLOUD_NAME", "env-cloud")

	cfg, err := load(context.Background(), fakeSecrets{
		JWTSecretName:        "from-secrets",
		CloudinarySecretName: `{"CLOUDINARY_API_KEY":"k","CLOUDINARY_API_SECRET":"s"}`,
	})
	require.NoError(t, err)

	assert.True(t, cfg.UseSecrets)
	assert.Equal(t, "from-secrets", cfg.JWTSecret)
	assert.Equal(t, "env-cloud", cfg.CloudName)
	assert.Equal(t, "k", cfg.CloudinaryAPIKey)
	assert.Equal(t, "s", cfg.CloudinaryAPISecret)
}
