package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
)

const (
	MediaProviderCloudinary = "cloudinary"
	MediaProviderS3         = "s3"

	// Secrets Manager names read when AWS_USE_SECRETS=true.
	JWTSecretName        = "storefront/JWT_SECRET"
	CloudinarySecretName = "storefront/CLOUDINARY"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Env  string
	Port string

	MongoURL      string
	MongoDatabase string

	JWTSecret string
	TokenTTL  time.Duration

	MediaProvider       string
	CloudName           string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	S3Bucket            string
	S3Prefix            string
	S3PublicBaseURL     string

	RedisURL        string
	ProductCacheTTL time.Duration

	AllowedOrigins     []string
	RequestTimeout     time.Duration
	RateLimitPerMinute int

	UserEventsTopicARN string
	CloudWatchEnabled  bool
	UseSecrets         bool
}

type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Load reads configuration from the environment (after an optional .env
// file) with a Secrets Manager override when AWS_USE_SECRETS=true.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var secrets SecretGetter
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		secrets = aws_pkg.NewSecretsClient(awsCfg)
	}
	return load(ctx, secrets)
}

func load(ctx context.Context, secrets SecretGetter) (*Config, error) {
	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "4000"),
		MongoURL:            getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGODB_DATABASE", "ecommerce"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		MediaProvider:       strings.ToLower(getEnv("MEDIA_PROVIDER", MediaProviderCloudinary)),
		CloudName:           os.Getenv("CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		S3Bucket:            os.Getenv("AWS_S3_BUCKET"),
		S3Prefix:            os.Getenv("AWS_S3_PREFIX"),
		S3PublicBaseURL:     os.Getenv("AWS_S3_PUBLIC_BASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "*")),
		UserEventsTopicARN:  os.Getenv("USER_EVENTS_TOPIC_ARN"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		UseSecrets:          secrets != nil,
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.ProductCacheTTL, err = getDuration("PRODUCT_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	if secrets != nil {
		applySecrets(ctx, cfg, secrets)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applySecrets overrides the signing key and Cloudinary credentials. Missing
// secrets leave the environment values in place.
func applySecrets(ctx context.Context, cfg *Config, sm SecretGetter) {
	if v, err := sm.GetSecret(ctx, JWTSecretName); err == nil && v != "" {
		cfg.JWTSecret = v
	}

	raw, err := sm.GetSecret(ctx, CloudinarySecretName)
	if err != nil || raw == "" {
		return
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return
	}
	if v := m["CLOUD_NAME"]; v != "" {
		cfg.CloudName = v
	}
	if v := m["CLOUDINARY_API_KEY"]; v != "" {
		cfg.CloudinaryAPIKey = v
	}
	if v := m["CLOUDINARY_API_SECRET"]; v != "" {
		cfg.CloudinaryAPISecret = v
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.MediaProvider {
	case MediaProviderCloudinary:
	case MediaProviderS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when MEDIA_PROVIDER=s3")
		}
	default:
		return fmt.Errorf("unknown MEDIA_PROVIDER %q", c.MediaProvider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSuffix(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
