package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first, without overriding variables already
// present in the environment.
//
// Recognized variables:
//
//	ADDRESS             HTTP bind address
//	DATABASE_DSN        PostgreSQL DSN
//	SECRET_KEY          JWT HMAC secret
//	ACCESS_TOKEN_TTL    access token lifetime (Go duration, e.g. "168h")
//	REFRESH_TOKEN_TTL   refresh token lifetime
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	setDuration("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}
