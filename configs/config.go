package config

import (
	"fmt"
	"os"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	TumblrConsumerKey    string
	TumblrConsumerSecret string
	TumblrCallbackURL    string
	FacebookAppID        string
	FacebookAppSecret    string
	FacebookRedirectURI  string
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	BaseURL              string
	R2                   R2
	EncryptionKey        string
	SecretKey            string
	AdminKey             string
	CookieName           string
}

func LoadConfig() *Config {
	return &Config{
		TumblrConsumerKey:    getEnv("TUMBLR_CONSUMER_KEY", ""),
		TumblrConsumerSecret: getEnv("TUMBLR_CONSUMER_SECRET", ""),
		TumblrCallbackURL:    getEnv("TUMBLR_CALLBACK_URL", ""),
		FacebookAppID:        getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:    getEnv("FACEBOOK_APP_SECRET", ""),
		FacebookRedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", ""),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		BaseURL:              getEnv("BASE_URL", "https://quizsquirrel.com"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		SecretKey:     getEnv("SECRET_KEY", ""),
		AdminKey:      getEnv("ADMIN_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", "qsq_session"),
	}
}

// Validate fails fast on anything the publishing pipeline cannot run without.
func (c *Config) Validate() error {
	if len(c.EncryptionKey) < 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be at least 32 characters, got %d", len(c.EncryptionKey))
	}
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is not set")
	}
	if c.TumblrConsumerKey == "" || c.TumblrConsumerSecret == "" || c.TumblrCallbackURL == "" {
		return fmt.Errorf("Tumblr credentials are not configured")
	}
	if c.FacebookAppID == "" || c.FacebookAppSecret == "" || c.FacebookRedirectURI == "" {
		return fmt.Errorf("Facebook credentials are not configured")
	}
	if c.PostgresURI == "" {
		return fmt.Errorf("POSTGRES_URI is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
