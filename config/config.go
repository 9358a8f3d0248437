package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// Remote store.
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Query cache and job queue.
	CacheDriver    string        `mapstructure:"CACHE_DRIVER"`
	RedisAddr      string        `mapstructure:"REDIS_ADDR"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB   int           `mapstructure:"REDIS_QUEUE_DB"`
	QueryStaleTime time.Duration `mapstructure:"QUERY_STALE_TIME"`
	QueryRetry     int           `mapstructure:"QUERY_RETRY"`

	// Sessions.
	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	// OAuth sign-in.
	OAuthGoogleClientID     string `mapstructure:"OAUTH_GOOGLE_CLIENT_ID"`
	OAuthGoogleClientSecret string `mapstructure:"OAUTH_GOOGLE_CLIENT_SECRET"`
	OAuthGitHubClientID     string `mapstructure:"OAUTH_GITHUB_CLIENT_ID"`
	OAuthGitHubClientSecret string `mapstructure:"OAUTH_GITHUB_CLIENT_SECRET"`
	// e.g. https://api.example.com/api/auth/oauth/{provider}/callback
	OAuthRedirectURL        string `mapstructure:"OAUTH_REDIRECT_URL"`

	// Where the callback may send the browser after sign-in.
	OAuthAllowedRedirects []string `mapstructure:"OAUTH_ALLOWED_REDIRECTS"`

	RemindersEnabled   bool   `mapstructure:"REMINDERS_ENABLED"`
	GeolocationEnabled bool   `mapstructure:"GEOLOCATION_ENABLED"`
	GeolocationURL     string `mapstructure:"GEOLOCATION_URL"`
}

var AppConfig Config

// keys lists every setting so AutomaticEnv can see values that have no
// default and no config file entry.
var keys = []string{
	"OAUTH_GOOGLE_CLIENT_ID", "OAUTH_GOOGLE_CLIENT_SECRET",
	"OAUTH_GITHUB_CLIENT_ID", "OAUTH_GITHUB_CLIENT_SECRET",
	"OAUTH_REDIRECT_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "autocare")
	v.SetDefault("CACHE_DRIVER", "redis")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("QUERY_STALE_TIME", "30s")
	v.SetDefault("QUERY_RETRY", 1)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("OAUTH_ALLOWED_REDIRECTS", "")
	v.SetDefault("REMINDERS_ENABLED", false)
	v.SetDefault("GEOLOCATION_ENABLED", true)
	v.SetDefault("GEOLOCATION_URL", "https://ipapi.co")
}

// Load reads .env, an optional config.yaml and the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates AppConfig or exits.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
