// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development-only signing secret.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Auth providers.
const (
	AuthProviderFirebase = "firebase"
	AuthProviderLocal    = "local"
)

// Doc store drivers.
const (
	DocstoreMongo = "mongo"
	DocstoreSQL   = "sql"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"`

	DBDriver                      string `mapstructure:"DB_DRIVER"`
	DBHost                        string `mapstructure:"DB_HOST"`
	DBPort                        string `mapstructure:"DB_PORT"`
	DBUser                        string `mapstructure:"DB_USER"`
	DBPassword                    string `mapstructure:"DB_PASSWORD"`
	DBName                        string `mapstructure:"DB_NAME"`
	DBSSLMode                     string `mapstructure:"DB_SSLMODE"`
	DBReadHost                    string `mapstructure:"DB_READ_HOST"`
	DBReadPort                    string `mapstructure:"DB_READ_PORT"`
	DBReadUser                    string `mapstructure:"DB_READ_USER"`
	DBReadPassword                string `mapstructure:"DB_READ_PASSWORD"`
	DBSQLitePath                  string `mapstructure:"DB_SQLITE_PATH"`
	DBSchemaMode                  string `mapstructure:"DB_SCHEMA_MODE"`
	DBAutoMigrateAllowDestructive bool   `mapstructure:"DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE"`
	DBMaxOpenConns                int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns                int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes      int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTIssuer   string `mapstructure:"JWT_ISSUER"`
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`

	AuthProvider        string `mapstructure:"AUTH_PROVIDER"`
	FirebaseProjectID   string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey      string `mapstructure:"FIREBASE_API_KEY"`
	FirebaseClientEmail string `mapstructure:"FIREBASE_CLIENT_EMAIL"`
	FirebasePrivateKey  string `mapstructure:"FIREBASE_PRIVATE_KEY"`
	FirebaseAuthURL     string `mapstructure:"FIREBASE_AUTH_URL"`
	FirebaseCertsURL    string `mapstructure:"FIREBASE_CERTS_URL"`

	DocstoreDriver string `mapstructure:"DOCSTORE_DRIVER"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDatabase  string `mapstructure:"MONGO_DATABASE"`

	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`

	MediaDir             string `mapstructure:"MEDIA_DIR"`
	ImageMaxUploadSizeMB int    `mapstructure:"MEDIA_MAX_UPLOAD_MB"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// IsProduction reports whether the config describes a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: could not parse .env: %v", err)
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "hackit")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_SQLITE_PATH", "hackit.db")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE", false)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)

	viper.SetDefault("REDIS_URL", "localhost:6379")

	viper.SetDefault("JWT_SECRET", DefaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "hackit-api")
	viper.SetDefault("JWT_AUDIENCE", "hackit-client")

	viper.SetDefault("AUTH_PROVIDER", AuthProviderLocal)
	viper.SetDefault("FIREBASE_PROJECT_ID", "")
	viper.SetDefault("FIREBASE_API_KEY", "")
	viper.SetDefault("FIREBASE_CLIENT_EMAIL", "")
	viper.SetDefault("FIREBASE_PRIVATE_KEY", "")
	viper.SetDefault("FIREBASE_AUTH_URL", "https://identitytoolkit.googleapis.com/v1")
	viper.SetDefault("FIREBASE_CERTS_URL", "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com")

	viper.SetDefault("DOCSTORE_DRIVER", DocstoreSQL)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "hackit")

	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")

	viper.SetDefault("MEDIA_DIR", "uploads")
	viper.SetDefault("MEDIA_MAX_UPLOAD_MB", 10)

	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000")
	viper.SetDefault("FEATURE_FLAGS", "")

	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.AuthProvider = strings.ToLower(strings.TrimSpace(c.AuthProvider))
	c.DocstoreDriver = strings.ToLower(strings.TrimSpace(c.DocstoreDriver))
	// Service account keys arrive with escaped newlines from most secret stores.
	c.FirebasePrivateKey = strings.ReplaceAll(c.FirebasePrivateKey, `\n`, "\n")
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.ImageMaxUploadSizeMB <= 0 {
		return errors.New("MEDIA_MAX_UPLOAD_MB must be positive")
	}
	if c.DBConnMaxLifetimeMinutes <= 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be positive")
	}

	switch c.DBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.AuthProvider {
	case "", AuthProviderLocal:
	case AuthProviderFirebase:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when AUTH_PROVIDER=firebase")
		}
		if c.FirebaseAPIKey == "" {
			return errors.New("FIREBASE_API_KEY is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}

	switch c.DocstoreDriver {
	case "", DocstoreSQL:
	case DocstoreMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when DOCSTORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported DOCSTORE_DRIVER %q", c.DocstoreDriver)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == DefaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver != "sqlite" {
			if c.DBPassword == "password" || c.DBPassword == "" {
				return errors.New("a strong DB_PASSWORD is required in production")
			}
			if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
				return errors.New("DB_SSLMODE must enable TLS in production")
			}
		}
		if c.AllowedOrigins == "*" {
			return errors.New("ALLOWED_ORIGINS must not be '*' in production")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
