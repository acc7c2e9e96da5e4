package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Access period policies understood by the content access gate.
const (
	PeriodPolicyAny     = "any"
	PeriodPolicyCurrent = "current"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseDriver         string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	JWTTTL                 time.Duration
	StorageDriver          string
	LocalStorageDir        string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	S3Bucket               string
	S3Region               string
	S3Endpoint             string
	S3AccessKeyID          string
	S3SecretAccessKey      string
	UploadMaxSizeMB        int
	AccessPeriodPolicy     string
	RankingCacheTTL        time.Duration
	DefaultCommissionRate  float64
	AdminUsername          string
	AdminEmail             string
	AdminFullName          string
	AdminPassword          string
	NATSURL                string
	NATSSubject            string
	KafkaBrokers           []string
	KafkaTopic             string
	SendgridAPIKey         string
	MailFromAddress        string
	MailFromName           string
	LoginRateLimit         int
	LoginRateWindow        time.Duration
	CORSAllowedOrigins     string
	CORSAllowCredentials   bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TUTA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Tuta Pamodzi API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("cloudinary.folder", "tuta/documents")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("upload.max_size_mb", 16)
	v.SetDefault("access.period_policy", PeriodPolicyAny)
	v.SetDefault("ranking.cache_ttl", "5m")
	v.SetDefault("commission.default_rate", 0.10)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@highexecellenceacademy.com")
	v.SetDefault("admin.full_name", "Lead Administrator")
	v.SetDefault("nats.subject", "tuta.enrollments")
	v.SetDefault("kafka.topic", "tuta.enrollments")
	v.SetDefault("mail.from_name", "Tuta Pamodzi")
	v.SetDefault("login.rate_limit", 10)
	v.SetDefault("login.rate_window", "1m")
	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("cors.allow_credentials", false)
}

func fromViper(v *viper.Viper) (Config, error) {
	jwtTTL, err := parseDuration(v.GetString("jwt.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	rankingTTL, err := parseDuration(v.GetString("ranking.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ranking cache ttl: %w", err)
	}

	loginWindow, err := parseDuration(v.GetString("login.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid login rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseDriver:         strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 jwtTTL,
		StorageDriver:          strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		LocalStorageDir:        v.GetString("storage.local_dir"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		S3Bucket:               v.GetString("s3.bucket"),
		S3Region:               v.GetString("s3.region"),
		S3Endpoint:             v.GetString("s3.endpoint"),
		S3AccessKeyID:          v.GetString("s3.access_key_id"),
		S3SecretAccessKey:      v.GetString("s3.secret_access_key"),
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		AccessPeriodPolicy:     strings.ToLower(strings.TrimSpace(v.GetString("access.period_policy"))),
		RankingCacheTTL:        rankingTTL,
		DefaultCommissionRate:  v.GetFloat64("commission.default_rate"),
		AdminUsername:          v.GetString("admin.username"),
		AdminEmail:             v.GetString("admin.email"),
		AdminFullName:          v.GetString("admin.full_name"),
		AdminPassword:          v.GetString("admin.password"),
		NATSURL:                v.GetString("nats.url"),
		NATSSubject:            v.GetString("nats.subject"),
		KafkaBrokers:           splitList(v.GetString("kafka.brokers")),
		KafkaTopic:             v.GetString("kafka.topic"),
		SendgridAPIKey:         v.GetString("sendgrid.api_key"),
		MailFromAddress:        v.GetString("mail.from_address"),
		MailFromName:           v.GetString("mail.from_name"),
		LoginRateLimit:         v.GetInt("login.rate_limit"),
		LoginRateWindow:        loginWindow,
		CORSAllowedOrigins:     strings.Join(splitList(v.GetString("cors.allowed_origins")), ","),
		CORSAllowCredentials:   v.GetBool("cors.allow_credentials"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	switch cfg.AccessPeriodPolicy {
	case PeriodPolicyAny, PeriodPolicyCurrent:
	default:
		return Config{}, fmt.Errorf("unsupported access period policy %q", cfg.AccessPeriodPolicy)
	}

	if cfg.DefaultCommissionRate < 0 || cfg.DefaultCommissionRate > 1 {
		return Config{}, fmt.Errorf("default commission rate must be between 0 and 1")
	}

	if err := validateOrigins(cfg.CORSAllowedOrigins); err != nil {
		return Config{}, err
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 16
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// validateOrigins accepts "*" or a list of scheme://host[:port] origins.
func validateOrigins(origins string) error {
	if origins == "" || origins == "*" {
		return nil
	}
	for _, origin := range strings.Split(origins, ",") {
		parsed, err := url.Parse(origin)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" || (parsed.Path != "" && parsed.Path != "/") {
			return fmt.Errorf("invalid cors origin %q", origin)
		}
	}
	return nil
}
