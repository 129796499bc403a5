package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage and mail driver identifiers.
const (
	StorageDriverLocal      = "local"
	StorageDriverCloudinary = "cloudinary"

	MailDriverLog   = "log"
	MailDriverGmail = "gmail"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	AppURL    string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Admin         AdminConfig
	Registration  RegistrationConfig
	Notifications NotificationsConfig
	Reminders     RemindersConfig
	Storage       StorageConfig
	Reports       ReportsConfig
	Dashboard     DashboardConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig holds the shared administrator registration code and the
// addresses that receive new-volunteer alerts.
type AdminConfig struct {
	RegistrationSecret string
	NotificationEmails []string
}

// RegistrationConfig tunes event registration rules.
type RegistrationConfig struct {
	EnforceCapacity bool
}

// NotificationsConfig configures the outbox workers and the mail transport.
type NotificationsConfig struct {
	Workers       int
	BufferSize    int
	MaxRetries    int
	RetryDelay    time.Duration
	SweepInterval time.Duration

	MailDriver        string
	MailFrom          string
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSendInterval time.Duration
}

// RemindersConfig controls the daily event reminder job.
type RemindersConfig struct {
	Enabled  bool
	Schedule string
	Timezone string
}

// StorageConfig selects the object store for avatars and posters.
type StorageConfig struct {
	Driver            string
	LocalDir          string
	PublicBaseURL     string
	CloudinaryName    string
	CloudinaryAPIKey  string
	CloudinarySecret  string
	AvatarMaxBytes    int64
	PosterMaxBytes    int64
	AllowedImageMIMEs []string
}

// ReportsConfig configures export storage and download links.
type ReportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// DashboardConfig governs the stats cache.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.AppURL = strings.TrimRight(v.GetString("APP_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Admin = AdminConfig{
		RegistrationSecret: v.GetString("ADMIN_REGISTRATION_SECRET"),
		NotificationEmails: splitAndTrim(v.GetString("ADMIN_NOTIFICATION_EMAILS")),
	}

	cfg.Registration = RegistrationConfig{
		EnforceCapacity: v.GetBool("ENFORCE_EVENT_CAPACITY"),
	}

	cfg.Notifications = NotificationsConfig{
		Workers:           v.GetInt("NOTIFY_WORKERS"),
		BufferSize:        v.GetInt("NOTIFY_BUFFER"),
		MaxRetries:        v.GetInt("NOTIFY_MAX_RETRIES"),
		RetryDelay:        parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), 30*time.Second),
		SweepInterval:     parseDuration(v.GetString("NOTIFY_SWEEP_INTERVAL"), time.Minute),
		MailDriver:        strings.ToLower(v.GetString("MAIL_DRIVER")),
		MailFrom:          v.GetString("MAIL_FROM"),
		GmailClientID:     v.GetString("GMAIL_CLIENT_ID"),
		GmailClientSecret: v.GetString("GMAIL_CLIENT_SECRET"),
		GmailRefreshToken: v.GetString("GMAIL_REFRESH_TOKEN"),
		GmailSendInterval: parseDuration(v.GetString("GMAIL_SEND_INTERVAL"), time.Second),
	}

	cfg.Reminders = RemindersConfig{
		Enabled:  v.GetBool("ENABLE_REMINDERS"),
		Schedule: v.GetString("REMINDER_CRON"),
		Timezone: v.GetString("REMINDER_TIMEZONE"),
	}

	avatarMax := v.GetInt64("AVATAR_MAX_BYTES")
	if avatarMax <= 0 {
		avatarMax = 5 * 1024 * 1024
	}
	posterMax := v.GetInt64("POSTER_MAX_BYTES")
	if posterMax <= 0 {
		posterMax = 10 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Driver:            strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LocalDir:          v.GetString("STORAGE_LOCAL_DIR"),
		PublicBaseURL:     strings.TrimRight(v.GetString("STORAGE_PUBLIC_BASE_URL"), "/"),
		CloudinaryName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:  v.GetString("CLOUDINARY_API_KEY"),
		CloudinarySecret:  v.GetString("CLOUDINARY_API_SECRET"),
		AvatarMaxBytes:    avatarMax,
		PosterMaxBytes:    posterMax,
		AllowedImageMIMEs: splitAndTrim(v.GetString("STORAGE_ALLOWED_IMAGE_TYPES")),
	}

	cfg.Reports = ReportsConfig{
		StorageDir:      v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), time.Hour),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("APP_URL", "http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "volunteer_hub")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "volunteer-hub")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_REGISTRATION_SECRET", "")
	v.SetDefault("ADMIN_NOTIFICATION_EMAILS", "")
	v.SetDefault("ENFORCE_EVENT_CAPACITY", false)

	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_BUFFER", 64)
	v.SetDefault("NOTIFY_MAX_RETRIES", 5)
	v.SetDefault("NOTIFY_RETRY_DELAY", "30s")
	v.SetDefault("NOTIFY_SWEEP_INTERVAL", "1m")
	v.SetDefault("MAIL_DRIVER", MailDriverLog)
	v.SetDefault("MAIL_FROM", "no-reply@volunteer-hub.local")
	v.SetDefault("GMAIL_SEND_INTERVAL", "1s")

	v.SetDefault("ENABLE_REMINDERS", false)
	v.SetDefault("REMINDER_CRON", "0 8 * * *")
	v.SetDefault("REMINDER_TIMEZONE", "Africa/Tunis")

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("AVATAR_MAX_BYTES", 5*1024*1024)
	v.SetDefault("POSTER_MAX_BYTES", 10*1024*1024)
	v.SetDefault("STORAGE_ALLOWED_IMAGE_TYPES", "image/jpeg,image/png,image/webp,image/gif")

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "1h")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
