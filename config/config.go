package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Conf holds every setting after Load. Keys match the environment variables.
var Conf = viper.New()

type Config struct {
	Port          string
	GinMode       string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DebugSQL      bool
	UploadPath    string
	StorageDriver string
	B2KeyID       string
	B2AppKey      string
	B2Bucket      string
	MaxUploadMB   int64
	DraftDBPath   string
	RendererURL   string
	LogLevel      string
	LogFile       string
	Timezone      string
	AdminEmail    string
	AdminPassword string
	SMTP          SMTPConfig
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "capstone_tracker")
	v.SetDefault("DEBUG_SQL", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", 24*time.Hour)
	v.SetDefault("UPLOAD_PATH", "uploads")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("B2_KEY_ID", "")
	v.SetDefault("B2_APP_KEY", "")
	v.SetDefault("B2_BUCKET", "")
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("SMTP_SKIP_TLS_VERIFY", false)
	v.SetDefault("DRAFT_DB_PATH", "data/drafts.db")
	v.SetDefault("RENDERER_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("TIMEZONE", "Asia/Manila")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads .env when present, then the environment, and publishes the JWT settings.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}

	setDefaults(Conf)
	Conf.AutomaticEnv()

	JWTSecret = []byte(Conf.GetString("JWT_SECRET"))
	JWTExpiration = Conf.GetDuration("JWT_EXPIRATION")

	return &Config{
		Port:          Conf.GetString("PORT"),
		GinMode:       Conf.GetString("GIN_MODE"),
		DBDriver:      strings.ToLower(Conf.GetString("DB_DRIVER")),
		DBHost:        Conf.GetString("DB_HOST"),
		DBPort:        Conf.GetString("DB_PORT"),
		DBUser:        Conf.GetString("DB_USER"),
		DBPassword:    Conf.GetString("DB_PASSWORD"),
		DBName:        Conf.GetString("DB_NAME"),
		DebugSQL:      Conf.GetBool("DEBUG_SQL"),
		UploadPath:    Conf.GetString("UPLOAD_PATH"),
		StorageDriver: strings.ToLower(Conf.GetString("STORAGE_DRIVER")),
		B2KeyID:       Conf.GetString("B2_KEY_ID"),
		B2AppKey:      Conf.GetString("B2_APP_KEY"),
		B2Bucket:      Conf.GetString("B2_BUCKET"),
		MaxUploadMB:   Conf.GetInt64("MAX_UPLOAD_MB"),
		DraftDBPath:   Conf.GetString("DRAFT_DB_PATH"),
		RendererURL:   Conf.GetString("RENDERER_URL"),
		LogLevel:      Conf.GetString("LOG_LEVEL"),
		LogFile:       Conf.GetString("LOG_FILE"),
		Timezone:      Conf.GetString("TIMEZONE"),
		AdminEmail:    Conf.GetString("ADMIN_EMAIL"),
		AdminPassword: Conf.GetString("ADMIN_PASSWORD"),
		SMTP: SMTPConfig{
			Host:          Conf.GetString("SMTP_HOST"),
			Port:          Conf.GetInt("SMTP_PORT"),
			User:          Conf.GetString("SMTP_USER"),
			Pass:          Conf.GetString("SMTP_PASS"),
			From:          Conf.GetString("SMTP_FROM"),
			SkipTLSVerify: Conf.GetBool("SMTP_SKIP_TLS_VERIFY"),
		},
	}
}
