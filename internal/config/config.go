package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string
	LogLevel string
	AppURL   string

	Database DatabaseConfig
	JWT      JWTConfig
	AI       AIConfig
	Upload   UploadConfig
	SMTP     SMTPConfig

	InviteTTL     time.Duration
	AdminEmail    string
	AdminPassword string
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

func (d DatabaseConfig) IsSQLite() bool { return d.Driver == "sqlite" }

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// AIConfig holds the upstream endpoints. Empty values select the local fallbacks.
type AIConfig struct {
	ChatEndpoint string
	VisionAPIKey string
	VisionBase   string
	VisionModel  string
}

func (a AIConfig) VisionEnabled() bool { return a.VisionAPIKey != "" && a.VisionBase != "" }

type UploadConfig struct {
	Dir  string
	Path string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool { return s.Host != "" }

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("VISION_MODEL", "gemini-2.0-flash-exp")
	v.SetDefault("UPLOAD_DIR", "./public/uploads")
	v.SetDefault("UPLOAD_PATH", "/uploads")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("INVITE_TTL", "168h")
	v.SetDefault("ADMIN_EMAIL", "admin@airdemo.local")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range []string{
		"DATABASE_URL", "JWT_SECRET", "APP_URL", "AI_CHAT_ENDPOINT",
		"VISION_API_KEY", "VISION_BASE_URL", "SMTP_HOST", "SMTP_USERNAME",
		"SMTP_PASSWORD", "SMTP_FROM", "ADMIN_PASSWORD",
	} {
		_ = v.BindEnv(k)
	}
	return v
}

func FromViper(v *viper.Viper) (*Config, error) {
	jwtTTL, err := time.ParseDuration(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	inviteTTL, err := time.ParseDuration(v.GetString("INVITE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("INVITE_TTL: %w", err)
	}
	driver := strings.ToLower(v.GetString("DB_DRIVER"))
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER: unsupported driver %q", driver)
	}
	cfg := &Config{
		HTTPPort: v.GetString("HTTP_PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		AppURL:   strings.TrimRight(v.GetString("APP_URL"), "/"),
		Database: DatabaseConfig{Driver: driver, URL: v.GetString("DATABASE_URL")},
		JWT:      JWTConfig{Secret: v.GetString("JWT_SECRET"), TTL: jwtTTL},
		AI: AIConfig{
			ChatEndpoint: v.GetString("AI_CHAT_ENDPOINT"),
			VisionAPIKey: v.GetString("VISION_API_KEY"),
			VisionBase:   strings.TrimRight(v.GetString("VISION_BASE_URL"), "/"),
			VisionModel:  v.GetString("VISION_MODEL"),
		},
		Upload: UploadConfig{
			Dir:  v.GetString("UPLOAD_DIR"),
			Path: "/" + strings.Trim(v.GetString("UPLOAD_PATH"), "/"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		InviteTTL:     inviteTTL,
		AdminEmail:    strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	return cfg, nil
}
