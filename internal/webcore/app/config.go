package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every runtime setting for the service. Values are read from
// the environment; main loads a .env file first when one is present.
type Config struct {
	AppName   string `env:"APP_NAME" envDefault:"webcore"`
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"webcore.db"`

	// SecretKey signs access tokens; OTPSecretKey derives OTP secrets. Both
	// must be set, and should differ.
	SecretKey    string `env:"SECRET_KEY,required"`
	OTPSecretKey string `env:"OTP_SECRET_KEY,required"`

	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	OTPTTL         time.Duration `env:"OTP_TTL" envDefault:"300s"`

	PasswordMinLength int `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	PasswordMaxLength int `env:"PASSWORD_MAX_LENGTH" envDefault:"24"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	// UseLocalMail logs OTP codes instead of sending mail. Forced on when no
	// SMTP host is configured.
	UseLocalMail bool `env:"USE_LOCAL_MAIL" envDefault:"false"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:" " envDefault:"*"`

	FilesDir      string `env:"FILES_DIR" envDefault:"logs"`
	FileExtension string `env:"FILE_EXTENSION" envDefault:".log"`
	ParseSchedule string `env:"PARSE_SCHEDULE" envDefault:"0 0 * * *"`

	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SMTPHost == "" {
		cfg.UseLocalMail = true
	}
	return cfg, nil
}
