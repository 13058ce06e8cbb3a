package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all environment-driven settings.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	MongoURI string `env:"MONGO_URI"`
	DBName   string `env:"DB_NAME" envDefault:"resellerhub"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Gateway credentials. When APIKey is empty the mock gateway is used.
	GatewayBaseURL string `env:"GATEWAY_BASE_URL" envDefault:"https://api.sandbox.paylink.example/v1/"`
	GatewayAPIKey  string `env:"GATEWAY_API_KEY"`
	GatewayChannel string `env:"GATEWAY_CHANNEL"`
	GatewayEnv     string `env:"GATEWAY_ENV" envDefault:"testing"` // "testing" or "production"

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"2525"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM" envDefault:"payouts@resellerhub.io"`
}

// Load reads .env (when present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
