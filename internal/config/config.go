package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	App struct {
		// BaseURL используется для ссылок в письмах (сброс пароля)
		BaseURL string `yaml:"base_url"`
	} `yaml:"app"`

	Database struct {
		Driver string `yaml:"driver"` // postgres, mysql
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	JWT struct {
		Secret   string `yaml:"secret"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"jwt"`

	FirstAdmin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"first_admin"`
}

// Load читает конфигурацию и возвращает ее явным объектом.
// Конфиг передается в сборку приложения и конструкторы сервисов,
// бизнес-логика не читает окружение напрямую.
func Load() (*Config, error) {
	var cfg Config

	// Если задан DATABASE_URL - конфигурация целиком из окружения
	// (режим тестов и контейнерного деплоя)
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.DSN = dbURL
		cfg.Database.Driver = envOrDefault("DATABASE_DRIVER", "postgres")
		cfg.Server.Env = envOrDefault("SERVER_ENV", "development")
		cfg.Server.Port, _ = strconv.Atoi(envOrDefault("SERVER_PORT", "8080"))
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
		cfg.JWT.TTLHours = 24

		cfg.App.BaseURL = envOrDefault("APP_BASE_URL", "http://localhost:8080")

		cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
		cfg.Email.SMTPPort, _ = strconv.Atoi(envOrDefault("SMTP_PORT", "587"))
		cfg.Email.SMTPUsername = os.Getenv("SMTP_USER")
		cfg.Email.SMTPPassword = os.Getenv("SMTP_PASSWORD")
		cfg.Email.FromEmail = envOrDefault("FROM_EMAIL", "noreply@dentwork.kz")
		cfg.Email.FromName = envOrDefault("FROM_NAME", "DentWork")

		cfg.FirstAdmin.Email = os.Getenv("FIRST_ADMIN_EMAIL")
		cfg.FirstAdmin.Password = os.Getenv("FIRST_ADMIN_PASSWORD")

		return &cfg, cfg.validate()
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file at %s: %w", configPath, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file at %s: %w", configPath, err)
	}

	if cfg.JWT.TTLHours <= 0 {
		cfg.JWT.TTLHours = 24
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database url is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
