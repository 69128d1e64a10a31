// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Mail     MailConfig    `yaml:"mail"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
// У каждого вида токена собственный секрет и срок жизни; срок refresh-токена
// задаёт и Max-Age соответствующей cookie.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshSecret    string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	EmailTokenSecret string        `yaml:"email_token_secret" env:"JWT_EMAIL_SECRET" env-required:"true"`
	EmailTokenTTL    time.Duration `yaml:"email_token_ttl" env:"EMAIL_TOKEN_TTL" env-default:"24h"`
	Issuer           string        `yaml:"issuer" env:"ISSUER" env-default:"menu-platform"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — настройки кэша сессий. Пустой URL отключает кэш.
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL" env-default:""`
}

// MailConfig — исходящая почта и адреса редиректов подтверждения e-mail.
// DeliveryEnabled — явный флаг вместо неявной проверки окружения: письма
// отправляются только когда он включён, остальной флоу регистрации
// не меняется.
type MailConfig struct {
	Host            string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username        string `yaml:"username" env:"SMTP_USERNAME" env-default:""`
	Password        string `yaml:"password" env:"SMTP_PASSWORD" env-default:""`
	From            string `yaml:"from" env:"MAIL_FROM" env-default:"no-reply@menu-platform.local"`
	DeliveryEnabled bool   `yaml:"delivery_enabled" env:"MAIL_DELIVERY_ENABLED" env-default:"false"`
	ConfirmationURL string `yaml:"confirmation_url" env:"EMAIL_CONFIRMATION_URL" env-default:"http://localhost:8080/auth/verify-email"`
	SuccessURL      string `yaml:"success_url" env:"EMAIL_SUCCESS_URL" env-default:"http://localhost:3000/verified"`
	ErrorURL        string `yaml:"error_url" env:"EMAIL_ERROR_URL" env-default:"http://localhost:3000/verification-error"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
