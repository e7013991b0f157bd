package config

import (
	"fmt"
	"strings"

	"procurement/internal/currency"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	Database       DatabaseConfig
	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
	SystemActor    string
	CurrencyRates  map[string]decimal.Decimal
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// NewConfig loads configs/.env when present, then resolves every key from the
// environment with defaults.
func NewConfig() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Debug("no configs/.env file found, using environment only")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	rates, err := currency.ParseOverrides(v.GetString("CURRENCY_RATES"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CURRENCY_RATES: %w", err)
	}

	cfg := &Config{
		Port: v.GetString("PORT"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		SystemActor:    v.GetString("SYSTEM_ACTOR"),
		CurrencyRates:  rates,
	}

	log.Info("config parsed")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "4003")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "procurement")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3003")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SYSTEM_ACTOR", "system")
	v.SetDefault("CURRENCY_RATES", "")
}

// DSN renders the connection string for the configured driver. For sqlite
// DB_NAME is the database file path.
func (c *Config) DSN() string {
	db := c.Database
	if db.Driver == "sqlite" {
		return db.Name
	}
	return "postgres://" + db.User + ":" + db.Password + "@" + db.Host + ":" + db.Port + "/" + db.Name + "?sslmode=" + db.SSLMode
}

// Rates returns the static table with any configured overrides applied.
func (c *Config) Rates() currency.StaticRates {
	return currency.NewStaticRates().WithOverrides(c.CurrencyRates)
}

// ConfigureLogger applies level and formatter to the standard logrus logger.
func (c *Config) ConfigureLogger() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("unknown LOG_LEVEL %q, falling back to info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
