package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
)

type Config struct {
	Port          string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	AutoMigrate   bool
	GinMode       string
	MigrationsDir string
	SwaggerSpec   string

	EdgeFunctionsURL string
	EdgeFunctionsKey string
	LookupTimeout    time.Duration
	RateSyncInterval time.Duration

	FCLThresholdCBM      float64
	LCLRatePerCBM        float64
	CommissionRate       float64
	CommissionVATRate    float64
	ImportVATRate        float64
	DutyRequiresShipping bool

	DefaultUSDRate          float64
	DefaultCNYRate          float64
	DefaultTariffRate       float64
	CertificateOfOriginCost float64
}

func Load() *Config {
	defaults := pricing.DefaultConfig()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "tradecost"),
		DBPassword:    getEnv("DB_PASSWORD", "tradecost_secret"),
		DBName:        getEnv("DB_NAME", "tradecost"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		AutoMigrate:   getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:       getEnv("GIN_MODE", "debug"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "file://migrations"),
		SwaggerSpec:   getEnv("SWAGGER_SPEC", "docs/swagger.json"),

		EdgeFunctionsURL: getEnv("EDGE_FUNCTIONS_URL", "http://localhost:54321"),
		EdgeFunctionsKey: getEnv("EDGE_FUNCTIONS_KEY", ""),
		LookupTimeout:    getDuration("LOOKUP_TIMEOUT", 15*time.Second),
		RateSyncInterval: getDuration("RATE_SYNC_INTERVAL", 24*time.Hour),

		FCLThresholdCBM:      getFloat("PRICING_FCL_THRESHOLD_CBM", defaults.FCLThresholdCBM),
		LCLRatePerCBM:        getFloat("PRICING_LCL_RATE_PER_CBM", defaults.LCLRatePerCBM),
		CommissionRate:       getFloat("PRICING_COMMISSION_RATE", defaults.CommissionRate),
		CommissionVATRate:    getFloat("PRICING_COMMISSION_VAT_RATE", defaults.CommissionVATRate),
		ImportVATRate:        getFloat("PRICING_IMPORT_VAT_RATE", defaults.ImportVATRate),
		DutyRequiresShipping: getBool("PRICING_DUTY_REQUIRES_SHIPPING", defaults.DutyRequiresShipping),

		DefaultUSDRate:          getFloat("DEFAULT_USD_RATE", 1470),
		DefaultCNYRate:          getFloat("DEFAULT_CNY_RATE", 201),
		DefaultTariffRate:       getFloat("DEFAULT_TARIFF_RATE", 8),
		CertificateOfOriginCost: getFloat("CERTIFICATE_OF_ORIGIN_COST", 50000),
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c *Config) Pricing() pricing.Config {
	return pricing.Config{
		FCLThresholdCBM:      c.FCLThresholdCBM,
		LCLRatePerCBM:        c.LCLRatePerCBM,
		CommissionRate:       c.CommissionRate,
		CommissionVATRate:    c.CommissionVATRate,
		ImportVATRate:        c.ImportVATRate,
		DutyRequiresShipping: c.DutyRequiresShipping,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid number, using default")
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid boolean, using default")
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration, using default")
		return fallback
	}
	return v
}
