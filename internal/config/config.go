package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port        string
	BackendURL  string
	HTTPTimeout time.Duration
	TaxRate     decimal.Decimal
	CORSOrigin  string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:8080/api"),
		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT", 10)) * time.Second,
		TaxRate:     getEnvDecimal("TAX_RATE", decimal.New(1, -1)), // 10%
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		log.Printf("WARNING: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
