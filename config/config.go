// Package config reads the service configuration from the environment. A
// .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/a2n2k3p4/paysoncheckout-backend/models"
)

type Config struct {
	Port     string
	LogLevel string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// StoreURL is the public base URL of the storefront; Payson merchant URIs
	// are built from it.
	StoreURL string
	// PublicURL is where Payson can reach this service for notifications.
	PublicURL string

	// PaysonEndpoint overrides the Payson base URL chosen by test mode.
	PaysonEndpoint string

	// Seed is written as the gateway settings option on first start.
	Seed models.GatewaySettings
}

// Load reads the configuration. Missing optional values get defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:     getenv("PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getenv("DB_PORT", "5432"),

		StoreURL:       strings.TrimRight(getenv("STORE_URL", "http://localhost:8080"), "/"),
		PublicURL:      strings.TrimRight(getenv("PUBLIC_URL", "http://localhost:8080"), "/"),
		PaysonEndpoint: os.Getenv("PAYSON_ENDPOINT"),

		Seed: models.GatewaySettings{
			Enabled:         os.Getenv("PAYSON_ENABLED") == "yes",
			OrderManagement: os.Getenv("PAYSON_ORDER_MANAGEMENT") == "yes",
			MerchantID:      os.Getenv("PAYSON_MERCHANT_ID"),
			APIKey:          os.Getenv("PAYSON_API_KEY"),
			TestMode:        os.Getenv("PAYSON_TESTMODE") == "yes",
			ColorScheme:     getenv("PAYSON_COLOR_SCHEME", "white"),
			Locale:          getenv("PAYSON_LOCALE", "sv"),
			Debug:           os.Getenv("PAYSON_DEBUG") == "yes",
		},
	}
}

// DSN is the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// MerchantURIs are the storefront and callback URLs sent with every checkout.
type MerchantURIs struct {
	Checkout     string
	Confirmation string
	Notification string
	Terms        string
}

func (c Config) MerchantURIs() MerchantURIs {
	return MerchantURIs{
		Checkout:     c.StoreURL + "/checkout",
		Confirmation: c.StoreURL + "/checkout/order-received",
		Notification: c.PublicURL + "/notifications/payson",
		Terms:        c.StoreURL + "/terms",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
