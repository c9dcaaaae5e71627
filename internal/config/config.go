/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPayPalAPIBaseURL is the sandbox endpoint; production deployments set
// PAYPAL_API_BASE_URL to https://api-m.paypal.com.
const DefaultPayPalAPIBaseURL = "https://api-m.sandbox.paypal.com"

// Config holds all the configuration variables for the crowdfunding backend.
// These values are loaded from environment variables.
type Config struct {
	ServerPort                 string `mapstructure:"SERVER_PORT"`
	DatabaseURL                string `mapstructure:"DATABASE_URL"`
	RabbitMQURL                string `mapstructure:"RABBITMQ_URL"`
	RedisURL                   string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix       string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	JWKSURL                    string `mapstructure:"JWKS_URL"`
	PayPalClientID             string `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret         string `mapstructure:"PAYPAL_CLIENT_SECRET"`
	PayPalAPIBaseURL           string `mapstructure:"PAYPAL_API_BASE_URL"`
	DonationRateLimitPerMinute int    `mapstructure:"DONATION_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("PAYPAL_API_BASE_URL", DefaultPayPalAPIBaseURL)
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "fundrise:rate_limit")
	viper.SetDefault("DONATION_RATE_LIMIT_PER_MINUTE", 30)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("PAYPAL_CLIENT_ID")
	_ = viper.BindEnv("PAYPAL_CLIENT_SECRET")
	_ = viper.BindEnv("PAYPAL_API_BASE_URL")
	_ = viper.BindEnv("DONATION_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.PayPalAPIBaseURL = strings.TrimSpace(config.PayPalAPIBaseURL)
	if config.PayPalAPIBaseURL == "" {
		config.PayPalAPIBaseURL = DefaultPayPalAPIBaseURL
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "fundrise:rate_limit"
	}
	if config.DonationRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative donation rate limit configured; disabling\" limit=%d", config.DonationRateLimitPerMinute)
		config.DonationRateLimitPerMinute = 0
	}

	return
}
