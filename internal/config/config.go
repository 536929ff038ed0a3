package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string
	AmadeusBase         string
	AmadeusClientID     string
	AmadeusClientSecret string
	TequilaBase         string
	TequilaAPIKey       string
	DefaultCurrency     string
	SearchTTL           time.Duration
	SearchTimeout       time.Duration
	RedisURL            string
}

func Load() *Config {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("amadeus_base", "https://test.api.amadeus.com")
	v.SetDefault("tequila_base", "https://tequila-api.kiwi.com")
	v.SetDefault("default_currency", "BRL")
	v.SetDefault("search_ttl_seconds", 900)
	v.SetDefault("search_timeout", "10s")

	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("search_timeout"))
	if err != nil {
		log.Fatalf("bad search_timeout: %v", err)
	}

	return &Config{
		Port:                v.GetString("port"),
		AmadeusBase:         v.GetString("amadeus_base"),
		AmadeusClientID:     v.GetString("amadeus_client_id"),
		AmadeusClientSecret: v.GetString("amadeus_client_secret"),
		TequilaBase:         v.GetString("tequila_base"),
		TequilaAPIKey:       v.GetString("tequila_api_key"),
		DefaultCurrency:     v.GetString("default_currency"),
		SearchTTL:           time.Duration(v.GetInt("search_ttl_seconds")) * time.Second,
		SearchTimeout:       timeout,
		RedisURL:            v.GetString("redis_url"),
	}
}

// AmadeusConfigured reports whether the Amadeus adapter should be registered.
// Missing credentials are not an error; the adapter simply stays out of the
// fan-out.
func (c *Config) AmadeusConfigured() bool {
	return c.AmadeusClientID != "" && c.AmadeusClientSecret != ""
}

func (c *Config) KiwiConfigured() bool {
	return c.TequilaAPIKey != ""
}
