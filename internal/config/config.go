package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL   string
	PushURL      string
	AccessToken  string
	RestaurantID string
	AppEnv       string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:   os.Getenv("API_BASE_URL"),
		PushURL:      os.Getenv("PUSH_URL"),
		AccessToken:  os.Getenv("ACCESS_TOKEN"),
		RestaurantID: os.Getenv("RESTAURANT_ID"),
		AppEnv:       os.Getenv("APP_ENV"),
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}
