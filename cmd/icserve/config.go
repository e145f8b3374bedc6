package main

import (
	"os"

	"github.com/joho/godotenv"
)

type serverConfig struct {
	Addr     string
	LogLevel string
	Greeting string
}

// loadConfig reads envFile (if present) and populates the server config from
// environment variables.
func loadConfig(envFile string) serverConfig {
	// .env is optional
	_ = godotenv.Load(envFile)

	return serverConfig{
		Addr:     env("IC_ADDR", ":8080"),
		LogLevel: env("IC_LOG_LEVEL", "info"),
		Greeting: env("IC_GREETING", "hello"),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
