package config

import (
	"os"
	"strconv"
)

type Config struct {
	AuthPort       string
	ModsPort       string
	DatabaseURL    string
	SessionTTLDays int
}

func Load() Config {
	authPort := os.Getenv("AUTH_PORT")
	if authPort == "" {
		authPort = "8081"
	}
	modsPort := os.Getenv("MODS_PORT")
	if modsPort == "" {
		modsPort = "8082"
	}

	return Config{
		AuthPort:       authPort,
		ModsPort:       modsPort,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SessionTTLDays: readInt("SESSION_TTL_DAYS", 30),
	}
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
