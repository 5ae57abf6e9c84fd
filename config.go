package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	JwtSecret     string
	AllowedOrigin string
	GracePeriod   time.Duration
}

func MustLoadConfig() *Config {
	godotenv.Load()
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		panic("JWT_SECRET is not provided!")
	}
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	gracePeriod := defaultGracePeriod
	if v := os.Getenv("ROOM_GRACE_PERIOD"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			gracePeriod = parsed
		}
	}
	return &Config{port, jwtSecret, allowedOrigin, gracePeriod}
}
