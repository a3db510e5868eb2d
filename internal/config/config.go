package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	MongoURI   string
	MongoDB    string
	LogFile    string
	AdminEmail string
	AdminPass  string
}

func Load() Config {
	// Optional .env; env vars win when both are set.
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}

	cfg := Config{
		Port:       getenv("PORT", "8080"),
		MongoURI:   getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getenv("MONGO_DB", "mercado"),
		LogFile:    getenv("LOG_FILE", ""),
		AdminEmail: getenv("ADMIN_EMAIL", ""),
		AdminPass:  getenv("ADMIN_PASSWORD", ""),
	}
	log.Printf("[config] PORT=%s MONGO_DB=%s LOG_FILE=%s", cfg.Port, cfg.MongoDB, cfg.LogFile)
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
