package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port       int
	StorePath  string
	CacheSize  int
	Foreground string
	LogLevel   string
}

func LoadConfig() Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	cacheSize, _ := strconv.Atoi(getEnv("CACHE_SIZE", "64"))

	return Config{
		Port:       port,
		StorePath:  getEnv("STORE_PATH", "qrpix.db"),
		CacheSize:  cacheSize,
		Foreground: getEnv("FOREGROUND", ""),
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
