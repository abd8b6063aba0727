package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var portCmd = flag.Int("port", 0, "HTTP server port (0 disables the server)")

type Config struct {
	DataDirectory string
	ServerPort    int
	BlockSizeKB   int
	BlockCount    int
	PrintCount    int
	LogLevel      string
}

func LoadConfig() Config {
	godotenv.Load(".env")
	return Config{
		DataDirectory: envOr("DATA_DIRECTORY", "data"),
		ServerPort:    envIntOr("HTTP_SERVER_PORT", *portCmd),
		BlockSizeKB:   envIntOr("BLOCK_SIZE_KB", 1),
		BlockCount:    envIntOr("BLOCK_COUNT", 4),
		PrintCount:    envIntOr("PRINT_COUNT", 20),
		LogLevel:      envOr("LOG_LEVEL", "INFO"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
