package server

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 进程配置（环境变量，可由 .env 提供）
type Config struct {
	Port     int    // PORT，默认 8080
	LogFile  string // LOG_FILE，默认 app.log
	LogLevel string // LOG_LEVEL，默认 info
	GinMode  string // GIN_MODE，默认 release
}

// Addr 监听地址，如 ":8080"
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

// LoadConfig 读取 .env（不存在时忽略）并填充默认值
func LoadConfig() Config {
	_ = godotenv.Load()
	return Config{
		Port:     getEnvAsIntWithDefault("PORT", 8080),
		LogFile:  getEnvWithDefault("LOG_FILE", "app.log"),
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),
		GinMode:  getEnvWithDefault("GIN_MODE", "release"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault 非法数值退回默认值
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnvWithDefault(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
