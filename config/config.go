package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config 服务运行配置
type Config struct {
	Port   string // HTTP 监听端口
	DBPath string // SQLite 数据库文件路径
}

// Load 加载配置：先尝试读取 .env 文件，再读环境变量，
// 都没有设置时使用默认值。.env 不存在不算错误，仅本地开发使用。
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	return Config{
		Port:   getEnv("PORT", "7789"),
		DBPath: getEnv("DB_PATH", "./checklist.db"),
	}
}

// getEnv 读取环境变量，未设置或为空时返回默认值
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
