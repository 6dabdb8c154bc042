package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（本地开发用；生产环境直接注入环境变量）
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}
