package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv 读 .env；没有也没关系，直接用环境变量
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}
