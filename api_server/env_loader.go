package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// loadEnv 加载环境变量文件：ENV_FILE优先，否则找当前目录或上级的.env
func loadEnv() {
	if p := os.Getenv("ENV_FILE"); p != "" {
		_ = godotenv.Overload(p)
		log.Printf("[env] loaded: %s", p)
		return
	}
	for _, p := range []string{".env", "../.env"} {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			_ = godotenv.Overload(p)
			log.Printf("[env] loaded: %s", p)
			return
		}
	}
}
