package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Addr string

	DBHost string
	DBPort int
	DBUser string
	DBPass string
	DBName string

	RedisAddr     string
	RedisDB       int
	RedisUser     string
	RedisPass     string
	DevicePoolKey string
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func loadConfig() Config {
	apiHost := getenv("API_HOST", "0.0.0.0")
	apiPort := getenvInt("API_PORT", 8080)
	return Config{
		Addr: getenv("API_ADDR", fmt.Sprintf("%s:%d", apiHost, apiPort)),

		DBHost: getenv("DB_HOST", "127.0.0.1"),
		DBPort: getenvInt("DB_PORT", 3306),
		DBUser: getenv("DB_USER", "root"),
		DBPass: getenv("DB_PASSWORD", "123456"),
		DBName: getenv("DB_NAME", "tt_signer"),

		// REDIS_ADDR为空时设备池功能关闭
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RedisUser:     getenv("REDIS_USERNAME", ""),
		RedisPass:     getenv("REDIS_PASSWORD", ""),
		DevicePoolKey: getenv("REDIS_DEVICE_POOL_KEY", "tt_signer:device_pool"),
	}
}

func (c Config) MySQLDSN() string {
	// parseTime 用于扫描 TIMESTAMP；utf8mb4 避免字符集问题
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=Local",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}
