package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var BOT_TOKEN string
var ADMIN_CHAT_ID int64
var MIGRATIONS_PATH string
var EARNINGS_CRON string
var REFERRAL_REFRESH_CRON string
var PURGE_CRON string

var log = InitLogger()

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func InitConfig() error {
	err := godotenv.Load()
	if err != nil {
		log.Error("Error loading .env file")
	}

	BOT_TOKEN = os.Getenv("BOT_TOKEN")
	ADMIN_CHAT_ID, err = strconv.ParseInt(os.Getenv("ADMIN_CHAT_ID"), 10, 64)
	if err != nil {
		log.Error("Error parsing ADMIN_CHAT_ID")
		ADMIN_CHAT_ID = 0
	}

	MIGRATIONS_PATH = getEnvOr("MIGRATIONS_PATH", "file://migrations")
	EARNINGS_CRON = getEnvOr("EARNINGS_CRON", "0 0 * * *")
	REFERRAL_REFRESH_CRON = getEnvOr("REFERRAL_REFRESH_CRON", "0 * * * *")
	PURGE_CRON = getEnvOr("PURGE_CRON", "30 0 * * *")

	return nil
}

func LoadPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		DBName:   os.Getenv("DB_NAME"),
	}
}

func getEnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
