package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	// StoreBackend selects the storage adapter once at startup:
	// "memory", "sheet" or "mysql".
	StoreBackend  string
	SheetPath     string
	MySQLDSN      string
	MemoryLatency time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		StoreBackend:  getenv("STORE_BACKEND", "memory"),
		SheetPath:     getenv("SHEET_PATH", "store.xlsx"),
		MySQLDSN:      getenv("MYSQL_DSN", "root:@tcp(127.0.0.1:3306)/storefront?parseTime=true"),
		MemoryLatency: getduration("MEMORY_LATENCY", 0),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getenv("KAFKA_TOPIC", "order-topic"),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getint("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASS"),
		SMTPFrom:      getenv("SMTP_FROM", "no-reply@libreriarexy.com"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
