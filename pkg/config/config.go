package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret     []byte
	UserTokenTTL  time.Duration
	AdminTokenTTL time.Duration
	ResetTokenTTL time.Duration

	RedisAddr string

	KafkaBrokers []string
	KafkaGroupID string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ProductIndex    string

	AllowedOrigins     []string
	LoginRatePerMinute int

	SupportWhatsApp string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "medical-shop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		UserTokenTTL:  EnvDurationDefault("USER_TOKEN_TTL", 24*time.Hour),
		AdminTokenTTL: EnvDurationDefault("ADMIN_TOKEN_TTL", 2*time.Hour),
		ResetTokenTTL: EnvDurationDefault("RESET_TOKEN_TTL", 10*time.Minute),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaGroupID: EnvDefault("KAFKA_GROUP_ID", "product-indexer"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ProductIndex:    EnvDefault("PRODUCT_INDEX", "products"),

		AllowedOrigins:     CSV(EnvDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		LoginRatePerMinute: EnvIntDefault("LOGIN_RATE_PER_MINUTE", 5),

		SupportWhatsApp: os.Getenv("SUPPORT_WHATSAPP"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
