package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	Level string
}

// CatalogConfig selects where the product CSV is read from.
// Source is one of "file", "http" or "s3".
type CatalogConfig struct {
	Source      string
	FilePath    string
	URL         string
	HTTPTimeout time.Duration
	S3Bucket    string
	S3Key       string
	S3Region    string
}

type CartConfig struct {
	StockPolicy     string
	SessionIdle     time.Duration
	SweepSpec       string
	SnapshotBackend string // "memory" or "redis"
	SnapshotTTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OrderConfig struct {
	IDPrefix        string
	SubmitDelay     time.Duration
	DeliveryDays    int
	EmailEnabled    bool
	WhatsAppEnabled bool
	WhatsAppNumber  string
	RabbitMQURI     string
	Queue           string
}

type MetricsConfig struct {
	Prefix string
}

type Config struct {
	ServiceName string
	Server      ServerConfig
	Log         LogConfig
	Catalog     CatalogConfig
	Cart        CartConfig
	Redis       RedisConfig
	Order       OrderConfig
	Metrics     MetricsConfig
}

// Load reads an optional .env file and then the process environment.
func Load(serviceName string) Config {
	_ = godotenv.Load()

	return Config{
		ServiceName: serviceName,
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
			Env:  GetEnv("APP_ENV", "development"),
		},
		Log: LogConfig{
			Level: GetEnv("LOG_LEVEL", "info"),
		},
		Catalog: CatalogConfig{
			Source:      strings.ToLower(GetEnv("CATALOG_SOURCE", "file")),
			FilePath:    GetEnv("CATALOG_FILE", "data/products.csv"),
			URL:         GetEnv("CATALOG_URL", ""),
			HTTPTimeout: GetEnvAsDuration("CATALOG_HTTP_TIMEOUT", 10*time.Second),
			S3Bucket:    GetEnv("CATALOG_S3_BUCKET", ""),
			S3Key:       GetEnv("CATALOG_S3_KEY", "products.csv"),
			S3Region:    GetEnv("AWS_REGION", "ap-south-1"),
		},
		Cart: CartConfig{
			StockPolicy:     strings.ToLower(GetEnv("CART_STOCK_POLICY", "allow")),
			SessionIdle:     GetEnvAsDuration("CART_SESSION_IDLE_TIMEOUT", 2*time.Hour),
			SweepSpec:       GetEnv("CART_SWEEP_SPEC", "0 */10 * * * *"),
			SnapshotBackend: strings.ToLower(GetEnv("CART_SNAPSHOT_BACKEND", "memory")),
			SnapshotTTL:     GetEnvAsDuration("CART_SNAPSHOT_TTL", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Order: OrderConfig{
			IDPrefix:        GetEnv("ORDER_ID_PREFIX", "VE"),
			SubmitDelay:     GetEnvAsDuration("ORDER_SUBMIT_DELAY", 1500*time.Millisecond),
			DeliveryDays:    GetEnvAsInt("ORDER_DELIVERY_DAYS", 3),
			EmailEnabled:    GetEnvAsBool("ORDER_EMAIL_ENABLED", true),
			WhatsAppEnabled: GetEnvAsBool("ORDER_WHATSAPP_ENABLED", true),
			WhatsAppNumber:  GetEnv("ORDER_WHATSAPP_NUMBER", "7023312573"),
			RabbitMQURI:     GetEnv("RABBITMQ_URI", ""),
			Queue:           GetEnv("ORDER_QUEUE", "orders"),
		},
		Metrics: MetricsConfig{
			Prefix: GetEnv("METRICS_PREFIX", "storefront"),
		},
	}
}

// GetEnv returns the variable value if set, otherwise fallback.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int) int {
	strValue := GetEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := GetEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	strValue := GetEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
