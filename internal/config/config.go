package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB      DBConfig
	Redis   RedisConfig
	LLM     LLMConfig
	Catalog CatalogConfig
	Port    string

	// In-process memo cache sizing.
	IntentCacheSize  int
	CatalogCacheSize int
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LLMConfig selects the intent/enrichment backend. An empty APIKey switches
// the service to the deterministic rule-based client.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// CatalogConfig selects the product source. An empty ShopDomain switches
// the service to the in-memory fixture catalog.
type CatalogConfig struct {
	ShopDomain  string
	AccessToken string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "2"))
	intentCacheSize, _ := strconv.Atoi(getEnv("INTENT_CACHE_SIZE", "500"))
	catalogCacheSize, _ := strconv.Atoi(getEnv("CATALOG_CACHE_SIZE", "500"))

	return &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "gift_finder"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			APIKey:  getEnv("LLM_API_KEY", ""),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("LLM_MODEL", "gpt-4"),
		},
		Catalog: CatalogConfig{
			ShopDomain:  getEnv("SHOPIFY_SHOP_DOMAIN", ""),
			AccessToken: getEnv("SHOPIFY_STOREFRONT_TOKEN", ""),
		},
		Port:             getEnv("SERVER_PORT", "8080"),
		IntentCacheSize:  intentCacheSize,
		CatalogCacheSize: catalogCacheSize,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
