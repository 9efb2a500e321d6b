package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Model store backends.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreNone     = "none"
)

type Config struct {
	DataDir     string
	Port        string
	ModelStore  string
	ModelPath   string
	DBPath      string
	DatabaseURL string
	CatalogPath string

	ForceLocalElaboration bool
	OpenAIAPIKey          string
	ElaborationBaseURL    string
	ElaborationModel      string
	ElaborationTimeout    time.Duration
	ElaborateTop          int
	ElaborationCache      string
}

// LoadEnv loads a .env file into the environment when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		DataDir:     Get("DATA_DIR", "data"),
		Port:        Get("PORT", "8080"),
		ModelStore:  strings.ToLower(Get("MODEL_STORE", StoreFile)),
		ModelPath:   Get("MODEL_PATH", "data/model.json"),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CatalogPath: os.Getenv("CATALOG_PATH"),

		ForceLocalElaboration: GetBool("FORCE_LOCAL_ELABORATION", false),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		ElaborationBaseURL:    Get("ELABORATION_BASE_URL", "https://api.openai.com/v1"),
		ElaborationModel:      Get("ELABORATION_MODEL", "gpt-4o-mini"),
		ElaborationTimeout:    GetDuration("ELABORATION_TIMEOUT", 8*time.Second),
		ElaborateTop:          GetInt("ELABORATE_TOP", 3),
		ElaborationCache:      strings.ToLower(Get("ELABORATION_CACHE", StoreNone)),
	}
}

// Validate rejects settings that must stop the process before any work.
func (c Config) Validate() error {
	switch c.ModelStore {
	case StoreFile, StoreSQLite:
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("MODEL_STORE=%s requires DATABASE_URL", c.ModelStore)
		}
	default:
		return fmt.Errorf("MODEL_STORE=%q: want %s, %s or %s", c.ModelStore, StoreFile, StoreSQLite, StorePostgres)
	}

	switch c.ElaborationCache {
	case StoreNone, StoreSQLite:
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("ELABORATION_CACHE=%s requires DATABASE_URL", c.ElaborationCache)
		}
	default:
		return fmt.Errorf("ELABORATION_CACHE=%q: want %s, %s or %s", c.ElaborationCache, StoreNone, StoreSQLite, StorePostgres)
	}

	if c.ElaborateTop < 0 {
		return fmt.Errorf("ELABORATE_TOP=%d must not be negative", c.ElaborateTop)
	}
	return nil
}

// NeedsSQLite reports whether any component is backed by DB_PATH.
func (c Config) NeedsSQLite() bool {
	return c.ModelStore == StoreSQLite || c.ElaborationCache == StoreSQLite
}

// NeedsPostgres reports whether any component is backed by DATABASE_URL.
func (c Config) NeedsPostgres() bool {
	return c.ModelStore == StorePostgres || c.ElaborationCache == StorePostgres
}

func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetBool falls back on unset or unparseable values.
func GetBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func GetInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

// GetDuration accepts Go durations ("5s") or whole seconds ("5").
func GetDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
