package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

// Dictionary sources accepted by DICTIONARY_SOURCE.
const (
	DictionarySourcePostgres  = "postgres"
	DictionarySourceDatastore = "datastore"
	DictionarySourceElastic   = "elastic"
	DictionarySourceStatic    = "static"
)

type envConfig struct {
	// server config
	APP_PORT string
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// dictionary config
	DICTIONARY_SOURCE    string
	DICTIONARY_FILE      string
	DICTIONARY_WORKERS   int
	DATASTORE_PROJECT_ID string
	ELASTIC_URL          string
	ELASTIC_INDEX        string
	// dropdown config
	DROPDOWN_INLINE_LIMIT     int
	DROPDOWN_MAX_ROWS         int
	DROPDOWN_MAX_CASCADE_ROWS int
	TEMPLATE_DIR              string
	// logger config
	LOG_FILE_PATH string
	LOG_DEBUG     bool
}

// LoadEnvConfig reads .env (if present) and the process environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:                  getEnvString("APP_PORT", "8080"),
		DB_HOST:                   getEnvString("DB_HOST", "localhost"),
		DB_PORT:                   getEnvInt("DB_PORT", 5432),
		DB_USER:                   getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:               getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:                   getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:               getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:      getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:         getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:         getEnvInt("DB_MAX_OPEN_CONNS", 100),
		DICTIONARY_SOURCE:         strings.ToLower(getEnvString("DICTIONARY_SOURCE", DictionarySourceStatic)),
		DICTIONARY_FILE:           getEnvString("DICTIONARY_FILE", "dictionaries.yaml"),
		DICTIONARY_WORKERS:        getEnvInt("DICTIONARY_WORKERS", 4),
		DATASTORE_PROJECT_ID:      getEnvString("DATASTORE_PROJECT_ID", ""),
		ELASTIC_URL:               getEnvString("ELASTIC_URL", "http://localhost:9200"),
		ELASTIC_INDEX:             getEnvString("ELASTIC_INDEX", "dictionary_items"),
		DROPDOWN_INLINE_LIMIT:     getEnvInt("DROPDOWN_INLINE_LIMIT", 10),
		DROPDOWN_MAX_ROWS:         getEnvInt("DROPDOWN_MAX_ROWS", 1000),
		DROPDOWN_MAX_CASCADE_ROWS: getEnvInt("DROPDOWN_MAX_CASCADE_ROWS", 100),
		TEMPLATE_DIR:              getEnvString("TEMPLATE_DIR", "templates"),
		LOG_FILE_PATH:             getEnvString("LOG_FILE_PATH", ""),
		LOG_DEBUG:                 getEnvBool("LOG_DEBUG", false),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
