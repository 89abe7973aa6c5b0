package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultDatabaseDriver = "mongo"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDatabase  = "resor"
	defaultRedisAddr      = "localhost:6379"
	defaultJWTSecret      = "resor-app"
	defaultJWTTTL         = "2h"
	defaultAppPort        = "3000"
	defaultAppEnv         = "local"
	defaultCacheTTL       = "5m"
	defaultRateLimit      = "200"
	defaultOrderTopic     = "resor.orders"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, config/app.yaml and .env over the defaults.
// Process environment variables win over every file.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", "config/app.yaml", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"DB_DRIVER":                  defaultDatabaseDriver,
		"MONGO_URI":                  defaultMongoURI,
		"MONGO_DATABASE":             defaultMongoDatabase,
		"REDIS_ADDR":                 defaultRedisAddr,
		"REDIS_PASSWORD":             "",
		"JWT_SECRET":                 defaultJWTSecret,
		"JWT_TTL":                    defaultJWTTTL,
		"APP_PORT":                   defaultAppPort,
		"APP_ENV":                    defaultAppEnv,
		"CACHE_TTL":                  defaultCacheTTL,
		"RATE_LIMIT":                 defaultRateLimit,
		"LOG_MONGO":                  "false",
		"CORS_ORIGINS":               "*",
		"TRUSTED_PROXIES":            "",
		"KAFKA_BROKERS":              "",
		"KAFKA_ORDER_TOPIC":          defaultOrderTopic,
		"STORAGE_DISK":               "local",
		"ORDER_STRICT_TRANSITIONS":   "false",
		"ORDER_REJECT_UNKNOWN_ITEMS": "false",
	}
}

// DatabaseDriver selects the store backend: "mongo" or "memory".
func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "mongo", "memory":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGO_DATABASE", defaultMongoDatabase)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// JWTTTL is how long an issued token stays valid.
func JWTTTL() time.Duration {
	_ = Load()
	return Duration("JWT_TTL", 2*time.Hour)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func CacheTTL() time.Duration {
	_ = Load()
	return Duration("CACHE_TTL", 5*time.Minute)
}

// RateLimit is the number of requests per minute allowed for one client IP.
func RateLimit() int {
	_ = Load()
	n, err := strconv.Atoi(get("RATE_LIMIT", defaultRateLimit))
	if err != nil || n <= 0 {
		return 200
	}
	return n
}

// CORSOrigins is a comma separated list of admitted browser origins.
func CORSOrigins() string {
	_ = Load()
	return get("CORS_ORIGINS", "*")
}

// TrustedProxies lists the proxy IPs or CIDRs allowed to set X-Forwarded-For.
// Empty means the header is ignored.
func TrustedProxies() string {
	_ = Load()
	return get("TRUSTED_PROXIES", "")
}

func LogMongo() bool {
	_ = Load()
	return Bool("LOG_MONGO")
}

// KafkaBrokers returns the comma separated broker list, or "" when Kafka is off.
func KafkaBrokers() string {
	_ = Load()
	return get("KAFKA_BROKERS", "")
}

func KafkaOrderTopic() string {
	_ = Load()
	return get("KAFKA_ORDER_TOPIC", defaultOrderTopic)
}

// ── Orders ───────────────────────────────────────────────────────────────────

func OrderStrictTransitions() bool {
	_ = Load()
	return Bool("ORDER_STRICT_TRANSITIONS")
}

func OrderRejectUnknownItems() bool {
	_ = Load()
	return Bool("ORDER_REJECT_UNKNOWN_ITEMS")
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:3000/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

func loadFromFiles(jsonPath, yamlPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(jsonPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeYAMLConfig(yamlPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	mergeRaw(raw, out)
	return nil
}

func mergeYAMLConfig(path string, out map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	mergeRaw(raw, out)
	return nil
}

// mergeRaw copies scalar values; nested objects are ignored.
func mergeRaw(raw map[string]interface{}, out map[string]string) {
	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}

		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case bool, int, int64, float64:
			out[k] = fmt.Sprint(v)
		}
	}
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func mergeEnviron(out map[string]string) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		out[strings.ToUpper(key)] = strings.TrimSpace(value)
	}
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Bool reports whether key holds a truthy value ("1", "true", "yes", "on").
func Bool(key string) bool {
	switch strings.ToLower(get(key, "")) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Duration parses key as a time.Duration, falling back when unset or invalid.
func Duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Set overrides a single key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()

	mu.Lock()
	defer mu.Unlock()
	values[strings.ToUpper(key)] = value
}
