package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Secrets (DB and Redis passwords) have no defaults in code and must come from config.json, .env or the environment.
type AppConfig struct {
	AppPort          string
	AllowedOrigins   []string
	PostsRequireAuth bool
	SanitizeHTML     bool
	BcryptCost       int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	SQLitePath  string
	// Redis for session and post caching
	RedisEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Sessions
	SessionTTLHours       int
	SessionCacheMinutes   int
	SessionCleanupMinutes int
	PostCacheMinutes      int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// SessionTTL is the lifetime of a freshly issued session; zero means sessions never expire.
func (c AppConfig) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 0
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// SessionCacheTTL bounds how long a session lookup stays in Redis.
func (c AppConfig) SessionCacheTTL() time.Duration {
	return time.Duration(c.SessionCacheMinutes) * time.Minute
}

// SessionCleanupInterval is the period of the expired-session cleaner.
func (c AppConfig) SessionCleanupInterval() time.Duration {
	return time.Duration(c.SessionCleanupMinutes) * time.Minute
}

// PostCacheTTL bounds how long a post view stays in Redis.
func (c AppConfig) PostCacheTTL() time.Duration {
	return time.Duration(c.PostCacheMinutes) * time.Minute
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.Mutex
)

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> .env -> environment variable overrides
	var c AppConfig
	if err := loadJSONConfig(filepath.Join("config", "config.json"), &c); err != nil {
		log.Printf("ignoring invalid config/config.json: %v", err)
	}
	applyDefaults(&c)

	// godotenv never overrides variables that are already set in the process environment.
	_ = godotenv.Load(".env")
	applyEnvOverrides(&c)

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.Lock()
	ok := loaded
	c := cfg
	mu.Unlock()
	if !ok {
		return Load()
	}
	return c
}

// Set replaces the cached configuration. Tests use it to run without files or environment.
func Set(c AppConfig) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
	loaded = true
}

// Defaults returns a configuration with every default applied and nothing read from disk or env.
func Defaults() AppConfig {
	var c AppConfig
	applyDefaults(&c)
	return c
}

// loadJSONConfig reads the grouped JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	if app, ok := raw["app"].(map[string]any); ok {
		setString(app, "AppPort", &out.AppPort)
		setStrings(app, "AllowedOrigins", &out.AllowedOrigins)
		setBool(app, "PostsRequireAuth", &out.PostsRequireAuth)
		setBool(app, "SanitizeHTML", &out.SanitizeHTML)
		setInt(app, "BcryptCost", &out.BcryptCost)
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		setString(g, "Mode", &out.GinMode)
		setString(g, "LogPath", &out.GinPath)
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		setString(dbs, "Driver", &out.DBDriver)
		setString(dbs, "DatabaseURI", &out.DatabaseURI)
		setString(dbs, "DBHost", &out.DBHost)
		setString(dbs, "DBPort", &out.DBPort)
		setString(dbs, "DBUser", &out.DBUser)
		setString(dbs, "DBPassword", &out.DBPassword)
		setString(dbs, "DBName", &out.DBName)
		setString(dbs, "SQLitePath", &out.SQLitePath)
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		setBool(rds, "Enabled", &out.RedisEnabled)
		setString(rds, "RedisHost", &out.RedisHost)
		setInt(rds, "RedisPort", &out.RedisPort)
		setInt(rds, "RedisDB", &out.RedisDB)
		setString(rds, "RedisPassword", &out.RedisPassword)
	}

	if s, ok := raw["session"].(map[string]any); ok {
		setInt(s, "TTLHours", &out.SessionTTLHours)
		setInt(s, "CacheMinutes", &out.SessionCacheMinutes)
		setInt(s, "CleanupMinutes", &out.SessionCleanupMinutes)
	}

	if cc, ok := raw["cache"].(map[string]any); ok {
		setInt(cc, "PostDetailMinutes", &out.PostCacheMinutes)
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		setString(lg, "Level", &out.LogLevel)
		setString(lg, "Path", &out.LogPath)
		setInt(lg, "MaxSizeMB", &out.LogMaxSizeMB)
		setInt(lg, "MaxBackups", &out.LogMaxBackups)
		setInt(lg, "MaxAgeDays", &out.LogMaxAgeDays)
		setBool(lg, "Compress", &out.LogCompress)
	}

	return nil
}

func setString(m map[string]any, key string, dst *string) {
	if s, ok := m[key].(string); ok && s != "" {
		*dst = s
	}
}

func setInt(m map[string]any, key string, dst *int) {
	switch t := m[key].(type) {
	case float64:
		*dst = int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			*dst = int(i)
		}
	}
}

func setBool(m map[string]any, key string, dst *bool) {
	if b, ok := m[key].(bool); ok {
		*dst = b
	}
}

func setStrings(m map[string]any, key string, dst *[]string) {
	arr, ok := m[key].([]any)
	if !ok {
		return
	}
	res := make([]string, 0, len(arr))
	for _, it := range arr {
		if s, ok := it.(string); ok {
			res = append(res, s)
		}
	}
	if len(res) > 0 {
		*dst = res
	}
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.DBDriver == "" {
		c.DBDriver = "mysql"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "simpleblog"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/simpleblog.db"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.SessionTTLHours == 0 {
		c.SessionTTLHours = 72
	}
	if c.SessionCacheMinutes == 0 {
		c.SessionCacheMinutes = 10
	}
	if c.SessionCleanupMinutes == 0 {
		c.SessionCleanupMinutes = 30
	}
	if c.PostCacheMinutes == 0 {
		c.PostCacheMinutes = 60
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := os.Getenv("APP_PORT"); v != "" {
		c.AppPort = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("POSTS_REQUIRE_AUTH"); v != "" {
		c.PostsRequireAuth = v == "true"
	}
	if v := os.Getenv("SANITIZE_HTML"); v != "" {
		c.SanitizeHTML = v == "true"
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		c.BcryptCost = mustParseInt(v)
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := os.Getenv("GIN_PATH"); v != "" {
		c.GinPath = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.DBDriver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URI"); v != "" {
		c.DatabaseURI = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DBHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.DBPort = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.DBUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		c.RedisEnabled = v == "true"
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		c.SessionTTLHours = mustParseInt(v)
	}
	if v := os.Getenv("SESSION_CACHE_MINUTES"); v != "" {
		c.SessionCacheMinutes = mustParseInt(v)
	}
	if v := os.Getenv("SESSION_CLEANUP_MINUTES"); v != "" {
		c.SessionCleanupMinutes = mustParseInt(v)
	}
	if v := os.Getenv("POST_CACHE_MINUTES"); v != "" {
		c.PostCacheMinutes = mustParseInt(v)
	}
	// Logging env overrides
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
