// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 開発用の既定セッション秘密鍵。release モードでは使用を禁止します。
const defaultSessionSecret = "campussecret"

// セッションストアの種類
const (
	SessionStoreMemory = "memory"
	SessionStoreMongo  = "mongo"
	SessionStoreRedis  = "redis"
)

// データベースドライバーの種類
const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// セッション設定
	SessionSecret string        // セッション署名用の秘密鍵
	SessionStore  string        // memory, mongo, redis
	SessionMaxAge time.Duration // 最終書き込みからの有効期限
	RedisURL      string        // Redisセッションストアの接続URL

	// データベース設定
	DatabaseDriver string // mongo, sqlite, postgres
	MongoURI       string
	MongoDatabase  string
	DatabaseDSN    string // sqlite/postgres 用DSN

	// 認証設定
	BcryptCost int

	// 開発用シードルート
	SeedEnabled bool

	// ログ設定
	Logging LoggingConfig
}

// LoggingConfig はロガーの出力レベルと形式です。
type LoggingConfig struct {
	Level  string
	Format string // json または console
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	ginMode := getEnv("GIN_MODE", "debug")

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "5000"),
		GinMode: ginMode,

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// セッション設定
		SessionSecret: getEnv("SESSION_SECRET", defaultSessionSecret),
		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", SessionStoreMongo)),
		SessionMaxAge: time.Duration(getEnvAsInt("SESSION_MAX_AGE_HOURS", 24)) * time.Hour,
		RedisURL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		// データベース設定
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverMongo)),
		MongoURI:       getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "campusconnect"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "campusconnect.db"),

		BcryptCost:  getEnvAsInt("BCRYPT_COST", 10),
		SeedEnabled: getEnvAsBool("SEED_ENABLED", ginMode != "release"),

		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreMongo, SessionStoreRedis:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	switch c.DatabaseDriver {
	case DriverMongo, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_HOURS must be positive")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	// 本番環境では開発用の既定値を許可しない
	if c.IsRelease() {
		if c.SessionSecret == defaultSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be set in release mode")
		}
		if c.SessionStore == SessionStoreMemory {
			return fmt.Errorf("SESSION_STORE=memory is not allowed in release mode")
		}
	}

	return nil
}

// IsRelease は release モードかどうかを返します。
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// AllowedOrigins は CORS_ALLOWED_ORIGINS を配列に変換します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
