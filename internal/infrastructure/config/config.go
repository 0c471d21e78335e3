package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// Config アプリケーション全体の設定
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	AdminAPI      AdminAPIConfig
	OpenTelemetry OpenTelemetryConfig
	Settlement    SettlementConfig
	Notify        NotifyConfig
	Log           LogConfig
	RateLimit     RateLimitConfig
	Environment   string
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig データベース設定
type DatabaseConfig struct {
	Driver          string // "mysql", "sqlite"
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SQLitePath      string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// JWTConfig JWT設定
type JWTConfig struct {
	Secret      string
	Expiration  time.Duration
	Issuer      string
	LoginWindow time.Duration // ウォレット署名メッセージの有効期間
}

// AdminAPIConfig 管理API（インデクサ向け）設定
type AdminAPIConfig struct {
	Enabled    bool
	APIKey     string
	AllowedIPs []string
}

// OpenTelemetryConfig OpenTelemetry設定
type OpenTelemetryConfig struct {
	Enabled         bool
	ServiceName     string
	ServiceVersion  string
	OTLPEndpoint    string
	OTLPInsecure    bool
	TraceExporter   string // "otlp", "stdout"
	MetricsExporter string // "otlp", "stdout"
}

// SettlementConfig 決済エンジン設定
type SettlementConfig struct {
	FeeBps         uint32
	FeeMode        string // "pre_swap", "post_swap"
	VenueProgramID string
	TreasuryOwner  string
	DefaultMinOut  uint64
	VenuePools     []PoolConfig
}

// PoolConfig 参照スワップ先に登録するプール
type PoolConfig struct {
	AmmID     string
	Authority string
}

// NotifyConfig 決済完了通知の設定
type NotifyConfig struct {
	WebhookURL        string // 空の場合はWebhook通知を行わない
	WebhookTimeout    time.Duration
	WebhookMaxElapsed time.Duration // リトライを含めた1件あたりの上限時間
	QueueSize         int
}

// LogConfig ログ設定
type LogConfig struct {
	Level      string // "debug", "info", "warn", "error"
	File       string // 空の場合は標準出力
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// RateLimitConfig レート制限設定
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Load 設定を読み込む
func Load() (*Config, error) {
	// .envファイルを読み込む（存在しない場合は無視）
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	pools, err := parsePools(getEnv("VENUE_POOLS", ""))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	// uint32への変換前に範囲を確認する
	feeBps := getEnvAsUint("FEE_BPS", 100)
	if feeBps >= 10_000 {
		return nil, fmt.Errorf("config validation failed: FEE_BPS must be less than 10000, got %d", feeBps)
	}

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 3306),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "settlement_db"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "settlement.db"),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
			ConnectTimeout:  getEnvAsDuration("DB_CONNECT_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			Expiration:  getEnvAsDuration("JWT_EXPIRATION", 1*time.Hour),
			Issuer:      getEnv("JWT_ISSUER", "swap-settlement"),
			LoginWindow: getEnvAsDuration("JWT_LOGIN_WINDOW", 5*time.Minute),
		},
		AdminAPI: AdminAPIConfig{
			Enabled:    getEnvAsBool("ADMIN_API_ENABLED", true),
			APIKey:     getEnv("ADMIN_API_KEY", ""),
			AllowedIPs: getEnvAsSlice("ADMIN_API_ALLOWED_IPS"),
		},
		OpenTelemetry: OpenTelemetryConfig{
			Enabled:         getEnvAsBool("OTEL_ENABLED", true),
			ServiceName:     getEnv("OTEL_SERVICE_NAME", "swap-settlement"),
			ServiceVersion:  getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			OTLPInsecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			TraceExporter:   getEnv("OTEL_TRACES_EXPORTER", "otlp"),
			MetricsExporter: getEnv("OTEL_METRICS_EXPORTER", "otlp"),
		},
		Settlement: SettlementConfig{
			FeeBps:         uint32(feeBps),
			FeeMode:        getEnv("FEE_MODE", "post_swap"),
			VenueProgramID: getEnv("VENUE_PROGRAM_ID", "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"),
			TreasuryOwner:  getEnv("TREASURY_OWNER", ""),
			DefaultMinOut:  getEnvAsUint("SWAP_DEFAULT_MIN_OUT", 0),
			VenuePools:     pools,
		},
		Notify: NotifyConfig{
			WebhookURL:        getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookTimeout:    getEnvAsDuration("NOTIFY_WEBHOOK_TIMEOUT", 5*time.Second),
			WebhookMaxElapsed: getEnvAsDuration("NOTIFY_WEBHOOK_MAX_ELAPSED", 30*time.Second),
			QueueSize:         getEnvAsInt("NOTIFY_QUEUE_SIZE", 1024),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:   getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
	}

	// 必須設定の検証
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate 設定の検証
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("DB_SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Settlement.FeeBps >= 10_000 {
		return fmt.Errorf("FEE_BPS must be less than 10000")
	}
	if c.Settlement.FeeMode != "pre_swap" && c.Settlement.FeeMode != "post_swap" {
		return fmt.Errorf("FEE_MODE must be pre_swap or post_swap")
	}
	if _, err := solana.PublicKeyFromBase58(c.Settlement.VenueProgramID); err != nil {
		return fmt.Errorf("VENUE_PROGRAM_ID is invalid: %w", err)
	}
	if c.Settlement.TreasuryOwner == "" {
		return fmt.Errorf("TREASURY_OWNER is required")
	}
	if _, err := solana.PublicKeyFromBase58(c.Settlement.TreasuryOwner); err != nil {
		return fmt.Errorf("TREASURY_OWNER is invalid: %w", err)
	}
	if c.AdminAPI.Enabled && c.AdminAPI.APIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required when admin API is enabled")
	}
	return nil
}

// DSN データベース接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.SQLiteDSN()
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// SQLiteDSN SQLite接続文字列を返す
// 書き込みトランザクションは開始時に予約ロックを取る
func (c *DatabaseConfig) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", c.SQLitePath)
}

// parsePools "amm_id:authority" のカンマ区切りを解析
func parsePools(raw string) ([]PoolConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var pools []PoolConfig
	for _, item := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("VENUE_POOLS entry %q must be amm_id:authority", item)
		}
		for _, p := range parts {
			if _, err := solana.PublicKeyFromBase58(p); err != nil {
				return nil, fmt.Errorf("VENUE_POOLS entry %q: %w", item, err)
			}
		}
		pools = append(pools, PoolConfig{AmmID: parts[0], Authority: parts[1]})
	}
	return pools, nil
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsUint 環境変数を符号なし整数として取得
func getEnvAsUint(key string, defaultValue uint64) uint64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat 環境変数を浮動小数点数として取得
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool 環境変数を真偽値として取得
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration 環境変数を時間として取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice カンマ区切りの環境変数をスライスとして取得
func getEnvAsSlice(key string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return nil
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
