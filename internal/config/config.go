package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	StripeSecretKey     string // Stripe APIキー
	StripeWebhookSecret string // Webhook署名シークレット
	Currency            string // 決済通貨（usd等）

	ShippingFlatRate decimal.Decimal // 送料（全注文一律）

	ReturnReminderMaxAttempts int           // 返品リマインダーの送信上限
	ReminderInterval          time.Duration // リマインダージョブの間隔
	DigestInterval            time.Duration // 在庫ダイジェストの間隔

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	shipping, err := decimal.NewFromString(getenv("SHIPPING_FLAT_RATE", "5.00"))
	if err != nil {
		return Config{}, fmt.Errorf("SHIPPING_FLAT_RATE must be a decimal: %w", err)
	}

	maxReminders, err := strconv.Atoi(getenv("RETURN_REMINDER_MAX_ATTEMPTS", "3"))
	if err != nil {
		return Config{}, fmt.Errorf("RETURN_REMINDER_MAX_ATTEMPTS must be number: %w", err)
	}

	reminderInterval, err := time.ParseDuration(getenv("REMINDER_INTERVAL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("REMINDER_INTERVAL must be a duration: %w", err)
	}
	digestInterval, err := time.ParseDuration(getenv("DIGEST_INTERVAL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("DIGEST_INTERVAL must be a duration: %w", err)
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getenv("CURRENCY", "usd"),

		ShippingFlatRate: shipping,

		ReturnReminderMaxAttempts: maxReminders,
		ReminderInterval:          reminderInterval,
		DigestInterval:            digestInterval,

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return Config{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
