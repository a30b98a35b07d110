package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `env:"PORT,default=8080"`

	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresUser     string `env:"POSTGRES_USER,default=postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,default=postgres"`
	PostgresDB       string `env:"POSTGRES_DB,default=storefront"`
	PostgresHost     string `env:"POSTGRES_HOST,default=localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT,default=5432"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE,default=disable"`

	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	BcryptCost     int           `env:"BCRYPT_COST,default=12"`

	GoEnv    string `env:"GO_ENV,default=dev"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
	FEURL    string `env:"FE_URL"` // CORS の許可オリジン

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=40"`

	// 金額はdecimalで持つ
	TaxRate     Decimal `env:"TAX_RATE,default=0.08"`
	ShippingFee Decimal `env:"SHIPPING_FEE,default=15"`
}

// envdecode.Decoder を満たす decimal
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) Decode(repl string) error {
	v, err := decimal.NewFromString(repl)
	if err != nil {
		return fmt.Errorf("%q must be number: %w", repl, err)
	}
	d.Decimal = v
	return nil
}

// .env があれば読む（無くてもよい）→環境変数をデコード
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	//必須チェック
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be in [0, 1)")
	}
	if c.ShippingFee.IsNegative() {
		return fmt.Errorf("SHIPPING_FEE must be >= 0")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// DATABASE_URL があれば最優先で使う
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     c.PostgresDB,
		RawQuery: "sslmode=" + url.QueryEscape(c.PostgresSSLMode),
	}
	return u.String()
}

// ":8080" 形式
func (c Config) Addr() string {
	if len(c.Port) > 0 && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}
