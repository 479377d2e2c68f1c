package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yungbote/sunft-backend/internal/data/db"
	"github.com/yungbote/sunft-backend/internal/domain/address"
	"github.com/yungbote/sunft-backend/internal/domain/sunft"
	"github.com/yungbote/sunft-backend/internal/observability"
	"github.com/yungbote/sunft-backend/internal/platform/config"
)

const (
	ClockSystem = "system"
	ClockManual = "manual"

	CostCumulative = "cumulative"
	CostPerItem    = "per_item"
)

type DBConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"sunft.db"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"sunft"`
}

func (c DBConfig) Options() db.Options {
	return db.Options{
		Driver:           strings.ToLower(strings.TrimSpace(c.Driver)),
		SQLitePath:       c.SQLitePath,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
	}
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Channel  string `env:"REDIS_CHANNEL" envDefault:"sunft"`
}

// LockPrefix namespaces bundle lock keys under the event channel name.
func (c RedisConfig) LockPrefix() string { return c.Channel + ":lock" }

type Config struct {
	LogMode     string   `env:"LOG_MODE" envDefault:"development"`
	HTTPAddr    string   `env:"HTTP_ADDR" envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	JWTSecretKey   string        `env:"JWT_SECRET_KEY" envDefault:"defaultsecret"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`

	DB    DBConfig
	Redis RedisConfig
	Otel  observability.OtelConfig

	QueenAddress   string `env:"SUNFT_QUEEN_ADDRESS,required"`
	MintingFeeRaw  string `env:"SUNFT_MINTING_FEE" envDefault:"0"`
	CustodyAddress string `env:"SUNFT_CUSTODY_ADDRESS" envDefault:"0x0000000000000000000000000000000000005f17"`
	Clock          string `env:"SUNFT_CLOCK" envDefault:"system"`
	ClockStart     int64  `env:"SUNFT_CLOCK_START"`
	CostModel      string `env:"SUNFT_COST_MODEL" envDefault:"cumulative"`
	DevLedger      bool   `env:"SUNFT_DEV_LEDGER" envDefault:"false"`
	SeedFile       string `env:"SUNFT_SEED_FILE"`

	SweepInterval    time.Duration `env:"SUNFT_UNLOCK_SWEEP_INTERVAL" envDefault:"0s"`
	SweepConcurrency int           `env:"SUNFT_UNLOCK_SWEEP_CONCURRENCY" envDefault:"4"`

	mintingFee decimal.Decimal
}

// LoadConfig reads the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate normalizes addresses and enum values in place.
func (c *Config) Validate() error {
	queen, err := address.Normalize(c.QueenAddress)
	if err != nil {
		return fmt.Errorf("SUNFT_QUEEN_ADDRESS %q: %w", c.QueenAddress, err)
	}
	c.QueenAddress = queen

	custody, err := address.Normalize(c.CustodyAddress)
	if err != nil {
		return fmt.Errorf("SUNFT_CUSTODY_ADDRESS %q: %w", c.CustodyAddress, err)
	}
	c.CustodyAddress = custody

	fee, err := sunft.ParseAmount(c.MintingFeeRaw)
	if err != nil {
		return fmt.Errorf("SUNFT_MINTING_FEE %q: %w", c.MintingFeeRaw, err)
	}
	c.mintingFee = fee

	c.Clock = strings.ToLower(strings.TrimSpace(c.Clock))
	if c.Clock != ClockSystem && c.Clock != ClockManual {
		return fmt.Errorf("SUNFT_CLOCK must be %q or %q, got %q", ClockSystem, ClockManual, c.Clock)
	}
	c.CostModel = strings.ToLower(strings.TrimSpace(c.CostModel))
	if c.CostModel != CostCumulative && c.CostModel != CostPerItem {
		return fmt.Errorf("SUNFT_COST_MODEL must be %q or %q, got %q", CostCumulative, CostPerItem, c.CostModel)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return nil
}

func (c Config) costModel() sunft.CostModel {
	if c.CostModel == CostPerItem {
		return sunft.PerItemCost{}
	}
	return sunft.CumulativeCost{}
}

// MintingFee is the parsed SUNFT_MINTING_FEE; valid after Validate.
func (c Config) MintingFee() decimal.Decimal { return c.mintingFee }
