package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort string

	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int

	LogLevel string
	LogFile  string

	RateLimitRPS int
	TxTimeout    time.Duration

	Policy Policy
}

// Policy holds the ledger's business knobs.
type Policy struct {
	MinAmount            decimal.Decimal
	MaxAmount            decimal.Decimal
	MinDuration          int
	MaxDuration          int
	PayoutRate           decimal.Decimal
	InitialContribution  decimal.Decimal
	StartingBalance      decimal.Decimal
	VouchReward          decimal.Decimal
	FallbackInstallments int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getdec(k string, d int64) decimal.Decimal {
	if v := os.Getenv(k); v != "" {
		if n, err := decimal.NewFromString(v); err == nil {
			return n
		}
	}
	return decimal.NewFromInt(d)
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	payoutRate := decimal.RequireFromString("0.8")
	if v := os.Getenv("INSURANCE_PAYOUT_RATE"); v != "" {
		if n, err := decimal.NewFromString(v); err == nil {
			payoutRate = n
		}
	}

	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		DBDriver: getenv("DB_DRIVER", "mysql"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "metric"),
		MySQLUser: getenv("MYSQL_USER", "metric"),
		MySQLPass: getenv("MYSQL_PASS", "metric"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  getenv("SQLITE_PATH", "metric.db"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getint("REDIS_DB", 0),
		IdempTTLSecs:  getint("IDEMPOTENCY_TTL_SECONDS", 300),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		RateLimitRPS: getint("RATE_LIMIT_RPS", 20),
		TxTimeout:    time.Duration(getint("TX_TIMEOUT_MS", 5000)) * time.Millisecond,

		Policy: Policy{
			MinAmount:            getdec("LOAN_MIN_AMOUNT", 100),
			MaxAmount:            getdec("LOAN_MAX_AMOUNT", 50000),
			MinDuration:          getint("LOAN_MIN_DURATION", 1),
			MaxDuration:          getint("LOAN_MAX_DURATION", 24),
			PayoutRate:           payoutRate,
			InitialContribution:  getdec("INITIAL_CONTRIBUTION", 25),
			StartingBalance:      getdec("STARTING_BALANCE", 10000),
			VouchReward:          getdec("VOUCH_REWARD", 50),
			FallbackInstallments: getint("FALLBACK_INSTALLMENTS", 4),
		},
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TxTimeout <= 0 {
		return errors.New("TX_TIMEOUT_MS must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return errors.New("RATE_LIMIT_RPS must be positive")
	}
	return c.Policy.Validate()
}

func (p Policy) Validate() error {
	if !p.MinAmount.IsPositive() || p.MaxAmount.LessThan(p.MinAmount) {
		return fmt.Errorf("invalid loan amount bounds %s..%s", p.MinAmount, p.MaxAmount)
	}
	if p.MinDuration < 1 || p.MaxDuration < p.MinDuration {
		return fmt.Errorf("invalid loan duration bounds %d..%d", p.MinDuration, p.MaxDuration)
	}
	if p.PayoutRate.IsNegative() || p.PayoutRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("INSURANCE_PAYOUT_RATE %s outside [0,1]", p.PayoutRate)
	}
	if p.InitialContribution.IsNegative() || p.StartingBalance.IsNegative() || p.VouchReward.IsNegative() {
		return errors.New("contribution, starting balance and vouch reward must not be negative")
	}
	if p.FallbackInstallments < 1 {
		return errors.New("FALLBACK_INSTALLMENTS must be at least 1")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}
