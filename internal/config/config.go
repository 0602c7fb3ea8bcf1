package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	RunAddress       string
	DatabaseURI      string
	JWTSecret        string
	MonthLocale      string
	QueryTimeout     time.Duration
	TokenTTL         time.Duration
	HideErrorDetails bool
	SeedFile         string
	AdminLogin       string
	AdminPassword    string
}

func NewConfig() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "HTTP server address")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "DB connection string")
	flag.StringVar(&cfg.JWTSecret, "k", "", "JWT signing secret")
	flag.StringVar(&cfg.MonthLocale, "l", "sv", "Month names locale")
	flag.DurationVar(&cfg.QueryTimeout, "t", 10*time.Second, "Report query timeout")
	flag.DurationVar(&cfg.TokenTTL, "ttl", 24*time.Hour, "Issued token lifetime")
	flag.StringVar(&cfg.SeedFile, "s", "", "JSON file with courses and orders to load at startup")
	flag.BoolVar(&cfg.HideErrorDetails, "hide-errors", false, "Hide storage error text in responses")
	flag.Parse()

	ReadServerEnvironment(cfg)

	return cfg
}

func ReadServerEnvironment(cfg *Config) {
	if runAddress := os.Getenv("RUN_ADDRESS"); runAddress != "" {
		cfg.RunAddress = runAddress
	}

	if databaseURI := os.Getenv("DATABASE_URI"); databaseURI != "" {
		cfg.DatabaseURI = databaseURI
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}

	if locale := os.Getenv("MONTH_LOCALE"); locale != "" {
		cfg.MonthLocale = locale
	}

	if timeout := os.Getenv("QUERY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.QueryTimeout = d
		}
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = d
		}
	}

	if seed := os.Getenv("SEED_FILE"); seed != "" {
		cfg.SeedFile = seed
	}

	if login := os.Getenv("ADMIN_LOGIN"); login != "" {
		cfg.AdminLogin = login
	}

	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		cfg.AdminPassword = password
	}

	if hide := os.Getenv("HIDE_ERROR_DETAILS"); hide != "" {
		if v, err := strconv.ParseBool(hide); err == nil {
			cfg.HideErrorDetails = v
		}
	}
}
