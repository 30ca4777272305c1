package config

import (
	"os"
	"strconv"
	"time"

	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string
	DBDSN         string
	LogFile       string
	SweepInterval time.Duration
	DefaultTTL    time.Duration // applied when a create request omits ttl_minutes
	MaxTTLMinutes int
	BcryptCost    int
	Seed          bool
}

// fileConfig is the optional YAML shape; env vars override whatever it sets.
type fileConfig struct {
	Port                 string `yaml:"port"`
	DBDSN                string `yaml:"db_dsn"`
	LogFile              string `yaml:"log_file"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds"`
	DefaultTTLMinutes    int    `yaml:"default_ttl_minutes"`
	MaxTTLMinutes        int    `yaml:"max_ttl_minutes"`
	BcryptCost           int    `yaml:"bcrypt_cost"`
	Seed                 *bool  `yaml:"seed"`
}

func Load() Config {
	cfg := Config{
		Port:          "8080",
		DBDSN:         "stocklock.db",
		LogFile:       "./stocklock.log",
		SweepInterval: 30 * time.Second,
		DefaultTTL:    15 * time.Minute,
		MaxTTLMinutes: 60,
		BcryptCost:    12,
		Seed:          true,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			zlog.Fatal().Err(err).Str("path", path).Msg("cannot read config file")
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			zlog.Fatal().Err(err).Str("path", path).Msg("cannot parse config file")
		}
		if fc.Port != "" {
			cfg.Port = fc.Port
		}
		if fc.DBDSN != "" {
			cfg.DBDSN = fc.DBDSN
		}
		if fc.LogFile != "" {
			cfg.LogFile = fc.LogFile
		}
		if fc.SweepIntervalSeconds > 0 {
			cfg.SweepInterval = time.Duration(fc.SweepIntervalSeconds) * time.Second
		}
		if fc.DefaultTTLMinutes > 0 {
			cfg.DefaultTTL = time.Duration(fc.DefaultTTLMinutes) * time.Minute
		}
		if fc.MaxTTLMinutes > 0 {
			cfg.MaxTTLMinutes = fc.MaxTTLMinutes
		}
		if fc.BcryptCost > 0 {
			cfg.BcryptCost = fc.BcryptCost
		}
		if fc.Seed != nil {
			cfg.Seed = *fc.Seed
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DBDSN = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if n := envInt("SWEEP_INTERVAL_SECONDS"); n > 0 {
		cfg.SweepInterval = time.Duration(n) * time.Second
	}
	if n := envInt("RESERVATION_DEFAULT_TTL_MINUTES"); n > 0 {
		cfg.DefaultTTL = time.Duration(n) * time.Minute
	}
	if n := envInt("RESERVATION_MAX_TTL_MINUTES"); n > 0 {
		cfg.MaxTTLMinutes = n
	}
	if v := os.Getenv("SEED"); v != "" {
		cfg.Seed = v == "1" || v == "true"
	}

	zlog.Info().
		Str("port", cfg.Port).
		Str("db_dsn", cfg.DBDSN).
		Dur("sweep_interval", cfg.SweepInterval).
		Dur("default_ttl", cfg.DefaultTTL).
		Int("max_ttl_minutes", cfg.MaxTTLMinutes).
		Msg("config loaded")
	return cfg
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
