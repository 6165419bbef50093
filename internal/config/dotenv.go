package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	MaxRounds                int
	RoundTimeoutSeconds      int
	MatchTickSeconds         int
	MatchBaseTolerance       int
	MatchToleranceStep       int
	MatchMaxWaitSeconds      int
	RetryMaxAttempts         int
	RetryDelaySeconds        int
	StaleGameSeconds         int
	RecoverySweepSeconds     int
	StalledSweepSeconds      int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		MaxRounds:                10,
		RoundTimeoutSeconds:      30,
		MatchTickSeconds:         5,
		MatchBaseTolerance:       200,
		MatchToleranceStep:       50,
		MatchMaxWaitSeconds:      300,
		RetryMaxAttempts:         3,
		RetryDelaySeconds:        5,
		StaleGameSeconds:         300,
		RecoverySweepSeconds:     3600,
		StalledSweepSeconds:      60,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	loadInt(&cfg.MaxRounds, "MAX_ROUNDS")
	loadInt(&cfg.RoundTimeoutSeconds, "ROUND_TIMEOUT_SECONDS")
	loadInt(&cfg.MatchTickSeconds, "MATCH_TICK_SECONDS")
	loadInt(&cfg.MatchBaseTolerance, "MATCH_BASE_TOLERANCE")
	loadInt(&cfg.MatchToleranceStep, "MATCH_TOLERANCE_STEP")
	loadInt(&cfg.MatchMaxWaitSeconds, "MATCH_MAX_WAIT_SECONDS")
	loadInt(&cfg.RetryMaxAttempts, "RETRY_MAX_ATTEMPTS")
	loadInt(&cfg.RetryDelaySeconds, "RETRY_DELAY_SECONDS")
	loadInt(&cfg.StaleGameSeconds, "STALE_GAME_SECONDS")
	loadInt(&cfg.RecoverySweepSeconds, "RECOVERY_SWEEP_SECONDS")
	loadInt(&cfg.StalledSweepSeconds, "STALLED_SWEEP_SECONDS")
	loadInt(&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS")
	loadInt(&cfg.DBMaxIdleConns, "DB_MAX_IDLE_CONNS")
	loadInt(&cfg.DBConnMaxLifetimeSeconds, "DB_CONN_MAX_LIFETIME_SECONDS")
	loadInt(&cfg.DBConnMaxIdleTimeSeconds, "DB_CONN_MAX_IDLE_SECONDS")
	return cfg
}

func loadInt(target *int, name string) {
	raw := os.Getenv(name)
	if raw == "" {
		return
	}
	if value, err := strconv.Atoi(raw); err == nil && value > 0 {
		*target = value
	}
}
