package config

import (
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port    string
	GinMode string

	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int

	MaxParticipants         int
	AdmissionTimeoutMS      int
	LockTimeoutMS           int
	ReadRetries             int
	DefaultTimeLimitSeconds int
	JoinRatePerMinute       int

	AdminSecret   string
	TokenSecret   string
	TokenTTLHours int

	RedisURL     string
	RedisChannel string

	LogLevel string
	LogFile  string

	AutoReveal         bool
	RevealGraceSeconds int
	ResyncSeconds      int
}

func Default() Config {
	return Config{
		Port:                     "8080",
		GinMode:                  "release",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		MaxParticipants:          70,
		AdmissionTimeoutMS:       3000,
		LockTimeoutMS:            2000,
		ReadRetries:              3,
		DefaultTimeLimitSeconds:  20,
		JoinRatePerMinute:        120,
		TokenTTLHours:            12,
		RedisChannel:             "wavespace:quiz-events",
		LogLevel:                 "info",
		RevealGraceSeconds:       2,
		ResyncSeconds:            15,
	}
}

// Load overlays environment variables on Default. Numeric settings that fail
// to parse or are out of range keep their default.
func Load() Config {
	cfg := Default()
	v := viper.New()
	v.AutomaticEnv()

	setString(v, "PORT", &cfg.Port)
	setString(v, "GIN_MODE", &cfg.GinMode)
	setString(v, "DATABASE_URL", &cfg.DatabaseURL)
	setPositive(v, "DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	setPositive(v, "DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	setPositive(v, "DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds)
	setPositive(v, "DB_CONN_MAX_IDLE_SECONDS", &cfg.DBConnMaxIdleTimeSeconds)

	setPositive(v, "MAX_PARTICIPANTS", &cfg.MaxParticipants)
	setPositive(v, "ADMISSION_TIMEOUT_MS", &cfg.AdmissionTimeoutMS)
	setPositive(v, "LOCK_TIMEOUT_MS", &cfg.LockTimeoutMS)
	if raw := v.GetString("READ_RETRIES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.ReadRetries = value
		}
	}
	setPositive(v, "DEFAULT_TIME_LIMIT_SECONDS", &cfg.DefaultTimeLimitSeconds)
	setPositive(v, "JOIN_RATE_PER_MINUTE", &cfg.JoinRatePerMinute)

	setString(v, "ADMIN_SECRET", &cfg.AdminSecret)
	setString(v, "TOKEN_SECRET", &cfg.TokenSecret)
	setPositive(v, "TOKEN_TTL_HOURS", &cfg.TokenTTLHours)

	setString(v, "REDIS_URL", &cfg.RedisURL)
	setString(v, "REDIS_CHANNEL", &cfg.RedisChannel)

	setString(v, "LOG_LEVEL", &cfg.LogLevel)
	setString(v, "LOG_FILE", &cfg.LogFile)

	if v.GetString("AUTO_REVEAL") != "" {
		cfg.AutoReveal = v.GetBool("AUTO_REVEAL")
	}
	setPositive(v, "REVEAL_GRACE_SECONDS", &cfg.RevealGraceSeconds)
	setPositive(v, "RESYNC_SECONDS", &cfg.ResyncSeconds)
	return cfg
}

func (c Config) AdmissionTimeout() time.Duration {
	return time.Duration(c.AdmissionTimeoutMS) * time.Millisecond
}

func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c Config) RevealGrace() time.Duration {
	return time.Duration(c.RevealGraceSeconds) * time.Second
}

func (c Config) ResyncInterval() time.Duration {
	return time.Duration(c.ResyncSeconds) * time.Second
}

func setString(v *viper.Viper, key string, target *string) {
	if raw := v.GetString(key); raw != "" {
		*target = raw
	}
}

func setPositive(v *viper.Viper, key string, target *int) {
	if v.GetString(key) == "" {
		return
	}
	if value := v.GetInt(key); value > 0 {
		*target = value
	}
}
