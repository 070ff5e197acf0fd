package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// HoldTTL is the default lifetime of a hold when the request does not carry
// its own ttl_seconds. Defaults to ten minutes.
func HoldTTL() time.Duration {
	return time.Duration(envInt("HOLD_TTL_SECONDS", 600)) * time.Second
}

// ReaperInterval is how often the expiry sweep runs.
func ReaperInterval() time.Duration {
	return time.Duration(envInt("REAPER_POLL_SECONDS", 5)) * time.Second
}

// ServiceFee computes the surcharge added on top of a subtotal: a flat amount
// in cents plus an optional percentage, both zero when unset.
func ServiceFee(subtotal float32) float32 {
	flat := float32(envInt("SERVICE_FEE_CENTS", 0)) / 100
	pct := float32(envInt("SERVICE_FEE_PERCENT", 0))
	return flat + subtotal*pct/100
}

func RefundsQueueName() string {
	return os.Getenv("REFUNDS_QUEUE_NAME")
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
