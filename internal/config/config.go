package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	BusinessID            string
	ReportCacheTTLSeconds int
	AuthSecret            string
	AccessTokenTTLMinutes int
	BusinessProfilePath   string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("REPORT_CACHE_TTL_SECONDS", "60"))
	if err != nil || ttl < 1 {
		ttl = 60
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		BusinessID:            getEnv("DEFAULT_BUSINESS_ID", "main-salon"),
		ReportCacheTTLSeconds: ttl,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		BusinessProfilePath:   strings.TrimSpace(os.Getenv("BUSINESS_PROFILE_PATH")),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// BusinessProfile holds the per-business inputs of the cost estimates and
// the calendar that date presets resolve in.
type BusinessProfile struct {
	Name              string  `yaml:"name"`
	Timezone          string  `yaml:"timezone"`
	COGSRate          float64 `yaml:"cogs_rate"`
	CardFeeRate       float64 `yaml:"card_fee_rate"`
	CardFeeFixedCents int64   `yaml:"card_fee_fixed_cents"`
	StaffHoursPerDay  float64 `yaml:"staff_hours_per_day"`
}

func DefaultProfile() BusinessProfile {
	return BusinessProfile{
		Name:              "Grooming Salon",
		Timezone:          "UTC",
		COGSRate:          0.15,
		CardFeeRate:       0.029,
		CardFeeFixedCents: 30,
		StaffHoursPerDay:  8,
	}
}

// LoadProfile reads a YAML business profile. An empty path returns the
// defaults; fields missing from the file keep their default values.
func LoadProfile(path string) (BusinessProfile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read business profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return DefaultProfile(), fmt.Errorf("parse business profile: %w", err)
	}
	if _, err := profile.Location(); err != nil {
		return DefaultProfile(), err
	}
	if profile.COGSRate < 0 || profile.CardFeeRate < 0 || profile.CardFeeFixedCents < 0 || profile.StaffHoursPerDay <= 0 {
		return DefaultProfile(), fmt.Errorf("business profile has negative cost inputs or no staff hours")
	}
	return profile, nil
}

func (p BusinessProfile) Location() (*time.Location, error) {
	if strings.TrimSpace(p.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown business timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
