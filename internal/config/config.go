// Package config loads the service settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the configuration for the service
type Config struct {
	DBType string
	DBDSN  string

	TelegramToken string

	EnableScheduler bool
	// Reminders are only sent between these hours (inclusive)
	NotificationStartHour int
	NotificationEndHour   int
	// Daily progress rollup time, HH:MM
	RollupTime string
	Location   *time.Location

	MaxDailyReviews int
	// Days after a task is completed at which review tasks are created
	ReviewIntervals []int
	LogLevel        string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DBType:                "sqlite",
		DBDSN:                 "data/studyplan.db",
		EnableScheduler:       true,
		NotificationStartHour: 8,
		NotificationEndHour:   22,
		RollupTime:            "23:55",
		Location:              time.UTC,
		MaxDailyReviews:       20,
		ReviewIntervals:       []int{1, 3, 7, 14},
		LogLevel:              "info",
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("DB_TYPE", d.DBType)
	v.SetDefault("DB_DSN", d.DBDSN)
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("ENABLE_SCHEDULER", d.EnableScheduler)
	v.SetDefault("NOTIFICATION_START_HOUR", d.NotificationStartHour)
	v.SetDefault("NOTIFICATION_END_HOUR", d.NotificationEndHour)
	v.SetDefault("ROLLUP_TIME", d.RollupTime)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("MAX_DAILY_REVIEWS", d.MaxDailyReviews)
	v.SetDefault("REVIEW_INTERVALS", "1,3,7,14")
	v.SetDefault("LOG_LEVEL", d.LogLevel)
}

// Load reads .env files (missing ones are ignored) and the process environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		_ = godotenv.Load(f)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds and validates a Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DBType:                strings.ToLower(v.GetString("DB_TYPE")),
		DBDSN:                 v.GetString("DB_DSN"),
		TelegramToken:         v.GetString("TELEGRAM_BOT_TOKEN"),
		EnableScheduler:       v.GetBool("ENABLE_SCHEDULER"),
		NotificationStartHour: v.GetInt("NOTIFICATION_START_HOUR"),
		NotificationEndHour:   v.GetInt("NOTIFICATION_END_HOUR"),
		RollupTime:            v.GetString("ROLLUP_TIME"),
		MaxDailyReviews:       v.GetInt("MAX_DAILY_REVIEWS"),
		LogLevel:              strings.ToLower(v.GetString("LOG_LEVEL")),
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	intervals, err := parseIntervals(v.GetString("REVIEW_INTERVALS"))
	if err != nil {
		return nil, err
	}
	cfg.ReviewIntervals = intervals

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and formats
func (c *Config) Validate() error {
	switch c.DBType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.NotificationStartHour < 0 || c.NotificationEndHour > 23 || c.NotificationStartHour > c.NotificationEndHour {
		return fmt.Errorf("invalid notification window %d-%d", c.NotificationStartHour, c.NotificationEndHour)
	}
	if _, err := time.Parse("15:04", c.RollupTime); err != nil {
		return fmt.Errorf("invalid ROLLUP_TIME %q, expected HH:MM", c.RollupTime)
	}
	if c.MaxDailyReviews <= 0 {
		return fmt.Errorf("MAX_DAILY_REVIEWS must be positive")
	}
	return nil
}

// Driver maps DBType onto the database/sql driver name
func (c *Config) Driver() string {
	if c.DBType == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// InNotificationWindow reports whether reminders may be sent at hour
func (c *Config) InNotificationWindow(hour int) bool {
	return hour >= c.NotificationStartHour && hour <= c.NotificationEndHour
}

func parseIntervals(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(part, "%d", &n); err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid REVIEW_INTERVALS entry %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("REVIEW_INTERVALS must not be empty")
	}
	return out, nil
}
