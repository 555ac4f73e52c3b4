package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPrefix                   = "!"
	DefaultDatabasePath             = "./data/cogbot.db"
	DefaultLogLevel                 = "info"
	DefaultTenorBaseURL             = "https://g.tenor.com"
	DefaultMirrorIntervalSeconds    = 30
	DefaultSessionMaxAgeMinutes     = 60
	DefaultNotificationChannelName  = "event-notifications"
	DefaultTenorRequestsPerInterval = 10
)

type Config struct {
	// Discord
	DiscordToken string
	Prefix       string

	// Storage
	DatabasePath string

	// Logging
	LogLevel string

	// Meme GIFs
	TenorAPIKey  string
	TenorBaseURL string

	// Channel mirror polling
	MirrorInterval time.Duration

	// MidJourney relay
	SessionMaxAge time.Duration

	// Events
	NotificationChannelName string
}

// Load reads the configuration from the environment,
// after loading a .env file if there is one
func Load() (*Config, error) {

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file loaded, using the process environment")
	}

	cfg := &Config{
		DiscordToken:            os.Getenv("DISCORD_BOT_TOKEN"),
		Prefix:                  getEnvWithDefault("COMMAND_PREFIX", DefaultPrefix),
		DatabasePath:            getEnvWithDefault("DATABASE_PATH", DefaultDatabasePath),
		LogLevel:                getEnvWithDefault("LOG_LEVEL", DefaultLogLevel),
		TenorAPIKey:             os.Getenv("TENOR_API_KEY"),
		TenorBaseURL:            getEnvWithDefault("TENOR_BASE_URL", DefaultTenorBaseURL),
		NotificationChannelName: getEnvWithDefault("EVENTS_NOTIFICATION_CHANNEL", DefaultNotificationChannelName),
	}

	mirrorSeconds, err := getEnvInt("MIRROR_INTERVAL_SECONDS", DefaultMirrorIntervalSeconds)
	if err != nil {
		return nil, err
	}
	cfg.MirrorInterval = time.Duration(mirrorSeconds) * time.Second

	sessionMinutes, err := getEnvInt("MJ_SESSION_MAX_AGE_MINUTES", DefaultSessionMaxAgeMinutes)
	if err != nil {
		return nil, err
	}
	cfg.SessionMaxAge = time.Duration(sessionMinutes) * time.Minute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.DiscordToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if cfg.Prefix == "" {
		return fmt.Errorf("COMMAND_PREFIX cannot be empty")
	}
	if cfg.MirrorInterval <= 0 {
		return fmt.Errorf("MIRROR_INTERVAL_SECONDS must be positive")
	}
	if cfg.SessionMaxAge <= 0 {
		return fmt.Errorf("MJ_SESSION_MAX_AGE_MINUTES must be positive")
	}
	return nil
}

func getEnvWithDefault(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
