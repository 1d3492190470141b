package conf

import (
	"os"
	"strconv"
	"strings"
	"time"

	"izakayabot/internal/biz/usecase"
	"izakayabot/internal/service"
)

// Config represents application configuration
type Config struct {
	// Discord configuration
	Discord DiscordConfig

	// HTTP keepalive configuration
	HTTP HTTPConfig

	// Archive workflow configuration
	Archive ArchiveConfig

	// Weekly announcement configuration
	Announce AnnounceConfig
}

// DiscordConfig contains Discord credentials
type DiscordConfig struct {
	Token string
}

// HTTPConfig contains the liveness endpoint configuration
type HTTPConfig struct {
	Port int
}

// ArchiveConfig contains the archive workflow triggers and targets
type ArchiveConfig struct {
	MonitoredChannel string
	ForeignBotID     string
	TargetCommand    string
	MatchCommandName bool
	TriggerRole      string
	LinksChannel     string
	ViewRoles        []string
}

// AnnounceConfig contains the weekly attendance poll settings
type AnnounceConfig struct {
	Channel    string
	Roles      []string
	Weekday    time.Weekday
	Hour       int
	Minute     int
	OffsetDays int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return &Config{
		Discord: DiscordConfig{
			Token: os.Getenv("DISCORD_TOKEN"),
		},
		HTTP: HTTPConfig{
			Port: envInt("PORT", 8080),
		},
		Archive: ArchiveConfig{
			MonitoredChannel: envStr("MONITORED_CHANNEL", "居酒屋"),
			ForeignBotID:     os.Getenv("FOREIGN_BOT_ID"),
			TargetCommand:    envStr("TARGET_COMMAND", "base"),
			MatchCommandName: envBool("MATCH_COMMAND_NAME", true),
			TriggerRole:      os.Getenv("TRIGGER_ROLE"),
			LinksChannel:     os.Getenv("LINKS_CHANNEL"),
			ViewRoles:        envList("CATEGORY_VIEW_ROLES"),
		},
		Announce: AnnounceConfig{
			Channel:    envStr("ANNOUNCE_CHANNEL", "出欠確認"),
			Roles:      envList("ANNOUNCE_ROLES"),
			Weekday:    envWeekday("ANNOUNCE_WEEKDAY", time.Sunday),
			Hour:       envInt("ANNOUNCE_HOUR", 21),
			Minute:     envInt("ANNOUNCE_MINUTE", 0),
			OffsetDays: envInt("ANNOUNCE_OFFSET_DAYS", 5),
		},
	}
}

// ToArchiveConfig converts to the workflow configuration
func (c *ArchiveConfig) ToArchiveConfig() usecase.ArchiveConfig {
	return usecase.ArchiveConfig{
		MonitoredChannel: c.MonitoredChannel,
		ForeignBotID:     c.ForeignBotID,
		TargetCommand:    c.TargetCommand,
		MatchCommandName: c.MatchCommandName,
		TriggerRole:      c.TriggerRole,
		LinksChannel:     c.LinksChannel,
		ViewRoles:        c.ViewRoles,
	}
}

// ToWeeklyConfig converts to the scheduler configuration
func (c *AnnounceConfig) ToWeeklyConfig() service.WeeklyConfig {
	return service.WeeklyConfig{
		Channel:    c.Channel,
		Roles:      c.Roles,
		Weekday:    c.Weekday,
		Hour:       c.Hour,
		Minute:     c.Minute,
		OffsetDays: c.OffsetDays,
		Days:       7,
	}
}

// Validate validates the configuration. The Discord token is checked
// separately: its absence disables the bot but is not fatal.
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return &ConfigError{Field: "PORT", Message: "must be in [1,65535]"}
	}
	if c.Announce.Hour < 0 || c.Announce.Hour > 23 {
		return &ConfigError{Field: "ANNOUNCE_HOUR", Message: "must be in [0,23]"}
	}
	if c.Announce.Minute < 0 || c.Announce.Minute > 59 {
		return &ConfigError{Field: "ANNOUNCE_MINUTE", Message: "must be in [0,59]"}
	}
	if c.Announce.OffsetDays < 0 {
		return &ConfigError{Field: "ANNOUNCE_OFFSET_DAYS", Message: "must be >= 0"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func envStr(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

func envList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func envWeekday(key string, def time.Weekday) time.Weekday {
	if val := os.Getenv(key); val != "" {
		if wd, ok := weekdays[strings.ToLower(val)]; ok {
			return wd
		}
	}
	return def
}
