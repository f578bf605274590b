package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env"
	"github.com/sirupsen/logrus"

	"github.com/edvart/cupkeeper/internal/locale"
)

type Config struct {
	Port         string `env:"PORT"          envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/cupkeeper.db"`
	DevMode      bool   `env:"DEV_MODE"      envDefault:"false"`

	DiscordToken    string `env:"DISCORD_TOKEN"`
	DiscordGuildID  string `env:"DISCORD_GUILD_ID"`
	CommandPrefix   string `env:"COMMAND_PREFIX"    envDefault:"!"`
	RefereeRole     string `env:"REFEREE_ROLE"      envDefault:"Referee"`
	StreamerRole    string `env:"STREAMER_ROLE"     envDefault:"Streamer"`
	MatchCategoryID string `env:"MATCH_CATEGORY_ID"`

	Language          string  `env:"LANGUAGE"            envDefault:"english"`
	MapMatchThreshold float64 `env:"MAP_MATCH_THRESHOLD" envDefault:"0.8"`

	BroadcastEnabled       bool     `env:"BROADCAST_ENABLED"        envDefault:"true"`
	BroadcastMatchCreated  []string `env:"BROADCAST_MATCH_CREATED"  envSeparator:","`
	BroadcastMatchStarting []string `env:"BROADCAST_MATCH_STARTING" envSeparator:","`

	// RefereeTokens are the bearer tokens accepted by the HTTP API.
	RefereeTokens []string `env:"REFEREE_TOKENS" envSeparator:","`

	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `env:"VAPID_SUBJECT" envDefault:"mailto:referee@example.com"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse environment variables: %w", err)
	}
	cfg.RefereeTokens = trimAll(cfg.RefereeTokens)
	cfg.BroadcastMatchCreated = trimAll(cfg.BroadcastMatchCreated)
	cfg.BroadcastMatchStarting = trimAll(cfg.BroadcastMatchStarting)

	if _, err := locale.New(cfg.Language); err != nil {
		return nil, err
	}
	if cfg.MapMatchThreshold <= 0 || cfg.MapMatchThreshold >= 1 {
		return nil, fmt.Errorf("MAP_MATCH_THRESHOLD must be between 0 and 1, got %v", cfg.MapMatchThreshold)
	}
	if cfg.CommandPrefix == "" {
		return nil, fmt.Errorf("COMMAND_PREFIX must not be empty")
	}
	return cfg, nil
}

// Logger builds the root logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(level)
	switch strings.ToLower(c.LogFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return logger, nil
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
