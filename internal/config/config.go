package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/TeddyKahwaji/spice-data-go/pkg/entitystore"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env          string `env:"ENV"               envDefault:"DEV"`
	DiscordToken string `env:"DISCORD_BOT_TOKEN,required,notEmpty"`
	BotOwnerID   string `env:"BOT_OWNER_ID"`

	ServerDataPath string        `env:"SERVER_DATA_PATH"  envDefault:"data/server_data.json"`
	EntityDataPath string        `env:"ENTITY_DATA_PATH"  envDefault:"data/entity_data.json"`
	DataFormat     string        `env:"DATA_FORMAT"       envDefault:"json"`
	FlushDelay     time.Duration `env:"DATA_FLUSH_DELAY"  envDefault:"10s"`

	UpdateCommandsAtLaunch bool `env:"UPDATE_COMMANDS_AT_LAUNCH" envDefault:"true"`
	CreateMissingDataFiles bool `env:"CREATE_MISSING_DATA_FILES" envDefault:"true"`
}

// Load reads the given .env files (".env" when none are given) into the process environment,
// without overriding variables that are already set, and parses the result.
// Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if _, err := cfg.Codec(); err != nil {
		return nil, err
	}

	if cfg.FlushDelay < 0 {
		return nil, fmt.Errorf("DATA_FLUSH_DELAY must not be negative, got %s", cfg.FlushDelay)
	}

	return &cfg, nil
}

func (c *Config) IsProd() bool {
	return strings.ToUpper(c.Env) == "PROD"
}

// Codec returns the data file codec selected by DATA_FORMAT.
func (c *Config) Codec() (entitystore.Codec, error) {
	return entitystore.CodecFor(c.DataFormat)
}
