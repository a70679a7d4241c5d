package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the process configuration.
type Settings struct {
	BotToken string         `mapstructure:"bot_token"`
	Bot      BotSettings    `mapstructure:"bot"`
	Data     DataSettings   `mapstructure:"data"`
	Drive    DriveSettings  `mapstructure:"drive"`
	Health   HealthSettings `mapstructure:"health"`
	Log      LogSettings    `mapstructure:"log"`
	Commands CommandsConfig `mapstructure:"commands"`
}

type BotSettings struct {
	AdminChannelID string        `mapstructure:"admin_channel_id"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	PageCapacity   int           `mapstructure:"page_capacity"`
}

type DataSettings struct {
	Dir       string `mapstructure:"dir"`
	HistoryDB string `mapstructure:"history_db"`
}

// DriveSettings locates the scanned root folder and the credentials to reach it.
type DriveSettings struct {
	CredentialsFile       string        `mapstructure:"credentials_file"`
	TokenFile             string        `mapstructure:"token_file"`
	RootID                string        `mapstructure:"root_id"`
	RootName              string        `mapstructure:"root_name"`
	RootURL               string        `mapstructure:"root_url"`
	RequestTimeout        time.Duration `mapstructure:"request_timeout"`
	MaxConcurrentRequests int64         `mapstructure:"max_concurrent_requests"`
}

type HealthSettings struct {
	// Addr is the gRPC health server listen address. Empty disables it.
	Addr string `mapstructure:"addr"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// CommandsConfig holds command authorization settings.
type CommandsConfig struct {
	Auth AuthConfig `mapstructure:"auth"`
}

type AuthConfig struct {
	Developers []string `mapstructure:"developers"`
	AdminRoles []string `mapstructure:"admin_roles"`
}

// maxPageCapacity is Discord's limit on embeds per message.
const maxPageCapacity = 10

var defaults = map[string]any{
	"bot_token":                     "",
	"bot.admin_channel_id":          "",
	"bot.update_interval":           "1h",
	"bot.page_capacity":             10,
	"data.dir":                      "./data",
	"data.history_db":               "./data/history.db",
	"drive.credentials_file":        "./credentials.json",
	"drive.token_file":              "",
	"drive.root_id":                 "",
	"drive.root_name":               "Drive",
	"drive.root_url":                "",
	"drive.request_timeout":         "30s",
	"drive.max_concurrent_requests": 8,
	"health.addr":                   "",
	"log.level":                     "info",
	"log.pretty":                    false,
	"commands.auth.developers":      []string{},
	"commands.auth.admin_roles":     []string{},
}

// Load reads settings from, in increasing priority: defaults, config.yaml
// (searched in dir, or the working directory when dir is empty), and the
// environment. A .env file, if present, is loaded into the environment first.
// Keys map to environment variables with '.' replaced by '_', e.g.
// DRIVE_ROOT_ID.
func Load(dir string) (*Settings, error) {
	// .env is optional.
	_ = godotenv.Load()

	if dir == "" {
		dir = "."
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	var settings Settings
	err := v.Unmarshal(&settings, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate reports missing required settings.
func (s *Settings) Validate() error {
	if s.BotToken == "" {
		return errors.New("no bot token provided, set BOT_TOKEN in your .env or config file")
	}
	if s.Drive.RootID == "" {
		return errors.New("no drive root provided, set drive.root_id or DRIVE_ROOT_ID")
	}
	if s.Bot.UpdateInterval <= 0 {
		return fmt.Errorf("bot.update_interval must be positive, got %s", s.Bot.UpdateInterval)
	}
	if s.Bot.PageCapacity < 1 || s.Bot.PageCapacity > maxPageCapacity {
		return fmt.Errorf("bot.page_capacity must be between 1 and %d, got %d", maxPageCapacity, s.Bot.PageCapacity)
	}
	return nil
}
