package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/amiyamandal-dev/feedbridge/internal/validator"
)

// Config holds all configuration for the bridge
type Config struct {
	Feedbin FeedbinConfig `mapstructure:"feedbin"`
	Discord DiscordConfig `mapstructure:"discord"`
	Poll    PollConfig    `mapstructure:"poll"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// FeedbinConfig contains the upstream feed service credentials and endpoint
type FeedbinConfig struct {
	Username string        `mapstructure:"username" validate:"required"`
	Password string        `mapstructure:"password" validate:"required"`
	BaseURL  string        `mapstructure:"base_url" validate:"required,http_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	PerPage  int           `mapstructure:"per_page" validate:"min=1,max=100"`
}

// DiscordConfig contains the bot credentials and the single guild it serves
type DiscordConfig struct {
	BotToken string `mapstructure:"bot_token" validate:"required"`
	ClientID string `mapstructure:"client_id" validate:"required"`
	GuildID  string `mapstructure:"guild_id" validate:"required"`
	Category string `mapstructure:"category" validate:"required"`
}

// PollConfig controls the unread-entries poller
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// ServerConfig contains the operations HTTP server configuration
type ServerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// APIToken guards /api/v1 when set
	APIToken          string `mapstructure:"api_token"`
	PollRatePerMinute int    `mapstructure:"poll_rate_per_minute" validate:"min=0"`
}

// Load reads an optional dotenv file, an optional config.yaml and the
// environment, in increasing priority.
// Environment keys are the config keys upper-cased with dots replaced by
// underscores, e.g. FEEDBIN_USERNAME or POLL_INTERVAL.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading env file %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Addr returns the listen address of the operations server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	// Credentials have empty defaults so AutomaticEnv can resolve them
	v.SetDefault("feedbin.username", "")
	v.SetDefault("feedbin.password", "")
	v.SetDefault("feedbin.base_url", "https://api.feedbin.com/v2")
	v.SetDefault("feedbin.timeout", "30s")
	v.SetDefault("feedbin.per_page", 50)

	v.SetDefault("discord.bot_token", "")
	v.SetDefault("discord.client_id", "")
	v.SetDefault("discord.guild_id", "")
	v.SetDefault("discord.category", "RSS")

	v.SetDefault("poll.interval", "120s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.api_token", "")
	v.SetDefault("server.poll_rate_per_minute", 6)
}

func validate(cfg *Config) error {
	if err := validator.New().Validate(cfg); err != nil {
		return err
	}

	if cfg.Poll.Interval < time.Second {
		return fmt.Errorf("poll.interval must be at least 1s, got: %s", cfg.Poll.Interval)
	}
	if cfg.Feedbin.Timeout <= 0 {
		return fmt.Errorf("feedbin.timeout must be positive, got: %s", cfg.Feedbin.Timeout)
	}

	cfg.Feedbin.BaseURL = strings.TrimRight(cfg.Feedbin.BaseURL, "/")
	return nil
}
