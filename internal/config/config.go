package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	HomeserverURL  string        `mapstructure:"HOMESERVER_URL"`
	BotUserID      string        `mapstructure:"BOT_USER_ID"`
	BotAccessToken string        `mapstructure:"BOT_ACCESS_TOKEN"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	OpsPort        string        `mapstructure:"OPS_PORT"`
	AuditDir       string        `mapstructure:"AUDIT_DIR"`
	SearchTimeout  time.Duration `mapstructure:"SEARCH_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("OPS_PORT", "8090")
	v.SetDefault("AUDIT_DIR", "audit")
	v.SetDefault("SEARCH_TIMEOUT", 10*time.Second)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("HOMESERVER_URL")
	v.BindEnv("BOT_USER_ID")
	v.BindEnv("BOT_ACCESS_TOKEN")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("OPS_PORT")
	v.BindEnv("AUDIT_DIR")
	v.BindEnv("SEARCH_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. The bot refuses to
// start without homeserver credentials and a patient database, since every
// message it processes touches both.
func (c *Config) Validate() error {
	if c.HomeserverURL == "" {
		return fmt.Errorf("HOMESERVER_URL is required")
	}
	if c.BotUserID == "" {
		return fmt.Errorf("BOT_USER_ID is required")
	}
	if !strings.HasPrefix(c.BotUserID, "@") {
		return fmt.Errorf("BOT_USER_ID must be a full matrix user id (@user:server), got %q", c.BotUserID)
	}
	if c.BotAccessToken == "" {
		return fmt.Errorf("BOT_ACCESS_TOKEN is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must be positive, got %s", c.SearchTimeout)
	}
	return nil
}
