package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root server configuration, loaded from a YAML file with
// environment-variable overrides.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Content  ContentConfig  `mapstructure:"content"`
}

// ServerConfig holds the WebSocket server and game loop settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	TickRate     time.Duration `mapstructure:"tick_rate"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds the optional PostgreSQL connection settings. An
// empty URL disables encounter report persistence.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// CombatConfig carries the combat engine tuning knobs.
type CombatConfig struct {
	SandCapacity       int           `mapstructure:"sand_capacity"`
	SandInterval       time.Duration `mapstructure:"sand_interval"`
	PlayerStartingSand int           `mapstructure:"player_starting_sand"`
	EnemyStartingSand  int           `mapstructure:"enemy_starting_sand"`
	LowHealthThreshold float64       `mapstructure:"low_health_threshold"`
	DefensiveBonus     float64       `mapstructure:"defensive_bonus"`
	AggressiveBonus    float64       `mapstructure:"aggressive_bonus"`
}

// ContentConfig points at the externally supplied catalog files.
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from the given path, applying defaults for any
// missing keys. A missing file is not an error: the defaults describe a
// fully working local server.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.address", ":8089")
	v.SetDefault("server.tick_rate", 50*time.Millisecond)
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("combat.sand_capacity", 6)
	v.SetDefault("combat.sand_interval", time.Second)
	v.SetDefault("combat.player_starting_sand", 3)
	v.SetDefault("combat.enemy_starting_sand", 2)
	v.SetDefault("combat.low_health_threshold", 0.3)
	v.SetDefault("combat.defensive_bonus", 1.5)
	v.SetDefault("combat.aggressive_bonus", 1.2)

	v.SetDefault("content.dir", "content")

	v.SetEnvPrefix("DUAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults; a malformed one is fatal.
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Combat.SandCapacity <= 0 {
		return fmt.Errorf("combat.sand_capacity must be positive, got %d", c.Combat.SandCapacity)
	}
	if c.Combat.SandInterval <= 0 {
		return fmt.Errorf("combat.sand_interval must be positive, got %v", c.Combat.SandInterval)
	}
	if c.Combat.PlayerStartingSand > c.Combat.SandCapacity || c.Combat.EnemyStartingSand > c.Combat.SandCapacity {
		return fmt.Errorf("starting sand exceeds capacity %d", c.Combat.SandCapacity)
	}
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("server.tick_rate must be positive, got %v", c.Server.TickRate)
	}
	return nil
}
