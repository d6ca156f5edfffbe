package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	GRPC      ServerConfig    `mapstructure:"grpc"`
	HTTP      ServerConfig    `mapstructure:"http"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Log       LogConfig       `mapstructure:"log"`
	Billing   BillingConfig   `mapstructure:"billing"`
	UI        UIConfig        `mapstructure:"ui"`
}

// StorageConfig selects the key-value backend. Driver is one of memory,
// sqlite, postgres or badger.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type DiscoveryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Instance string `mapstructure:"instance"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

type BillingConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

type UIConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// New returns a viper instance with defaults and NEXUSCAFE_ environment
// overrides applied. Callers may bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "nexus_cafe.db")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.addr", ":50051")
	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("discovery.enabled", true)
	v.SetDefault("discovery.instance", "NexusCafe")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "nexus_cafe.log")
	v.SetDefault("billing.tick_interval", time.Second)
	v.SetDefault("ui.enabled", true)

	v.SetConfigName("nexuscafe")
	v.SetConfigType("yaml")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.nexuscafe/")
	v.AddConfigPath("/etc/nexuscafe/")

	v.SetEnvPrefix("NEXUSCAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and unmarshals the merged settings.
// A missing config file is not an error; defaults apply.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "badger":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Billing.TickInterval <= 0 {
		return fmt.Errorf("billing.tick_interval must be positive, got %s", c.Billing.TickInterval)
	}
	return nil
}
