// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Meteomatics MeteomaticsConfig `yaml:"meteomatics" mapstructure:"meteomatics"`
	Sampling    SamplingConfig    `yaml:"sampling" mapstructure:"sampling"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the zone geometry input and output locations.
type DataConfig struct {
	ZonesFile  string `yaml:"zones_file" mapstructure:"zones_file"`
	OutputDir  string `yaml:"output_dir" mapstructure:"output_dir"`
	PresetFile string `yaml:"preset_file" mapstructure:"preset_file"`
}

// MeteomaticsConfig holds Meteomatics API credentials and tuning. When
// Username or Password is empty the synthetic provider is used instead.
type MeteomaticsConfig struct {
	Username    string  `yaml:"username" mapstructure:"username"`
	Password    string  `yaml:"password" mapstructure:"password"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SamplingConfig configures temperature sampling over the zone map.
type SamplingConfig struct {
	PointsPerZone  int     `yaml:"points_per_zone" mapstructure:"points_per_zone"`
	Concurrency    int     `yaml:"concurrency" mapstructure:"concurrency"`
	GridResolution float64 `yaml:"grid_resolution" mapstructure:"grid_resolution"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LCZPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.zones_file", "data/zones.kmz")
	v.SetDefault("data.output_dir", "output")
	v.SetDefault("meteomatics.username", "")
	v.SetDefault("meteomatics.password", "")
	v.SetDefault("meteomatics.base_url", "https://api.meteomatics.com")
	v.SetDefault("meteomatics.timeout_secs", 30)
	v.SetDefault("meteomatics.rate_limit", 10)
	v.SetDefault("sampling.points_per_zone", 5)
	v.SetDefault("sampling.concurrency", 8)
	v.SetDefault("sampling.grid_resolution", 0.005)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "lcz-planner.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
