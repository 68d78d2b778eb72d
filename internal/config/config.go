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
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// GeocodeConfig configures the provider client.
type GeocodeConfig struct {
	APIKey          string  `yaml:"api_key" mapstructure:"api_key"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBaseMillis int     `yaml:"retry_base_millis" mapstructure:"retry_base_millis"`
	CachePath       string  `yaml:"cache_path" mapstructure:"cache_path"`
}

// ClassifyConfig configures the pattern classifier.
type ClassifyConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency      int  `yaml:"concurrency" mapstructure:"concurrency"`
	CheckConsistency bool `yaml:"check_consistency" mapstructure:"check_consistency"`
}

// ServerConfig configures the upload/process server.
type ServerConfig struct {
	Port    int    `yaml:"port" mapstructure:"port"`
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
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
	v.SetEnvPrefix("ADDRPREC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("geocode.rate_limit_rps", 25.0)
	v.SetDefault("geocode.max_retries", 3)
	v.SetDefault("geocode.retry_base_millis", 500)
	v.SetDefault("geocode.cache_path", "")
	v.SetDefault("classify.rules_path", "")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.check_consistency", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.work_dir", "")
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

// Validate checks the settings a command mode depends on.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 64 {
		problems = append(problems, "batch.concurrency must be between 1 and 64")
	}

	switch mode {
	case "offline":
		// Classification-only commands need no provider credentials.
	case "resolve":
		if c.Geocode.APIKey == "" {
			problems = append(problems, "geocode.api_key is required")
		}
	case "serve":
		if c.Geocode.APIKey == "" {
			problems = append(problems, "geocode.api_key is required")
		}
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
