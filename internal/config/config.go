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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	EDGAR    EDGARConfig    `yaml:"edgar" mapstructure:"edgar"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EDGARConfig configures SEC EDGAR access. UserAgent must carry a contact
// email per SEC fair-access policy.
type EDGARConfig struct {
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	DataBaseURL string `yaml:"data_base_url" mapstructure:"data_base_url"`
	WindowDays  int    `yaml:"window_days" mapstructure:"window_days"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// ExtractConfig configures swap record extraction.
type ExtractConfig struct {
	Strict         bool     `yaml:"strict" mapstructure:"strict"`
	IndexAllowlist []string `yaml:"index_allowlist" mapstructure:"index_allowlist"`
	IndexDefault   string   `yaml:"index_default" mapstructure:"index_default"`
}

// PipelineConfig configures batch processing.
type PipelineConfig struct {
	BatchSize       int `yaml:"batch_size" mapstructure:"batch_size"`
	FilingPauseSecs int `yaml:"filing_pause_secs" mapstructure:"filing_pause_secs"`
	BatchPauseSecs  int `yaml:"batch_pause_secs" mapstructure:"batch_pause_secs"`
	FundTimeoutSecs int `yaml:"fund_timeout_secs" mapstructure:"fund_timeout_secs"`
	MaxConcurrent   int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	RunHistoryLimit int `yaml:"run_history_limit" mapstructure:"run_history_limit"`
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
	v.SetEnvPrefix("SWAPSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "swapsync.db")
	v.SetDefault("edgar.user_agent", "VegaShares Research data@vegashares.com")
	v.SetDefault("edgar.base_url", "https://www.sec.gov")
	v.SetDefault("edgar.data_base_url", "https://data.sec.gov")
	v.SetDefault("edgar.window_days", 365)
	v.SetDefault("edgar.timeout_secs", 30)
	v.SetDefault("edgar.max_retries", 3)
	v.SetDefault("extract.strict", true)
	v.SetDefault("extract.index_allowlist", []string{})
	v.SetDefault("extract.index_default", "")
	v.SetDefault("pipeline.batch_size", 5)
	v.SetDefault("pipeline.filing_pause_secs", 1)
	v.SetDefault("pipeline.batch_pause_secs", 3)
	v.SetDefault("pipeline.fund_timeout_secs", 300)
	v.SetDefault("pipeline.max_concurrent", 1)
	v.SetDefault("pipeline.run_history_limit", 100)
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
