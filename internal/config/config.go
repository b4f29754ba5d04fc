package config

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	FDIC   FDICConfig   `yaml:"fdic" mapstructure:"fdic"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	RunLog RunLogConfig `yaml:"runlog" mapstructure:"runlog"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// PathsConfig holds input and output directories for the pipeline stages.
type PathsConfig struct {
	DealscanDir     string `yaml:"dealscan_dir" mapstructure:"dealscan_dir"`
	CallDir         string `yaml:"call_dir" mapstructure:"call_dir"`
	IntermediateDir string `yaml:"intermediate_dir" mapstructure:"intermediate_dir"`
	FinalDir        string `yaml:"final_dir" mapstructure:"final_dir"`
}

// UniqueLendersFile is the Stage 1 output: deduplicated lender names.
func (p PathsConfig) UniqueLendersFile() string {
	return filepath.Join(p.IntermediateDir, "unique_lenders_all_years.csv")
}

// ClassifiedFile is the classify stage checkpoint.
func (p PathsConfig) ClassifiedFile() string {
	return filepath.Join(p.IntermediateDir, "lenders_classified.csv")
}

// QueriesFile is the normalize stage checkpoint, consumed by the matcher.
func (p PathsConfig) QueriesFile() string {
	return filepath.Join(p.IntermediateDir, "lenders_with_search_queries.csv")
}

// MasterMapFile is the matcher checkpoint: lender name to RSSD candidates.
func (p PathsConfig) MasterMapFile() string {
	return filepath.Join(p.IntermediateDir, "master_lender_rssd_map.csv")
}

// MergedPanelFile is the merge output for one reporting year.
func (p PathsConfig) MergedPanelFile(year int) string {
	return filepath.Join(p.FinalDir, "merged_panel_"+strconv.Itoa(year)+".csv")
}

// LLMConfig holds credentials and model settings for the AI collaborators.
type LLMConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	ClassifierModel string `yaml:"classifier_model" mapstructure:"classifier_model"`
	ReasoningModel  string `yaml:"reasoning_model" mapstructure:"reasoning_model"`
	MaxTokens       int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs     int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-request deadline as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// FDICConfig holds registry search API settings.
type FDICConfig struct {
	Endpoint           string  `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSecs        int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries         int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec         float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	ProxyURL           string  `yaml:"proxy_url" mapstructure:"proxy_url"`
	InsecureSkipVerify bool    `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// Timeout returns the per-request deadline as a duration.
func (c FDICConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// BatchConfig holds batch and worker pool sizes per stage.
type BatchConfig struct {
	ClassifySize   int `yaml:"classify_size" mapstructure:"classify_size"`
	NormalizeSize  int `yaml:"normalize_size" mapstructure:"normalize_size"`
	LLMWorkers     int `yaml:"llm_workers" mapstructure:"llm_workers"`
	MatchWorkers   int `yaml:"match_workers" mapstructure:"match_workers"`
	FlushClassify  int `yaml:"flush_classify" mapstructure:"flush_classify"`
	FlushNormalize int `yaml:"flush_normalize" mapstructure:"flush_normalize"`
	FlushMatch     int `yaml:"flush_match" mapstructure:"flush_match"`
}

// RunLogConfig configures the stage run history database.
type RunLogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetEnvPrefix("BANKMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.dealscan_dir", "data/raw/dealscan_csv")
	v.SetDefault("paths.call_dir", "data/raw/call_csv")
	v.SetDefault("paths.intermediate_dir", "data/intermediate")
	v.SetDefault("paths.final_dir", "data/final")
	v.SetDefault("llm.classifier_model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.reasoning_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.timeout_secs", 120)
	v.SetDefault("fdic.endpoint", "https://banks.data.fdic.gov/api/institutions")
	v.SetDefault("fdic.timeout_secs", 10)
	v.SetDefault("fdic.max_retries", 3)
	v.SetDefault("fdic.rate_per_sec", 5)
	v.SetDefault("batch.classify_size", 80)
	v.SetDefault("batch.normalize_size", 30)
	v.SetDefault("batch.llm_workers", 10)
	v.SetDefault("batch.match_workers", 5)
	v.SetDefault("batch.flush_classify", 250)
	v.SetDefault("batch.flush_normalize", 60)
	v.SetDefault("batch.flush_match", 10)
	v.SetDefault("runlog.path", "data/bankmatch_runs.db")
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
