package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Generate models.GenerateConfig `mapstructure:"generate"`
	Logging  LoggingConfig         `mapstructure:"logging"`
	Output   OutputConfig          `mapstructure:"output"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".llmsgen"))
		}
	}

	setDefaults(v)

	// 配置文件不存在时直接使用默认值
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	defaults := models.DefaultGenerateConfig()

	// 生成配置默认值
	v.SetDefault("generate.max_urls", defaults.MaxURLs)
	v.SetDefault("generate.batch_size", defaults.BatchSize)
	v.SetDefault("generate.max_workers", defaults.MaxWorkers)
	v.SetDefault("generate.wait_time", defaults.WaitTime)
	v.SetDefault("generate.max_retries", defaults.MaxRetries)
	v.SetDefault("generate.retry_delay", defaults.RetryDelay)
	v.SetDefault("generate.batch_delay", defaults.BatchDelay)
	v.SetDefault("generate.crawl_delay", defaults.CrawlDelay)
	v.SetDefault("generate.emit_summary", defaults.EmitSummary)
	v.SetDefault("generate.emit_full_text", defaults.EmitFullText)
	v.SetDefault("generate.clean_full_text", defaults.CleanFullText)
	v.SetDefault("generate.max_pages", defaults.MaxPages)
	v.SetDefault("generate.user_agent", defaults.UserAgent)
	v.SetDefault("generate.safety_reserve_mb", defaults.SafetyReserveMB)
	v.SetDefault("generate.cpu_load_limit", defaults.CPULoadLimit)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.base_dir", "output")
}

// MergeCLIFlags 合并命令行参数到配置
// 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(
	maxURLs int,
	batchSize int,
	maxWorkers int,
	waitTime int,
	maxRetries int,
	batchDelay int,
	noSummary bool,
	noFullText bool,
	cleanFullText bool,
	maxPages int,
	sitemapExclude string,
	outputDir string,
) {
	if maxURLs > 0 {
		c.Generate.MaxURLs = maxURLs
	}
	if batchSize > 0 {
		c.Generate.BatchSize = batchSize
	}
	if maxWorkers > 0 {
		c.Generate.MaxWorkers = maxWorkers
	}
	if waitTime > 0 {
		c.Generate.WaitTime = waitTime
	}
	if maxRetries >= 0 {
		c.Generate.MaxRetries = maxRetries
	}
	if batchDelay >= 0 {
		c.Generate.BatchDelay = batchDelay
	}
	if noSummary {
		c.Generate.EmitSummary = false
	}
	if noFullText {
		c.Generate.EmitFullText = false
	}
	if cleanFullText {
		c.Generate.CleanFullText = true
	}
	if maxPages > 0 {
		c.Generate.MaxPages = maxPages
	}
	if sitemapExclude != "" {
		c.Generate.SitemapExclude = sitemapExclude
	}
	if outputDir != "" {
		c.Output.BaseDir = outputDir
	}
}
