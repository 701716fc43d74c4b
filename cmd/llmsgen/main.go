package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/LlmsGen/internal/core"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// 来源参数
	targetURL    string
	sitemapURL   string
	urlFile      string
	sectionsFile string
	patterns     []string

	// 生成参数
	maxURLs        int
	batchSize      int
	maxWorkers     int
	waitTime       int
	maxRetries     int
	batchDelay     int
	noSummary      bool
	noFullText     bool
	cleanFullText  bool
	maxPages       int
	sitemapExclude string
	outputDir      string
)

var rootCmd = &cobra.Command{
	Use:   "llmsgen",
	Short: "llms.txt语料生成工具",
	Long: `LlmsGen - 网站llms.txt语料生成工具 (Go版本)

从网站发现可达页面(或调用方提供的URL列表),抓取并规范化内容,
汇编为两份文本语料: 索引摘要({domain}-summary.txt)和全文拼接({domain}-full.txt),支持:
  • 四种URL来源: 域内爬取、XML站点地图、平面URL文件、分节YAML文件
  • 正则模式过滤
  • 并发批量抓取,输出顺序与发现顺序一致
  • 按批次增量持久化,中断后留下可用的部分产物
  • 断点续跑(resume子命令)
  • 站点地图成本预估(estimate子命令)

示例:
  # 从站点地图生成
  llmsgen -u https://example.com --sitemap https://example.com/sitemap.xml

  # 爬取发现 + 模式过滤
  llmsgen -u https://example.com -p ".*docs.*"

  # 从URL文件生成
  llmsgen -f urls.txt

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose && logLevel == "" {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 没有提供任何来源时显示帮助
		if targetURL == "" && sitemapURL == "" && urlFile == "" && sectionsFile == "" {
			return cmd.Help()
		}

		if err := ValidateFlags(targetURL, sitemapURL, urlFile, sectionsFile, maxURLs, batchSize, maxWorkers, waitTime); err != nil {
			return err
		}

		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig.MergeCLIFlags(maxURLs, batchSize, maxWorkers, waitTime, maxRetries, batchDelay,
			noSummary, noFullText, cleanFullText, maxPages, sitemapExclude, outputDir)

		// Ctrl+C优雅退出: 放弃未持久化的当前批次,已落盘的检查点保留
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("\n收到中断信号: %v, 正在优雅关闭...", sig)
			cancel()
		}()

		generator, err := core.NewGenerator(appConfig.Generate, appConfig.Output.BaseDir)
		if err != nil {
			return err
		}

		source := &core.Source{
			SiteURL:      targetURL,
			SitemapURL:   sitemapURL,
			FilePath:     urlFile,
			SectionsPath: sectionsFile,
			Patterns:     patterns,
		}

		if _, err := generator.Generate(ctx, source); err != nil {
			return err
		}

		utils.Info("✨ llms.txt生成任务完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("LlmsGen %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - llms.txt语料生成工具")
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// 来源参数
	rootCmd.Flags().StringVarP(&targetURL, "url", "u", "", "目标站点URL (爬取种子,也用于输出文件命名)")
	rootCmd.Flags().StringVar(&sitemapURL, "sitemap", "", "XML站点地图URL")
	rootCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "平面URL文件路径 (每行一个URL)")
	rootCmd.Flags().StringVar(&sectionsFile, "sections-file", "", "分节YAML文件路径")
	rootCmd.Flags().StringSliceVarP(&patterns, "pattern", "p", []string{}, "URL正则包含模式,可多次指定(OR语义)")
	rootCmd.Flags().StringVar(&sitemapExclude, "exclude-sitemap", "", "子站点地图URL排除子串")

	// 生成参数
	rootCmd.Flags().IntVar(&maxURLs, "max-urls", 20, "URL预算上限")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 10, "每批URL数量")
	rootCmd.Flags().IntVar(&maxWorkers, "workers", 5, "批内并发工作器数")
	rootCmd.Flags().IntVarP(&waitTime, "wait", "w", 30, "单页抓取超时(秒)")
	rootCmd.Flags().IntVar(&maxRetries, "retries", 3, "网络失败重试次数")
	rootCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "批间延迟(秒)")
	rootCmd.Flags().BoolVar(&noSummary, "no-summary", false, "不生成摘要文件")
	rootCmd.Flags().BoolVar(&noFullText, "no-full-text", false, "不生成全文文件")
	rootCmd.Flags().BoolVar(&cleanFullText, "clean-full-text", false, "全文去除页面分隔标记")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", 0, "全文页数上限 (0=不限)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "输出目录")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(estimateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
