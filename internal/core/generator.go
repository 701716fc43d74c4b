// Package core 实现llms.txt语料生成的聚合与持久化协调器
// 单次运行的状态机: 发现 -> 过滤 -> 截断 -> 按批派发/收集/持久化 -> 收尾
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RecoveryAshes/LlmsGen/internal/discover"
	"github.com/RecoveryAshes/LlmsGen/internal/filter"
	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/RecoveryAshes/LlmsGen/internal/page"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
)

// Source URL来源描述
// 四种来源互斥,优先级: 分节文件 > 平面文件 > 站点地图 > 爬取
type Source struct {
	SiteURL      string   // 站点URL(爬取种子,也用于输出文件命名)
	SitemapURL   string   // XML站点地图URL
	FilePath     string   // 平面URL文件路径
	SectionsPath string   // 分节YAML文件路径
	Patterns     []string // 正则包含模式(可选)
}

// Mode 返回生效的来源模式
func (s *Source) Mode() models.SourceMode {
	switch {
	case s.SectionsPath != "":
		return models.ModeSections
	case s.FilePath != "":
		return models.ModeFile
	case s.SitemapURL != "":
		return models.ModeSitemap
	default:
		return models.ModeCrawl
	}
}

// Generator llms.txt语料生成器
// 累积的结果集和失败集只由协调器在收集工作器输出后写入,
// 工作器不持有共享可变状态
type Generator struct {
	config    models.GenerateConfig
	outputDir string
	fetcher   *page.Fetcher
	worker    *page.Worker
	monitor   *ResourceMonitor
}

// NewGenerator 创建生成器
// 配置错误在任何网络活动前失败
func NewGenerator(config models.GenerateConfig, outputDir string) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	fetcher := page.NewFetcher(
		config.UserAgent,
		time.Duration(config.WaitTime)*time.Second,
		config.MaxRetries,
		time.Duration(config.RetryDelay)*time.Second,
	)

	return &Generator{
		config:    config,
		outputDir: outputDir,
		fetcher:   fetcher,
		worker:    page.NewWorker(fetcher),
		monitor:   NewResourceMonitor(config.SafetyReserveMB, config.CPULoadLimit),
	}, nil
}

// Generate 执行完整的生成流水线
// 终态错误: 模式非法、根站点地图不可达、发现结果为零、模式过滤后无URL;
// 单页失败只计入失败集,从不中止运行
func (g *Generator) Generate(ctx context.Context, source *Source) (*models.RunResult, error) {
	startTime := time.Now()
	mode := source.Mode()
	runID := models.NewRunID()

	utils.Infof("🚀 llms.txt生成启动 (模式: %s, 运行ID: %s)", mode, runID)

	// 模式校验先于一切抓取活动
	fileSource := mode == models.ModeFile || mode == models.ModeSections
	if len(source.Patterns) > 0 && !fileSource {
		if err := filter.ValidateAll(source.Patterns); err != nil {
			return nil, err
		}
	}

	// DISCOVER
	urls, sections, err := g.discoverURLs(ctx, source, mode)
	if err != nil {
		return nil, err
	}
	discoveredCount := len(urls)
	if discoveredCount == 0 {
		return nil, fmt.Errorf("未发现任何URL,无法生成llms.txt (模式: %s)", mode)
	}
	utils.Infof("✨ URL发现完成: %d个URL", discoveredCount)

	// FILTER
	if len(source.Patterns) > 0 {
		if fileSource {
			utils.Warnf("文件来源已是精确URL列表,忽略过滤模式: %s", strings.Join(source.Patterns, ", "))
		} else {
			var fset *models.FilteredURLSet
			if len(source.Patterns) == 1 {
				fset, err = filter.Filter(urls, source.Patterns[0])
			} else {
				fset, err = filter.FilterMulti(urls, source.Patterns)
			}
			if err != nil {
				return nil, err
			}
			if fset.FilterCount == 0 {
				return nil, fmt.Errorf("%s", filter.NoMatchesMessage(strings.Join(source.Patterns, " | "), discoveredCount))
			}
			utils.Infof("🔍 模式过滤: 保留 %d/%d 个URL (%.1f%%)", fset.FilterCount, discoveredCount, fset.FilterRatio*100)
			urls = fset.FilteredURLs
		}
	}

	// TRUNCATE
	if len(urls) > g.config.MaxURLs {
		utils.Warnf("URL数超出预算,截断至前%d个 (原%d个)", g.config.MaxURLs, len(urls))
		urls = urls[:g.config.MaxURLs]
	}

	nameSource := source.SiteURL
	if nameSource == "" {
		nameSource = urls[0]
	}
	domain, err := models.DomainOf(nameSource)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	summaryPath := filepath.Join(g.outputDir, domain+"-summary.txt")
	fullTextPath := filepath.Join(g.outputDir, domain+"-full.txt")

	// 分节来源记录URL到分节的归属,用于分组输出
	sectionOf := make(map[string]int)
	for i, section := range sections {
		for _, u := range section.URLs {
			if _, ok := sectionOf[u]; !ok {
				sectionOf[u] = i
			}
		}
	}

	g.monitor.StartMonitoring(time.Second)
	defer g.monitor.StopMonitoring()

	// DISPATCH -> COLLECT -> PERSIST,按批推进
	results, failed := g.processBatches(ctx, urls, domain, summaryPath, fullTextPath, sections, sectionOf)

	// FINALIZE
	successful := make([]string, 0, len(results))
	var totalBytes int64
	for _, r := range results {
		successful = append(successful, r.URL)
		totalBytes += int64(len(r.Markdown))
	}

	result := &models.RunResult{
		SiteURL:        source.SiteURL,
		Domain:         domain,
		SuccessfulURLs: successful,
		FailedURLList:  failed,
		Stats: models.RunStats{
			DiscoveredURLs: discoveredCount,
			FilteredURLs:   len(urls),
			ProcessedURLs:  len(successful),
			FailedURLs:     len(failed),
			TotalBytes:     totalBytes,
			Duration:       time.Since(startTime).Seconds(),
		},
		CompletedAt: time.Now(),
	}
	if g.config.EmitSummary {
		result.SummaryPath = summaryPath
	}
	if g.config.EmitFullText {
		result.FullTextPath = fullTextPath
	}

	g.saveReport(runID, source, mode, startTime, result)
	g.printSummary(result)

	return result, nil
}

// discoverURLs 按来源模式执行发现阶段
// 分节来源同时返回分节结构供输出分组
func (g *Generator) discoverURLs(ctx context.Context, source *Source, mode models.SourceMode) ([]string, []models.Section, error) {
	switch mode {
	case models.ModeSections:
		sf, err := discover.ReadSectionFile(source.SectionsPath)
		if err != nil {
			return nil, nil, err
		}
		return sf.FlattenURLs(), sf.Sections, nil

	case models.ModeFile:
		urls, err := discover.ReadURLFile(source.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return urls, nil, nil

	case models.ModeSitemap:
		sm := discover.NewSitemap(g.fetcher, g.config.SitemapExclude)
		urls, err := sm.Traverse(ctx, source.SitemapURL)
		if err != nil {
			// 子站点地图失败由Traverse内部告警跳过,到这里一定是根不可达
			return nil, nil, fmt.Errorf("根站点地图不可达 [%s]: %w", source.SitemapURL, err)
		}
		return urls, nil, nil

	default:
		crawler := discover.NewCrawler(
			g.config.UserAgent,
			time.Duration(g.config.WaitTime)*time.Second,
			time.Duration(g.config.CrawlDelay)*time.Millisecond,
		)
		urls, err := crawler.Discover(source.SiteURL, g.config.MaxURLs)
		if err != nil {
			return nil, nil, err
		}
		return urls, nil, nil
	}
}

// unitTimeout 单个工作单元的上下文预算
// 必须覆盖完整的重试计划: 每次尝试各占一个抓取超时,外加重试间隔,
// 否则超时类失败在第一次尝试后就会耗尽预算,重试形同虚设
func (g *Generator) unitTimeout() time.Duration {
	attempts := time.Duration(g.config.MaxRetries+1) * time.Duration(g.config.WaitTime) * time.Second
	delays := time.Duration(g.config.MaxRetries) * time.Duration(g.config.RetryDelay) * time.Second
	return attempts + delays
}

// batchUnit 单个工作单元的收集结果
type batchUnit struct {
	result *models.PageResult
	url    string
}

// processBatches 按固定批大小推进抓取-提取-持久化
// 派发前为每个URL分配index;批内并发,批间串行;
// 每批收集完成后按index排序累积结果并重写输出文件,
// 批次N的持久化总在批次N+1派发前完成
func (g *Generator) processBatches(
	ctx context.Context,
	urls []string,
	domain string,
	summaryPath string,
	fullTextPath string,
	sections []models.Section,
	sectionOf map[string]int,
) (results []*models.PageResult, failed []string) {
	results = make([]*models.PageResult, 0, len(urls))
	failed = make([]string, 0)
	bar := utils.NewProgressBar(len(urls), "处理页面")

	totalBatches := (len(urls) + g.config.BatchSize - 1) / g.config.BatchSize

	for start := 0; start < len(urls); start += g.config.BatchSize {
		if ctx.Err() != nil {
			utils.Warnf("运行被中断,放弃未持久化的剩余批次: %v", ctx.Err())
			break
		}

		end := start + g.config.BatchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[start:end]
		batchNum := start/g.config.BatchSize + 1

		workers := g.monitor.ClampWorkers(g.config.MaxWorkers)
		utils.Infof("📥 批次 %d/%d: %d个URL (并发%d)", batchNum, totalBatches, len(batch), workers)

		resultCh := make(chan batchUnit, len(batch))
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup

		for offset, u := range batch {
			wg.Add(1)
			go func(pageURL string, index int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				// 单URL超时只让该单元失败,不影响同批其他单元
				unitCtx, cancel := context.WithTimeout(ctx, g.unitTimeout())
				defer cancel()

				resultCh <- batchUnit{
					result: g.worker.Process(unitCtx, pageURL, index),
					url:    pageURL,
				}
			}(u, start+offset)
		}

		wg.Wait()
		close(resultCh)

		for unit := range resultCh {
			_ = bar.Add(1)
			if unit.result == nil || unit.result.Markdown == "" {
				// 清洗后无可用正文也按失败记账
				failed = append(failed, unit.url)
				continue
			}
			results = append(results, unit.result)
		}

		// 输出顺序只由发现顺序决定,与完成顺序无关
		sort.Slice(results, func(i, j int) bool {
			return results[i].Index < results[j].Index
		})

		g.persist(domain, summaryPath, fullTextPath, results, sections, sectionOf)

		if end < len(urls) && g.config.BatchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(g.config.BatchDelay) * time.Second):
			}
		}
	}

	return results, failed
}

// persist 将目前累积的结果整体重写到输出文件
// 磁盘上的文件始终是到目前为止结果的完整有效输出;
// 写入失败只告警,运行在内存中继续
func (g *Generator) persist(
	domain string,
	summaryPath string,
	fullTextPath string,
	results []*models.PageResult,
	sections []models.Section,
	sectionOf map[string]int,
) {
	if g.config.EmitSummary {
		text := BuildSummary(domain, results, sections, sectionOf)
		if err := os.WriteFile(summaryPath, []byte(text), 0644); err != nil {
			utils.Warnf("写入摘要文件失败,本次检查点丢失持久化: %v", err)
		}
	}

	if g.config.EmitFullText {
		text := BuildFullText(domain, results, g.config.CleanFullText, g.config.MaxPages)
		if err := os.WriteFile(fullTextPath, []byte(text), 0644); err != nil {
			utils.Warnf("写入全文文件失败,本次检查点丢失持久化: %v", err)
		}
	}
}

// saveReport 生成运行报告,失败只告警
func (g *Generator) saveReport(runID string, source *Source, mode models.SourceMode, startTime time.Time, result *models.RunResult) {
	report := &models.RunReport{
		RunID:       runID,
		SiteURL:     source.SiteURL,
		Domain:      result.Domain,
		Mode:        mode,
		StartTime:   startTime,
		EndTime:     result.CompletedAt,
		Stats:       result.Stats,
		SuccessRate: result.SuccessRate(),
		Successful:  result.SuccessfulURLs,
		Failed:      result.FailedURLList,
		OutputDir:   g.outputDir,
		Config:      g.config,
	}

	reporter := utils.NewReporter(g.outputDir, result.Domain)
	if err := reporter.SaveRunReport(report); err != nil {
		utils.Warnf("保存运行报告失败: %v", err)
	}
}

// printSummary 打印运行摘要
func (g *Generator) printSummary(result *models.RunResult) {
	utils.Info("\n==================================================")
	utils.Info("📊 生成摘要")
	utils.Info("==================================================")
	utils.Infof("发现URL数: %d", result.Stats.DiscoveredURLs)
	utils.Infof("过滤后URL数: %d", result.Stats.FilteredURLs)
	utils.Infof("✅ 成功: %d", result.Stats.ProcessedURLs)
	utils.Infof("❌ 失败: %d", result.Stats.FailedURLs)
	utils.Infof("成功率: %.1f%%", result.SuccessRate()*100)
	utils.Infof("正文总量: %.2f KB", float64(result.Stats.TotalBytes)/1024)
	utils.Infof("⏱️  总耗时: %.2f秒", result.Stats.Duration)
	if result.SummaryPath != "" {
		utils.Infof("摘要文件: %s", result.SummaryPath)
	}
	if result.FullTextPath != "" {
		utils.Infof("全文文件: %s", result.FullTextPath)
	}
	utils.Info("==================================================")

	// 失败URL列表限量展示,便于诊断
	if len(result.FailedURLList) > 0 {
		utils.Warn("\n失败的URL:")
		limit := len(result.FailedURLList)
		if limit > 20 {
			limit = 20
		}
		for _, u := range result.FailedURLList[:limit] {
			utils.Warnf("  - %s", u)
		}
		if len(result.FailedURLList) > limit {
			utils.Warnf("  ... 以及另外%d个", len(result.FailedURLList)-limit)
		}
	}
}
