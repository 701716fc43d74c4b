package models

import "fmt"

// SourceMode URL来源模式
type SourceMode string

const (
	ModeSections SourceMode = "sections" // 分节YAML文件
	ModeFile     SourceMode = "file"     // 平面URL文件
	ModeSitemap  SourceMode = "sitemap"  // XML站点地图
	ModeCrawl    SourceMode = "crawl"    // 域内链接爬取
)

// GenerateConfig 生成任务配置
type GenerateConfig struct {
	MaxURLs         int     `json:"max_urls"`         // URL预算上限 (默认:20)
	BatchSize       int     `json:"batch_size"`       // 每批URL数量 (默认:10)
	MaxWorkers      int     `json:"max_workers"`      // 批内并发工作器数 (默认:5)
	WaitTime        int     `json:"wait_time"`        // 单页抓取超时(秒) (默认:30)
	MaxRetries      int     `json:"max_retries"`      // 网络失败重试次数 (默认:3)
	RetryDelay      int     `json:"retry_delay"`      // 重试间隔(秒) (默认:1)
	BatchDelay      int     `json:"batch_delay"`      // 批间延迟(秒) (默认:1)
	CrawlDelay      int     `json:"crawl_delay"`      // 爬取礼貌延迟(毫秒) (默认:100)
	EmitSummary     bool    `json:"emit_summary"`     // 生成摘要文件
	EmitFullText    bool    `json:"emit_full_text"`   // 生成全文文件
	CleanFullText   bool    `json:"clean_full_text"`  // 全文去除页面分隔符
	MaxPages        int     `json:"max_pages"`        // 全文页数上限(0=不限)
	SitemapExclude  string  `json:"sitemap_exclude"`  // 子站点地图排除子串
	UserAgent       string  `json:"user_agent"`       // HTTP User-Agent
	SafetyReserveMB int     `json:"safety_reserve_mb"` // 内存安全预留(MB)
	CPULoadLimit    float64 `json:"cpu_load_limit"`    // CPU负载上限(0-100)
}

// Validate 验证配置
func (c *GenerateConfig) Validate() error {
	if c.MaxURLs < 1 || c.MaxURLs > 10000 {
		return fmt.Errorf("URL预算必须在1-10000之间")
	}
	if c.BatchSize < 1 || c.BatchSize > 100 {
		return fmt.Errorf("批大小必须在1-100之间")
	}
	if c.MaxWorkers < 1 || c.MaxWorkers > 100 {
		return fmt.Errorf("并发数必须在1-100之间")
	}
	if c.WaitTime < 1 || c.WaitTime > 300 {
		return fmt.Errorf("抓取超时必须在1-300秒之间")
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("重试次数必须在0-10之间")
	}
	if !c.EmitSummary && !c.EmitFullText {
		return fmt.Errorf("摘要和全文输出不能同时禁用")
	}
	return nil
}

// DefaultGenerateConfig 默认生成配置
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		MaxURLs:         20,
		BatchSize:       10,
		MaxWorkers:      5,
		WaitTime:        30,
		MaxRetries:      3,
		RetryDelay:      1,
		BatchDelay:      1,
		CrawlDelay:      100,
		EmitSummary:     true,
		EmitFullText:    true,
		CleanFullText:   false,
		MaxPages:        0,
		UserAgent:       "LlmsGen/1.0 (+https://github.com/RecoveryAshes/LlmsGen)",
		SafetyReserveMB: 512,
		CPULoadLimit:    90.0,
	}
}
