package models

import (
	"encoding/json"
	"time"
)

// RunStatus 运行状态
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"   // 待执行
	RunStatusRunning   RunStatus = "running"   // 执行中
	RunStatusCompleted RunStatus = "completed" // 已完成
	RunStatusFailed    RunStatus = "failed"    // 失败
)

// RunStats 单次运行统计
type RunStats struct {
	DiscoveredURLs int     `json:"discovered_urls"` // 发现的URL总数
	FilteredURLs   int     `json:"filtered_urls"`   // 过滤后保留的URL数
	ProcessedURLs  int     `json:"processed_urls"`  // 成功处理的URL数
	FailedURLs     int     `json:"failed_urls"`     // 失败的URL数
	TotalBytes     int64   `json:"total_bytes"`     // 正文总字节数
	Duration       float64 `json:"duration"`        // 总耗时(秒)
}

// RunResult 流水线最终返回值
// 拥有者是聚合协调器;工作器只返回结果,从不直接修改
type RunResult struct {
	SiteURL        string    `json:"site_url"`        // 目标站点
	Domain         string    `json:"domain"`          // 解析的域名
	SuccessfulURLs []string  `json:"successful_urls"` // 成功URL列表(按发现顺序)
	FailedURLList  []string  `json:"failed_url_list"` // 失败URL列表
	Stats          RunStats  `json:"stats"`           // 统计信息
	SummaryPath    string    `json:"summary_path,omitempty"`  // 摘要文件路径
	FullTextPath   string    `json:"full_text_path,omitempty"` // 全文文件路径
	CompletedAt    time.Time `json:"completed_at"`    // 完成时间
}

// SuccessRate 成功率 = 成功数 / (成功数+失败数)
// 未尝试任何URL时返回0
func (r *RunResult) SuccessRate() float64 {
	attempted := len(r.SuccessfulURLs) + len(r.FailedURLList)
	if attempted == 0 {
		return 0.0
	}
	return float64(len(r.SuccessfulURLs)) / float64(attempted)
}

// RunReport 运行报告(写入JSON)
type RunReport struct {
	RunID       string         `json:"run_id"`       // 运行唯一ID (UUID)
	SiteURL     string         `json:"site_url"`     // 目标站点
	Domain      string         `json:"domain"`       // 域名
	Mode        SourceMode     `json:"mode"`         // URL来源模式
	StartTime   time.Time      `json:"start_time"`   // 开始时间
	EndTime     time.Time      `json:"end_time"`     // 结束时间
	Stats       RunStats       `json:"stats"`        // 统计信息
	SuccessRate float64        `json:"success_rate"` // 成功率
	Successful  []string       `json:"successful_urls"` // 成功URL
	Failed      []string       `json:"failed_urls"`  // 失败URL
	OutputDir   string         `json:"output_dir"`   // 输出目录
	Config      GenerateConfig `json:"config"`       // 配置快照
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
