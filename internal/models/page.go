package models

import "time"

// PageResult 单个页面的抓取提取结果
// 由Fetch-Extract工作器创建,聚合协调器按Index排序后构建输出
// 创建后不再修改
type PageResult struct {
	// URL 页面完整URL
	URL string `json:"url"`

	// Title 页面标题(提取失败时为"Page")
	Title string `json:"title"`

	// Description 页面描述(提取失败时为"No description available")
	Description string `json:"description"`

	// Markdown 页面正文(Markdown格式)
	Markdown string `json:"markdown"`

	// Index URL在过滤截断后序列中的位置
	// 输出排序的唯一依据,与完成顺序无关
	Index int `json:"index"`

	// FetchedAt 抓取完成时间
	FetchedAt time.Time `json:"fetched_at"`
}

// Section 分节URL源中的一个命名分节
type Section struct {
	// Header 分节标题
	Header string `json:"header" yaml:"header"`

	// Description 分节描述(可选)
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// URLs 分节内的URL列表(保持声明顺序)
	URLs []string `json:"urls" yaml:"urls"`
}

// SectionFile 分节YAML文件的顶层结构
type SectionFile struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// TotalURLs 统计所有分节的URL总数
func (sf *SectionFile) TotalURLs() int {
	total := 0
	for _, s := range sf.Sections {
		total += len(s.URLs)
	}
	return total
}

// FlattenURLs 按分节声明顺序展开所有URL
func (sf *SectionFile) FlattenURLs() []string {
	urls := make([]string, 0, sf.TotalURLs())
	for _, s := range sf.Sections {
		urls = append(urls, s.URLs...)
	}
	return urls
}

// FilteredURLSet 正则过滤后的URL集合
// 不变式: filtered_urls是original_urls保持相对顺序的子序列;
// filter_count == len(filtered_urls); 0.0 <= filter_ratio <= 1.0
type FilteredURLSet struct {
	OriginalURLs []string `json:"original_urls"` // 过滤前的URL列表
	FilteredURLs []string `json:"filtered_urls"` // 匹配保留的URL列表
	FilterCount  int      `json:"filter_count"`  // 保留数量
	FilterRatio  float64  `json:"filter_ratio"`  // 保留比例(原始为空时为0.0)
}

// NewFilteredURLSet 根据原始列表和保留列表构造结果集
func NewFilteredURLSet(original, filtered []string) *FilteredURLSet {
	ratio := 0.0
	if len(original) > 0 {
		ratio = float64(len(filtered)) / float64(len(original))
	}
	return &FilteredURLSet{
		OriginalURLs: original,
		FilteredURLs: filtered,
		FilterCount:  len(filtered),
		FilterRatio:  ratio,
	}
}
