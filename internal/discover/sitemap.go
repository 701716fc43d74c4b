package discover

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/RecoveryAshes/LlmsGen/internal/utils"
)

// Fetcher 抓取能力的最小契约,由page.Fetcher实现
// 发现阶段只需要 "fetch(url) -> raw bytes"
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// xmlURLSet 标准站点地图的根元素
type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []xmlLoc `xml:"url"`
}

// xmlSitemapIndex 站点地图索引的根元素
type xmlSitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []xmlLoc `xml:"sitemap"`
}

// xmlLoc <url>或<sitemap>条目
type xmlLoc struct {
	Loc string `xml:"loc"`
}

// SitemapEstimate 采样估算结果
type SitemapEstimate struct {
	// EstimatedTotal 外推的URL总数估算值
	EstimatedTotal int `json:"estimated_total"`

	// SampleURLs 实际抓取到的样本URL(供下游模式匹配预览)
	SampleURLs []string `json:"sample_urls"`

	// SampledSitemaps 实际遍历的子站点地图数
	SampledSitemaps int `json:"sampled_sitemaps"`

	// TotalSitemaps 排除后的子站点地图总数
	TotalSitemaps int `json:"total_sitemaps"`

	// Exact 根为urlset时为true,估算即精确值
	Exact bool `json:"exact"`
}

// Sitemap XML站点地图遍历器
type Sitemap struct {
	fetcher Fetcher

	// exclude 子站点地图URL排除子串(如分页列表站点地图),空串不排除
	exclude string
}

// NewSitemap 创建站点地图遍历器
func NewSitemap(fetcher Fetcher, exclude string) *Sitemap {
	return &Sitemap{fetcher: fetcher, exclude: exclude}
}

// Traverse 抓取并解析站点地图,返回其中列出的所有URL
// 根为sitemapindex时递归遍历每个子站点地图(跳过匹配排除子串的),拼接结果;
// 根为urlset时直接返回其位置列表;其他根形态返回空结果并告警
// 单个子站点地图抓取失败只告警跳过
func (s *Sitemap) Traverse(ctx context.Context, sitemapURL string) ([]string, error) {
	body, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		utils.Warnf("抓取站点地图失败 [%s]: %v", sitemapURL, err)
		return nil, err
	}

	if subs, ok := parseSitemapIndex(body); ok {
		urls := make([]string, 0)
		for _, sub := range subs {
			if s.isExcluded(sub) {
				utils.Debugf("跳过排除的子站点地图: %s", sub)
				continue
			}
			subURLs, err := s.Traverse(ctx, sub)
			if err != nil {
				continue
			}
			urls = append(urls, subURLs...)
		}
		utils.Infof("🗺️  站点地图索引遍历完成: %d个URL (%d个子站点地图)", len(urls), len(subs))
		return urls, nil
	}

	if urls, ok := parseURLSet(body); ok {
		return urls, nil
	}

	utils.Warnf("站点地图根元素无法识别 [%s],返回空结果", sitemapURL)
	return []string{}, nil
}

// Sample 采样估算变体,用于成本预估
// 对索引最多遍历maxSitemaps个子站点地图,按
// estimated = (样本URL数/已采样数) * 未排除子站点地图总数 外推,
// 不抓取其余子站点地图
func (s *Sitemap) Sample(ctx context.Context, sitemapURL string, maxSitemaps int) (*SitemapEstimate, error) {
	body, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	if urls, ok := parseURLSet(body); ok {
		// 非索引,直接就是精确值
		return &SitemapEstimate{
			EstimatedTotal: len(urls),
			SampleURLs:     urls,
			Exact:          true,
		}, nil
	}

	subs, ok := parseSitemapIndex(body)
	if !ok {
		utils.Warnf("站点地图根元素无法识别 [%s]", sitemapURL)
		return &SitemapEstimate{}, nil
	}

	included := make([]string, 0, len(subs))
	for _, sub := range subs {
		if !s.isExcluded(sub) {
			included = append(included, sub)
		}
	}

	est := &SitemapEstimate{TotalSitemaps: len(included)}
	for _, sub := range included {
		if est.SampledSitemaps >= maxSitemaps {
			break
		}
		subURLs, err := s.Traverse(ctx, sub)
		if err != nil {
			continue
		}
		est.SampleURLs = append(est.SampleURLs, subURLs...)
		est.SampledSitemaps++
	}

	if est.SampledSitemaps > 0 {
		est.EstimatedTotal = len(est.SampleURLs) * est.TotalSitemaps / est.SampledSitemaps
	}

	utils.Infof("📊 站点地图采样: 采样%d/%d个子站点地图, 样本%d个URL, 估算总数%d",
		est.SampledSitemaps, est.TotalSitemaps, len(est.SampleURLs), est.EstimatedTotal)
	return est, nil
}

// isExcluded 判断子站点地图URL是否命中排除子串
func (s *Sitemap) isExcluded(sitemapURL string) bool {
	return s.exclude != "" && strings.Contains(sitemapURL, s.exclude)
}

// parseSitemapIndex 尝试按sitemapindex解析
func parseSitemapIndex(body []byte) ([]string, bool) {
	var index xmlSitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, false
	}
	subs := make([]string, 0, len(index.Sitemaps))
	for _, entry := range index.Sitemaps {
		loc := strings.TrimSpace(entry.Loc)
		if loc != "" {
			subs = append(subs, loc)
		}
	}
	return subs, true
}

// parseURLSet 尝试按urlset解析
func parseURLSet(body []byte) ([]string, bool) {
	var urlset xmlURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, false
	}
	urls := make([]string, 0, len(urlset.URLs))
	for _, entry := range urlset.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, true
}
