// Package discover 实现四种URL发现模式:
// 域内链接爬取、XML站点地图遍历、平面URL文件、分节YAML文件
// 模式互斥,优先级: 分节文件 > 平面文件 > 站点地图 > 爬取
package discover

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"github.com/gocolly/colly/v2"
)

// Crawler 域内广度优先链接爬取器(使用Colly)
type Crawler struct {
	userAgent string
	timeout   time.Duration
	delay     time.Duration
}

// NewCrawler 创建爬取器
// delay是抓取间的礼貌延迟,不是正确性要求
func NewCrawler(userAgent string, timeout time.Duration, delay time.Duration) *Crawler {
	return &Crawler{
		userAgent: userAgent,
		timeout:   timeout,
		delay:     delay,
	}
}

// Discover 从种子URL开始广度优先爬取,返回有序去重的同域URL序列
// 维护frontier队列和visited集合;单页抓取或解析失败只记日志跳过,不中断爬取
// frontier为空或发现数达到budget时终止
func (c *Crawler) Discover(seedURL string, budget int) ([]string, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("解析种子URL失败: %w", err)
	}
	if seed.Host == "" {
		return nil, fmt.Errorf("种子URL缺少主机名: %s", seedURL)
	}
	host := seed.Host

	collector := colly.NewCollector(
		colly.UserAgent(c.userAgent),
	)
	collector.SetRequestTimeout(c.timeout)

	// 当前页面发现的出链,由驱动循环消费
	// 同步模式下OnHTML在Visit内触发,无需加锁
	var pageLinks []string

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !strings.HasPrefix(link, "http") {
			return
		}
		parsed, err := url.Parse(link)
		if err != nil || parsed.Host != host {
			return
		}
		// 去掉fragment,避免同页多次入队
		parsed.Fragment = ""
		pageLinks = append(pageLinks, parsed.String())
	})

	frontier := []string{seedURL}
	visited := map[string]bool{seedURL: true}
	discovered := make([]string, 0, budget)

	for len(frontier) > 0 && len(discovered) < budget {
		current := frontier[0]
		frontier = frontier[1:]

		pageLinks = pageLinks[:0]
		if err := collector.Visit(current); err != nil {
			utils.Warnf("抓取页面失败,跳过 [%s]: %v", current, err)
			continue
		}

		discovered = append(discovered, current)
		utils.Debugf("已发现: %s (%d/%d)", current, len(discovered), budget)

		for _, link := range pageLinks {
			if !visited[link] {
				visited[link] = true
				frontier = append(frontier, link)
			}
		}

		if c.delay > 0 && len(frontier) > 0 {
			time.Sleep(c.delay)
		}
	}

	utils.Infof("🔍 爬取发现完成: %d个URL (预算: %d)", len(discovered), budget)
	return discovered, nil
}
