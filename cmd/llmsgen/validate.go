package main

import (
	"fmt"
	"net/url"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(
	targetURL string,
	sitemapURL string,
	urlFile string,
	sectionsFile string,
	maxURLs int,
	batchSize int,
	maxWorkers int,
	waitTime int,
) error {
	if targetURL != "" {
		if err := models.ValidateURL(targetURL); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}
	if sitemapURL != "" {
		if err := models.ValidateURL(sitemapURL); err != nil {
			return fmt.Errorf("无效的站点地图URL: %w", err)
		}
	}

	// 爬取模式需要种子URL
	if targetURL == "" && sitemapURL == "" && urlFile == "" && sectionsFile == "" {
		return fmt.Errorf("必须提供一种URL来源 (-u / --sitemap / -f / --sections-file)")
	}

	if maxURLs < 1 || maxURLs > 10000 {
		return fmt.Errorf("URL预算必须在1-10000之间,当前值: %d", maxURLs)
	}
	if batchSize < 1 || batchSize > 100 {
		return fmt.Errorf("批大小必须在1-100之间,当前值: %d", batchSize)
	}
	if maxWorkers < 1 || maxWorkers > 100 {
		return fmt.Errorf("并发数必须在1-100之间,当前值: %d", maxWorkers)
	}
	if waitTime < 1 || waitTime > 300 {
		return fmt.Errorf("抓取超时必须在1-300秒之间,当前值: %d", waitTime)
	}

	return nil
}

// NormalizeURL 规范化URL,无协议时默认https
func NormalizeURL(urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	if parsed.Scheme == "" {
		urlStr = "https://" + urlStr
		parsed, err = url.Parse(urlStr)
		if err != nil {
			return "", err
		}
	}

	return parsed.String(), nil
}
