package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ValidateURL 验证URL
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("无效的URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL必须是HTTP或HTTPS协议")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL必须包含主机名")
	}
	return nil
}

// DomainOf 从URL提取域名(去掉www.前缀,用于输出文件名)
func DomainOf(siteURL string) (string, error) {
	parsed, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("解析URL失败: %w", err)
	}
	domain := parsed.Host
	if domain == "" {
		return "", fmt.Errorf("无法从URL中提取域名: %s", siteURL)
	}
	domain = strings.TrimPrefix(domain, "www.")
	// 端口号冒号不能出现在文件名里
	domain = strings.ReplaceAll(domain, ":", "_")
	return domain, nil
}

// NewRunID 生成运行唯一ID
func NewRunID() string {
	return uuid.New().String()
}
