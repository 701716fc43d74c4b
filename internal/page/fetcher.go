// Package page 实现单URL的抓取-提取流水线:
// 抓取 -> 规范化 -> 解析(策略链) -> 元数据提取 -> 非正文剥离 -> 正文转换 -> 清洗
// 单页失败以缺失结果表达,不向上层抛错
package page

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/cenkalti/backoff/v4"
)

// Fetcher HTTP抓取器
// 显式注入配置,不依赖进程级共享客户端
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

// NewFetcher 创建抓取器
// 跳过TLS证书验证,允许访问自签名或过期证书的站点
func NewFetcher(userAgent string, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Fetcher {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
	}

	return &Fetcher{
		client:     client,
		userAgent:  userAgent,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Fetch 抓取URL返回解压后的响应体
// 网络层失败按固定间隔重试maxRetries次;4xx(除429外)视为永久失败不重试
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("构造请求失败: %w", err))
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")

		resp, err := f.client.Do(req)
		if err != nil {
			utils.Debugf("请求失败,将重试 [%s]: %v", rawURL, err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("HTTP %d", resp.StatusCode)
			// 客户端错误重试无意义,429限流除外
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("读取响应体失败: %w", err)
		}

		decompressed, err := decompressResponse(resp.Header.Get("Content-Encoding"), raw)
		if err != nil {
			utils.Warnf("解压响应失败 [%s]: %v", rawURL, err)
			decompressed = raw
		}

		body = decompressed
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(f.retryDelay), uint64(f.maxRetries))
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("抓取失败 [%s]: %w", rawURL, err)
	}

	return body, nil
}

// decompressResponse 根据Content-Encoding头部解压响应体
// 支持 gzip, deflate, br (Brotli) 三种压缩格式
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
