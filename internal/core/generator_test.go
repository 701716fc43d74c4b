package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
)

func defaultTestConfig() models.GenerateConfig {
	return models.DefaultGenerateConfig()
}

func TestSourceMode(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   string
	}{
		{
			name:   "默认为爬取",
			source: Source{SiteURL: "https://example.com"},
			want:   "crawl",
		},
		{
			name:   "站点地图优先于爬取",
			source: Source{SiteURL: "https://example.com", SitemapURL: "https://example.com/sitemap.xml"},
			want:   "sitemap",
		},
		{
			name:   "平面文件优先于站点地图",
			source: Source{SitemapURL: "https://example.com/sitemap.xml", FilePath: "urls.txt"},
			want:   "file",
		},
		{
			name:   "分节文件优先级最高",
			source: Source{FilePath: "urls.txt", SectionsPath: "sections.yaml"},
			want:   "sections",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tt.source.Mode()); got != tt.want {
				t.Errorf("Mode = %q, 期望 %q", got, tt.want)
			}
		})
	}
}

func TestNewGeneratorRejectsInvalidConfig(t *testing.T) {
	config := defaultTestConfig()
	config.EmitSummary = false
	config.EmitFullText = false

	if _, err := NewGenerator(config, t.TempDir()); err == nil {
		t.Error("双输出禁用的配置应在任何网络活动前失败")
	}
}

func TestUnitTimeoutCoversRetries(t *testing.T) {
	config := defaultTestConfig()
	config.WaitTime = 1
	config.MaxRetries = 2
	config.RetryDelay = 1

	gen, err := NewGenerator(config, t.TempDir())
	if err != nil {
		t.Fatalf("创建生成器失败: %v", err)
	}

	// 3次尝试各1秒 + 2次重试间隔各1秒
	want := 5 * time.Second
	if got := gen.unitTimeout(); got != want {
		t.Errorf("unitTimeout = %v, 期望 %v", got, want)
	}
	if gen.unitTimeout() <= time.Duration(config.WaitTime)*time.Second {
		t.Error("单元预算必须大于单次抓取超时,否则超时类失败永远没有重试机会")
	}
}

func TestGenerateBatchCheckpoints(t *testing.T) {
	outputDir := t.TempDir()

	var mu sync.Mutex
	var checkpointSummary string
	var serverURL string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			http.NotFound(w, r)
			return
		case "/empty":
			// 剥离非正文元素后清洗结果为空
			fmt.Fprint(w, `<html><head></head><body><script>var x = 1;</script></body></html>`)
			return
		case "/batch2":
			// 第二批派发时第一批的检查点应已落盘
			mu.Lock()
			if checkpointSummary == "" {
				if domain, err := models.DomainOf(serverURL); err == nil {
					if data, err := os.ReadFile(filepath.Join(outputDir, domain+"-summary.txt")); err == nil {
						checkpointSummary = string(data)
					}
				}
			}
			mu.Unlock()
		}
		fmt.Fprintf(w, `<html><head><title>页面%s</title><meta name="description" content="描述%s"></head><body><p>正文内容%s</p></body></html>`,
			r.URL.Path, r.URL.Path, r.URL.Path)
	}))
	defer server.Close()
	serverURL = server.URL

	urls := []string{
		server.URL + "/a",
		server.URL + "/fail",
		server.URL + "/batch2",
		server.URL + "/empty",
	}
	urlFile := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(urlFile, []byte(strings.Join(urls, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("写入URL文件失败: %v", err)
	}

	config := defaultTestConfig()
	config.BatchSize = 2
	config.MaxWorkers = 2
	config.WaitTime = 5
	config.MaxRetries = 0
	config.BatchDelay = 0

	gen, err := NewGenerator(config, outputDir)
	if err != nil {
		t.Fatalf("创建生成器失败: %v", err)
	}
	result, err := gen.Generate(context.Background(), &Source{FilePath: urlFile})
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}

	t.Run("批次N持久化先于批次N+1派发", func(t *testing.T) {
		mu.Lock()
		captured := checkpointSummary
		mu.Unlock()
		if captured == "" {
			t.Fatal("第二批派发时摘要文件应已存在")
		}
		if !strings.Contains(captured, "/a") {
			t.Errorf("第一批检查点应包含已成功的页面: %q", captured)
		}
		if strings.Contains(captured, "/batch2") {
			t.Errorf("第一批检查点不应包含后续批次的页面: %q", captured)
		}
		if strings.Contains(captured, "/fail") {
			t.Errorf("检查点不应包含失败的页面: %q", captured)
		}
	})

	t.Run("最终文件覆盖全部成功页面且保持发现顺序", func(t *testing.T) {
		data, err := os.ReadFile(result.SummaryPath)
		if err != nil {
			t.Fatalf("读取摘要文件失败: %v", err)
		}
		final := string(data)
		posA := strings.Index(final, "/a")
		posB := strings.Index(final, "/batch2")
		if posA < 0 || posB < 0 {
			t.Fatalf("最终摘要应包含全部成功页面: %q", final)
		}
		if posA > posB {
			t.Errorf("摘要行顺序应与发现顺序一致: %q", final)
		}
		if strings.Contains(final, "/fail") || strings.Contains(final, "/empty") {
			t.Errorf("失败页面不应出现在摘要中: %q", final)
		}
	})

	t.Run("失败记账", func(t *testing.T) {
		if result.Stats.ProcessedURLs != 2 {
			t.Errorf("成功数 = %d, 期望 2", result.Stats.ProcessedURLs)
		}
		if len(result.FailedURLList) != 2 {
			t.Fatalf("失败数 = %d, 期望 2 (HTTP失败+空正文): %v", len(result.FailedURLList), result.FailedURLList)
		}
		failedSet := map[string]bool{}
		for _, u := range result.FailedURLList {
			failedSet[u] = true
		}
		if !failedSet[server.URL+"/fail"] {
			t.Error("HTTP 404的URL应计入失败集")
		}
		if !failedSet[server.URL+"/empty"] {
			t.Error("清洗后正文为空的URL应计入失败集")
		}
	})
}

func TestGenerateSitemapRootUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	config := defaultTestConfig()
	config.WaitTime = 5
	config.MaxRetries = 0

	gen, err := NewGenerator(config, t.TempDir())
	if err != nil {
		t.Fatalf("创建生成器失败: %v", err)
	}

	_, err = gen.Generate(context.Background(), &Source{SitemapURL: server.URL + "/sitemap.xml"})
	if err == nil {
		t.Fatal("根站点地图不可达应是终态错误")
	}
	if !strings.Contains(err.Error(), "根站点地图不可达") {
		t.Errorf("错误应区分根不可达与零发现: %v", err)
	}
}
