package discover

import (
	"context"
	"fmt"
	"testing"
)

// fakeFetcher 以URL为键返回预置响应体,并记录访问次序
type fakeFetcher struct {
	responses map[string][]byte
	visited   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.visited = append(f.visited, rawURL)
	body, ok := f.responses[rawURL]
	if !ok {
		return nil, fmt.Errorf("HTTP 404")
	}
	return body, nil
}

func urlsetXML(locs ...string) []byte {
	body := `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, loc := range locs {
		body += "<url><loc>" + loc + "</loc></url>"
	}
	return []byte(body + "</urlset>")
}

func indexXML(locs ...string) []byte {
	body := `<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, loc := range locs {
		body += "<sitemap><loc>" + loc + "</loc></sitemap>"
	}
	return []byte(body + "</sitemapindex>")
}

func TestSitemapTraverse(t *testing.T) {
	t.Run("根为urlset直接返回", func(t *testing.T) {
		fetcher := &fakeFetcher{responses: map[string][]byte{
			"https://example.com/sitemap.xml": urlsetXML(
				"https://example.com/a",
				"https://example.com/b",
			),
		}}
		sm := NewSitemap(fetcher, "")

		urls, err := sm.Traverse(context.Background(), "https://example.com/sitemap.xml")
		if err != nil {
			t.Fatalf("遍历失败: %v", err)
		}
		if len(urls) != 2 {
			t.Fatalf("URL数 = %d, 期望 2", len(urls))
		}
		if urls[0] != "https://example.com/a" || urls[1] != "https://example.com/b" {
			t.Errorf("URL顺序不符: %v", urls)
		}
	})

	t.Run("索引含三个子站点地图排除一个", func(t *testing.T) {
		fetcher := &fakeFetcher{responses: map[string][]byte{
			"https://example.com/sitemap.xml": indexXML(
				"https://example.com/sitemap-pages.xml",
				"https://example.com/sitemap-listing.xml",
				"https://example.com/sitemap-docs.xml",
			),
			"https://example.com/sitemap-pages.xml": urlsetXML("https://example.com/p1"),
			"https://example.com/sitemap-docs.xml":  urlsetXML("https://example.com/d1", "https://example.com/d2"),
		}}
		sm := NewSitemap(fetcher, "listing")

		urls, err := sm.Traverse(context.Background(), "https://example.com/sitemap.xml")
		if err != nil {
			t.Fatalf("遍历失败: %v", err)
		}

		// 恰好访问两个子站点地图(根 + 2个子)
		if len(fetcher.visited) != 3 {
			t.Errorf("访问次数 = %d, 期望 3 (根+2子): %v", len(fetcher.visited), fetcher.visited)
		}
		for _, v := range fetcher.visited {
			if v == "https://example.com/sitemap-listing.xml" {
				t.Error("被排除的子站点地图不应被访问")
			}
		}
		if len(urls) != 3 {
			t.Errorf("URL数 = %d, 期望 3: %v", len(urls), urls)
		}
	})

	t.Run("子站点地图失败只跳过", func(t *testing.T) {
		fetcher := &fakeFetcher{responses: map[string][]byte{
			"https://example.com/sitemap.xml": indexXML(
				"https://example.com/sitemap-broken.xml",
				"https://example.com/sitemap-ok.xml",
			),
			"https://example.com/sitemap-ok.xml": urlsetXML("https://example.com/ok"),
		}}
		sm := NewSitemap(fetcher, "")

		urls, err := sm.Traverse(context.Background(), "https://example.com/sitemap.xml")
		if err != nil {
			t.Fatalf("单子失败不应中止遍历: %v", err)
		}
		if len(urls) != 1 || urls[0] != "https://example.com/ok" {
			t.Errorf("应只得到可用子站点地图的URL: %v", urls)
		}
	})

	t.Run("非法根形态返回空并告警", func(t *testing.T) {
		fetcher := &fakeFetcher{responses: map[string][]byte{
			"https://example.com/sitemap.xml": []byte("<rss><channel></channel></rss>"),
		}}
		sm := NewSitemap(fetcher, "")

		urls, err := sm.Traverse(context.Background(), "https://example.com/sitemap.xml")
		if err != nil {
			t.Fatalf("非法根形态应降级为空结果: %v", err)
		}
		if len(urls) != 0 {
			t.Errorf("应返回空结果: %v", urls)
		}
	})
}

func TestSitemapSample(t *testing.T) {
	t.Run("urlset根为精确值", func(t *testing.T) {
		fetcher := &fakeFetcher{responses: map[string][]byte{
			"https://example.com/sitemap.xml": urlsetXML("https://example.com/a", "https://example.com/b"),
		}}
		sm := NewSitemap(fetcher, "")

		est, err := sm.Sample(context.Background(), "https://example.com/sitemap.xml", 3)
		if err != nil {
			t.Fatalf("采样失败: %v", err)
		}
		if !est.Exact {
			t.Error("urlset根应标记为精确值")
		}
		if est.EstimatedTotal != 2 {
			t.Errorf("EstimatedTotal = %d, 期望 2", est.EstimatedTotal)
		}
	})

	t.Run("索引外推估算", func(t *testing.T) {
		fetcher := &fakeFetcher{responses: map[string][]byte{
			"https://example.com/sitemap.xml": indexXML(
				"https://example.com/s1.xml",
				"https://example.com/s2.xml",
				"https://example.com/s3.xml",
				"https://example.com/s4.xml",
			),
			"https://example.com/s1.xml": urlsetXML("https://example.com/1", "https://example.com/2"),
			"https://example.com/s2.xml": urlsetXML("https://example.com/3", "https://example.com/4"),
		}}
		sm := NewSitemap(fetcher, "")

		est, err := sm.Sample(context.Background(), "https://example.com/sitemap.xml", 2)
		if err != nil {
			t.Fatalf("采样失败: %v", err)
		}
		if est.Exact {
			t.Error("索引采样不应标记为精确值")
		}
		if est.SampledSitemaps != 2 {
			t.Errorf("SampledSitemaps = %d, 期望 2", est.SampledSitemaps)
		}
		if est.TotalSitemaps != 4 {
			t.Errorf("TotalSitemaps = %d, 期望 4", est.TotalSitemaps)
		}
		// (4个样本URL / 2个已采样) * 4个子站点地图 = 8
		if est.EstimatedTotal != 8 {
			t.Errorf("EstimatedTotal = %d, 期望 8", est.EstimatedTotal)
		}
		if len(est.SampleURLs) != 4 {
			t.Errorf("样本URL数 = %d, 期望 4", len(est.SampleURLs))
		}
		// 未采样的子站点地图不应被抓取
		for _, v := range fetcher.visited {
			if v == "https://example.com/s3.xml" || v == "https://example.com/s4.xml" {
				t.Errorf("超出采样上限的子站点地图不应被访问: %s", v)
			}
		}
	})
}
