package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
)

func TestExtractProcessed(t *testing.T) {
	t.Run("提取Markdown链接目标", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "summary.txt")
		content := `# example.com llms.txt

- [首页](https://example.com/): 站点首页
- [文档 A](https://example.com/docs/a): 文档页面
普通文本行不含链接
- [带括号的标签 (v2)](http://example.com/v2): 旧版
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("写入摘要失败: %v", err)
		}

		processed, err := ExtractProcessed(path)
		if err != nil {
			t.Fatalf("提取失败: %v", err)
		}
		want := []string{
			"https://example.com/",
			"https://example.com/docs/a",
			"http://example.com/v2",
		}
		if len(processed) != len(want) {
			t.Fatalf("提取数 = %d, 期望 %d: %v", len(processed), len(want), processed)
		}
		for _, u := range want {
			if !processed[u] {
				t.Errorf("缺少URL: %s", u)
			}
		}
	})

	t.Run("文件不存在返回空集合", func(t *testing.T) {
		processed, err := ExtractProcessed("/nonexistent/summary.txt")
		if err != nil {
			t.Fatalf("缺失摘要文件不应是错误: %v", err)
		}
		if len(processed) != 0 {
			t.Errorf("应返回空集合: %v", processed)
		}
	})

	t.Run("忽略非http链接", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "summary.txt")
		content := "- [本地](file:///etc/passwd): 本地文件\n- [页面](https://example.com/p): 正常\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("写入摘要失败: %v", err)
		}
		processed, err := ExtractProcessed(path)
		if err != nil {
			t.Fatalf("提取失败: %v", err)
		}
		if len(processed) != 1 || !processed["https://example.com/p"] {
			t.Errorf("只应提取http(s)链接: %v", processed)
		}
	})
}

func TestResidualRoundTrip(t *testing.T) {
	// 任意划分全集为已处理/剩余两部分,
	// 写出只含已处理链接的摘要后计算残差,应恰好得到剩余部分且保持相对顺序
	universe := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		universe = append(universe, fmt.Sprintf("https://example.com/page-%d", i))
	}
	processedPart := []string{universe[0], universe[3], universe[4], universe[8]}
	wantRemaining := []string{universe[1], universe[2], universe[5], universe[6], universe[7], universe[9]}

	path := filepath.Join(t.TempDir(), "summary.txt")
	summary := "# example.com llms.txt\n\n"
	for _, u := range processedPart {
		summary += fmt.Sprintf("- [页面](%s): 描述\n", u)
	}
	if err := os.WriteFile(path, []byte(summary), 0644); err != nil {
		t.Fatalf("写入摘要失败: %v", err)
	}

	processed, err := ExtractProcessed(path)
	if err != nil {
		t.Fatalf("提取失败: %v", err)
	}
	remaining := Residual(universe, processed)

	if len(remaining) != len(wantRemaining) {
		t.Fatalf("剩余数 = %d, 期望 %d: %v", len(remaining), len(wantRemaining), remaining)
	}
	for i, u := range wantRemaining {
		if remaining[i] != u {
			t.Errorf("remaining[%d] = %s, 期望 %s (应保持原始相对顺序)", i, remaining[i], u)
		}
	}
}

func TestResidualSections(t *testing.T) {
	source := &models.SectionFile{Sections: []models.Section{
		{Header: "文档", Description: "产品文档", URLs: []string{
			"https://example.com/docs/a",
			"https://example.com/docs/b",
		}},
		{Header: "博客", URLs: []string{
			"https://example.com/blog/c",
		}},
		{Header: "API", URLs: []string{
			"https://example.com/api/d",
			"https://example.com/api/e",
		}},
	}}
	processed := map[string]bool{
		"https://example.com/docs/a": true,
		"https://example.com/blog/c": true,
	}

	remaining := ResidualSections(source, processed)

	// 博客分节清空后被丢弃,其余分节保持顺序和标题
	if len(remaining.Sections) != 2 {
		t.Fatalf("分节数 = %d, 期望 2: %+v", len(remaining.Sections), remaining.Sections)
	}
	if remaining.Sections[0].Header != "文档" || remaining.Sections[1].Header != "API" {
		t.Errorf("分节顺序应保持声明顺序: %+v", remaining.Sections)
	}
	if remaining.Sections[0].Description != "产品文档" {
		t.Errorf("分节描述应原样保留: %+v", remaining.Sections[0])
	}
	if len(remaining.Sections[0].URLs) != 1 || remaining.Sections[0].URLs[0] != "https://example.com/docs/b" {
		t.Errorf("文档分节剩余URL不符: %v", remaining.Sections[0].URLs)
	}
	if len(remaining.Sections[1].URLs) != 2 {
		t.Errorf("API分节应完整保留: %v", remaining.Sections[1].URLs)
	}

	// 原始来源不被修改
	if len(source.Sections) != 3 || len(source.Sections[0].URLs) != 2 {
		t.Error("残差计算不应修改原始来源")
	}
}

func TestWriteFlatRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remaining.txt")
	urls := []string{"https://example.com/a", "https://example.com/b"}

	if err := WriteFlat(path, urls); err != nil {
		t.Fatalf("写出失败: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读回失败: %v", err)
	}
	content := string(data)
	for _, u := range urls {
		if !strings.Contains(content, u+"\n") {
			t.Errorf("输出缺少URL: %s", u)
		}
	}
}
