package core

import (
	"fmt"
	"strings"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/RecoveryAshes/LlmsGen/internal/page"
)

// BuildSummary 构建摘要语料文本
// sections非空时按分节分组输出,只保留至少有一个成功页面的分节,
// 分节顺序与声明顺序一致;否则输出平面列表
// 调用方保证results已按Index排序
func BuildSummary(domain string, results []*models.PageResult, sections []models.Section, sectionOf map[string]int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s llms.txt\n\n", domain))

	if len(sections) == 0 {
		for _, r := range results {
			sb.WriteString(summaryLine(r))
		}
		return sb.String()
	}

	for i, section := range sections {
		var lines []string
		for _, r := range results {
			if idx, ok := sectionOf[r.URL]; ok && idx == i {
				lines = append(lines, summaryLine(r))
			}
		}
		// 无成功页面的分节直接丢弃
		if len(lines) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("## %s\n", section.Header))
		if section.Description != "" {
			sb.WriteString(section.Description + "\n")
		}
		sb.WriteString("\n")
		for _, line := range lines {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func summaryLine(r *models.PageResult) string {
	return fmt.Sprintf("- [%s](%s): %s\n", r.Title, r.URL, r.Description)
}

// BuildFullText 构建全文语料文本,始终为平面结构
// 每页包装为分隔标记+标题+正文,n为排序后的1起始序号;
// clean为true时省略分隔标记;maxPages>0时只保留前maxPages页
func BuildFullText(domain string, results []*models.PageResult, clean bool, maxPages int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s llms-full.txt\n\n", domain))

	for n, r := range results {
		if maxPages > 0 && n >= maxPages {
			break
		}
		if !clean {
			sb.WriteString(fmt.Sprintf(page.PageSeparatorFormat, n+1))
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("## %s\n%s\n\n", r.Title, r.Markdown))
	}
	return sb.String()
}
