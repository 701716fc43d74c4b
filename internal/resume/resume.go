// Package resume 实现中断续跑支持:
// 从已有摘要文件还原已处理URL集合,对原始来源计算剩余工作集
// 对原始来源和已有摘要均为只读,从不修改任何一方
package resume

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"gopkg.in/yaml.v3"
)

// markdownLinkPattern 匹配摘要文件中的Markdown链接目标
var markdownLinkPattern = regexp.MustCompile(`\[.*?\]\((https?://[^)]+)\)`)

// ExtractProcessed 从已有摘要文件中提取已处理URL集合
// 摘要文件不存在时返回空集合而非错误(尚未有任何进度)
func ExtractProcessed(summaryPath string) (map[string]bool, error) {
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			utils.Debugf("摘要文件不存在,视为无已处理URL: %s", summaryPath)
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("读取摘要文件失败: %w", err)
	}

	processed := make(map[string]bool)
	for _, match := range markdownLinkPattern.FindAllStringSubmatch(string(data), -1) {
		processed[match[1]] = true
	}

	utils.Infof("从摘要文件提取到 %d 个已处理URL: %s", len(processed), summaryPath)
	return processed, nil
}

// Residual 计算平面来源的剩余工作集
// 返回source中不在processed里的URL,保持原始相对顺序
func Residual(source []string, processed map[string]bool) []string {
	remaining := make([]string, 0, len(source))
	for _, u := range source {
		if !processed[u] {
			remaining = append(remaining, u)
		}
	}
	return remaining
}

// ResidualSections 计算分节来源的剩余工作集,保持格式
// 每个分节只保留未处理URL,清空的分节被丢弃;
// 分节顺序和标题原样保留,输出仍是分节结构而非展平
func ResidualSections(source *models.SectionFile, processed map[string]bool) *models.SectionFile {
	remaining := &models.SectionFile{Sections: make([]models.Section, 0, len(source.Sections))}
	for _, section := range source.Sections {
		urls := Residual(section.URLs, processed)
		if len(urls) == 0 {
			continue
		}
		remaining.Sections = append(remaining.Sections, models.Section{
			Header:      section.Header,
			Description: section.Description,
			URLs:        urls,
		})
	}
	return remaining
}

// WriteFlat 将剩余URL写为平面文件,可直接作为下次运行的-f输入
func WriteFlat(path string, urls []string) error {
	var sb strings.Builder
	sb.WriteString("# 剩余待处理URL\n")
	for _, u := range urls {
		sb.WriteString(u + "\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("写入剩余URL文件失败: %w", err)
	}
	utils.Infof("✅ 剩余URL文件已生成: %s (%d个URL)", path, len(urls))
	return nil
}

// WriteSections 将剩余分节写为YAML文件,与原始分节来源同构
func WriteSections(path string, sf *models.SectionFile) error {
	data, err := yaml.Marshal(sf)
	if err != nil {
		return fmt.Errorf("序列化分节YAML失败: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入剩余分节文件失败: %w", err)
	}
	utils.Infof("✅ 剩余分节文件已生成: %s (%d个分节, %d个URL)", path, len(sf.Sections), sf.TotalURLs())
	return nil
}
