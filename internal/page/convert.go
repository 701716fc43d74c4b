package page

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	readability "github.com/go-shiori/go-readability"
)

// PageSeparatorFormat 全文输出中页面分隔标记的格式,n为排序后的1起始序号
const PageSeparatorFormat = "<|page-%d-llmstxt|>"

var (
	// separatorPattern 匹配可能从上游处理泄漏进正文的分隔标记
	separatorPattern = regexp.MustCompile(`<\|page-\d+-llmstxt\|>`)

	// tagPattern 匹配残留的标记标签
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	// excessNewlines 3个及以上连续换行
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// parseStrategy 解析策略,按宽容度从低到高排列依次尝试
// 成功判据统一: 产出非空可提取文本
type parseStrategy struct {
	name  string
	parse func(normalized string, pageURL string) (*goquery.Document, error)
}

var parseStrategies = []parseStrategy{
	{name: "标准解析", parse: parseStandard},
	{name: "正文抽取", parse: parseReadability},
}

// ParseDocument 按策略链解析规范化后的标记文本
// 所有策略都失败时退化为手工剥标签合成纯文本文档,从不放弃整页
func ParseDocument(normalized string, pageURL string) *goquery.Document {
	for _, strategy := range parseStrategies {
		doc, err := strategy.parse(normalized, pageURL)
		if err != nil {
			utils.Debugf("解析策略失败 [%s] %s: %v", strategy.name, pageURL, err)
			continue
		}
		if strings.TrimSpace(doc.Text()) != "" {
			return doc
		}
		utils.Debugf("解析策略产出空文本 [%s] %s", strategy.name, pageURL)
	}

	// 兜底: 手工剥标签
	text := tagPattern.ReplaceAllString(normalized, " ")
	synthetic := "<html><body><p>" + text + "</p></body></html>"
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(synthetic))
	if err != nil {
		// 合成文档解析不会失败,防御返回空文档
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	}
	utils.Warnf("所有解析策略失败,使用剥标签兜底: %s", pageURL)
	return doc
}

func parseStandard(normalized string, _ string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(normalized))
}

func parseReadability(normalized string, pageURL string) (*goquery.Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	article, err := readability.FromReader(strings.NewReader(normalized), parsed)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, fmt.Errorf("正文抽取结果为空")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(article.Content))
}

// NewConverter 创建HTML到Markdown的转换器
func NewConverter() *md.Converter {
	return md.NewConverter("", true, nil)
}

// ConvertBody 将文档正文转换为文本表示,按转换链依次回退:
// Markdown转换 -> 段落拼接纯文本 -> 原始规范化标记
// 从不静默产出空的成功结果
func ConvertBody(converter *md.Converter, doc *goquery.Document) string {
	bodyHTML, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(bodyHTML) == "" {
		bodyHTML, _ = doc.Html()
	}

	if markdown, err := converter.ConvertString(bodyHTML); err == nil && strings.TrimSpace(markdown) != "" {
		return markdown
	}

	paragraphs := make([]string, 0)
	doc.Find("p, h1, h2, h3, h4, h5, h6, li").Each(func(_ int, sel *goquery.Selection) {
		if text := collapseWhitespace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n")
	}

	// 最后兜底: 原始标记,清洗阶段会剥掉标签
	return bodyHTML
}

// Clean 清洗转换后的正文文本:
// 剥离泄漏的页面分隔标记,剥离残留标签,3+连续换行折叠为2个
func Clean(text string) string {
	text = separatorPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
