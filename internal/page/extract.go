package page

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTitle       = "Page"
	defaultDescription = "No description available"

	maxTitleLen       = 60
	maxDescriptionLen = 120
)

// titleSources 标题提取的有序回退链,自上而下首个非空者胜出
var titleSources = []func(*goquery.Document) string{
	func(doc *goquery.Document) string { return doc.Find("title").First().Text() },
	metaContent(`meta[property="og:title"]`),
	metaContent(`meta[name="twitter:title"]`),
}

// descriptionSources 描述提取的有序回退链
var descriptionSources = []func(*goquery.Document) string{
	metaContent(`meta[name="description"]`),
	metaContent(`meta[property="og:description"]`),
	metaContent(`meta[name="twitter:description"]`),
}

// metaContent 返回读取指定meta标签content属性的提取函数
func metaContent(selector string) func(*goquery.Document) string {
	return func(doc *goquery.Document) string {
		content, _ := doc.Find(selector).First().Attr("content")
		return content
	}
}

// ExtractTitle 按回退链提取页面标题
// 全链为空时返回字面量默认值;结果折叠空白并截断
func ExtractTitle(doc *goquery.Document) string {
	return extractFirst(doc, titleSources, defaultTitle, maxTitleLen)
}

// ExtractDescription 按回退链提取页面描述
func ExtractDescription(doc *goquery.Document) string {
	return extractFirst(doc, descriptionSources, defaultDescription, maxDescriptionLen)
}

func extractFirst(doc *goquery.Document, sources []func(*goquery.Document) string, fallback string, maxLen int) string {
	for _, source := range sources {
		if value := collapseWhitespace(source(doc)); value != "" {
			return truncate(value, maxLen)
		}
	}
	return fallback
}

// StripNonContent 移除非正文元素,在正文转换前调用
func StripNonContent(doc *goquery.Document) {
	doc.Find("script, style, nav, footer, header").Remove()
}

// collapseWhitespace 将连续空白折叠为单个空格并去除首尾空白
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate 超长时截断到maxLen字节以内,末尾替换为省略号
// 截断点回退到rune边界,不把多字节字符劈成非法UTF-8
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
