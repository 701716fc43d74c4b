package page

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Normalize 将原始字节规范化为良构标记文本
// 处理顺序:
//  1. 丢弃无法解码的字节(防御性重编码,宁可丢字节不失败)
//  2. 剥离控制字符(保留\t\n\r)
//  3. 裸片段包上最小文档外壳
//  4. 容错解析后重新渲染,修复未引号属性和未闭合标签
func Normalize(raw []byte) string {
	text := strings.ToValidUTF8(string(raw), "")

	text = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	if !strings.Contains(strings.ToLower(text), "<html") {
		text = "<html><head></head><body>" + text + "</body></html>"
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		// 解析器极少失败;失败时退回包壳后的文本
		return text
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return text
	}
	return buf.String()
}
