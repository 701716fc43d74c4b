// Package filter 提供URL正则包含过滤
// 注意: 错误消息与提示文案是对外契约(英文,按字面测试),日志仍走utils
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
)

// emptyPatternMessage 空模式的契约错误文案
const emptyPatternMessage = "Pattern cannot be empty. Use a valid regex pattern."

// PatternValidationResult 正则模式验证结果
// 不变式: IsValid为true时Pattern非nil且ErrorMessage为空;
// IsValid为false时恰好ErrorMessage非空
type PatternValidationResult struct {
	IsValid      bool
	ErrorMessage string
	Pattern      *regexp.Regexp
}

// Validate 验证正则模式
// 从不返回错误,验证失败以结果值表达
func Validate(pattern string) PatternValidationResult {
	if strings.TrimSpace(pattern) == "" {
		return PatternValidationResult{
			IsValid:      false,
			ErrorMessage: emptyPatternMessage,
		}
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return PatternValidationResult{
			IsValid:      false,
			ErrorMessage: fmt.Sprintf("Invalid regex pattern: %s. Error: %s", pattern, err.Error()),
		}
	}

	return PatternValidationResult{
		IsValid: true,
		Pattern: compiled,
	}
}

// Filter 用单个正则模式过滤URL列表
// 匹配语义为搜索(子串匹配)而非全匹配
// 空URL列表直接短路返回,不验证模式;空/非法模式返回错误
// (与Validate不对称: 走到这里的调用方已决定应用该模式)
func Filter(urls []string, pattern string) (*models.FilteredURLSet, error) {
	if len(urls) == 0 {
		return models.NewFilteredURLSet([]string{}, []string{}), nil
	}

	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("%s", emptyPatternMessage)
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("Invalid regex pattern: %s. Error: %s", pattern, err.Error())
	}

	filtered := make([]string, 0, len(urls))
	for _, u := range urls {
		if compiled.MatchString(u) {
			filtered = append(filtered, u)
		}
	}

	return models.NewFilteredURLSet(urls, filtered), nil
}

// FilterMulti 用多个正则模式过滤URL列表(OR语义)
// URL匹配任意一个模式即保留;每个URL按模式顺序测试,首个命中即短路
// 所有模式先全部验证,任何一个非法都在过滤前失败(快速失败,不做部分过滤)
func FilterMulti(urls []string, patterns []string) (*models.FilteredURLSet, error) {
	if len(urls) == 0 {
		return models.NewFilteredURLSet([]string{}, []string{}), nil
	}

	if len(patterns) == 0 {
		return nil, fmt.Errorf("At least one pattern must be provided.")
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			return nil, fmt.Errorf("%s", emptyPatternMessage)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("Invalid regex pattern: %s. Error: %s", pattern, err.Error())
		}
		compiled = append(compiled, re)
	}

	filtered := make([]string, 0, len(urls))
	for _, u := range urls {
		for _, re := range compiled {
			if re.MatchString(u) {
				filtered = append(filtered, u)
				break
			}
		}
	}

	return models.NewFilteredURLSet(urls, filtered), nil
}

// ValidateAll 在任何抓取发生前校验全部模式
// 任何一个模式非法即返回带建议的终态错误,不做部分过滤
func ValidateAll(patterns []string) error {
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("%s", emptyPatternMessage)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%s", FriendlyError(err, pattern))
		}
	}
	return nil
}

// suggestionHints 已知错误类别到修复建议的映射
// 键为Go regexp编译错误文本的特征子串(小写匹配)
var suggestionHints = []struct {
	errText string
	hint    string
}{
	{"missing closing ]", "Check for unmatched square brackets"},
	{"missing closing )", "Check for unmatched opening or closing parentheses"},
	{"unexpected )", "Check for unmatched opening or closing parentheses"},
	{"missing argument to repetition operator", "Check for quantifiers (*, +, ?, {}) without preceding characters"},
	{"invalid nested repetition operator", "Check for multiple quantifiers on the same character"},
	{"invalid character class range", "Check character ranges in square brackets (e.g., [a-z])"},
}

// FriendlyError 为正则验证失败生成带建议的用户友好错误文案
// 已知错误类别附加Suggestion,否则句子在Error后结束
func FriendlyError(err error, pattern string) string {
	errMsg := err.Error()
	lower := strings.ToLower(errMsg)

	suggestion := ""
	for _, entry := range suggestionHints {
		if strings.Contains(lower, entry.errText) {
			suggestion = fmt.Sprintf(" Suggestion: %s", entry.hint)
			break
		}
	}

	return fmt.Sprintf("Invalid regex pattern: '%s'. Error: %s.%s", pattern, errMsg, suggestion)
}

// NoMatchesMessage 生成无URL匹配时的提示文案
func NoMatchesMessage(pattern string, totalURLs int) string {
	return fmt.Sprintf("No URLs matched the pattern '%s' out of %d discovered URLs. No llms.txt files will be generated.", pattern, totalURLs)
}
