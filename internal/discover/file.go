package discover

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
)

// ReadURLFile 从平面文件读取URL列表,每行一个
// 空行和#开头的注释行跳过;缺少协议或主机名的记录告警丢弃而非报错
// 文件格式问题只会让结果变短,不会失败;文件本身打不开是硬错误
func ReadURLFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开URL文件失败: %w", err)
	}
	defer file.Close()

	urls := make([]string, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := models.ValidateURL(line); err != nil {
			utils.Warnf("跳过无效URL (行 %d): %s - %v", lineNum, line, err)
			continue
		}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取URL文件失败: %w", err)
	}

	utils.Infof("从文件加载了 %d 个URL: %s", len(urls), path)
	return urls, nil
}
