package discover

import (
	"fmt"
	"os"

	"github.com/RecoveryAshes/LlmsGen/internal/models"
	"github.com/RecoveryAshes/LlmsGen/internal/utils"
	"gopkg.in/yaml.v3"
)

// ReadSectionFile 从分节YAML文件读取URL源
// 顶层结构为 {sections: [{header, description, urls}]}
// URL级验证与平面文件相同,按分节独立应用;文件缺失或格式非法是硬错误
func ReadSectionFile(path string) (*models.SectionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取分节文件失败: %w", err)
	}

	var sf models.SectionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("解析分节YAML失败: %w", err)
	}
	if len(sf.Sections) == 0 {
		return nil, fmt.Errorf("分节文件缺少sections字段或为空: %s", path)
	}

	total := 0
	for i := range sf.Sections {
		section := &sf.Sections[i]
		kept := make([]string, 0, len(section.URLs))
		for _, u := range section.URLs {
			if u == "" {
				continue
			}
			if err := models.ValidateURL(u); err != nil {
				utils.Warnf("跳过无效URL [分节: %s]: %s - %v", section.Header, u, err)
				continue
			}
			kept = append(kept, u)
		}
		section.URLs = kept
		total += len(kept)
	}

	utils.Infof("从分节文件加载了 %d 个URL (%d个分节): %s", total, len(sf.Sections), path)
	return &sf, nil
}
